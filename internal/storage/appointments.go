package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pawsnclaws/groomtime/internal/availability"
	"github.com/pawsnclaws/groomtime/internal/model"
	"github.com/pawsnclaws/groomtime/internal/outbox"
	"github.com/pawsnclaws/groomtime/libs/db"
)

// AppointmentRepository owns the appointments table. Its write paths run the
// commit-guard transaction: row locks plus an in-transaction overlap recheck,
// with the table's exclusion constraint as the cross-process backstop.
type AppointmentRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewAppointmentRepository(pool *db.Pool, outboxRepo *outbox.Repository) *AppointmentRepository {
	return &AppointmentRepository{pool: pool, outbox: outboxRepo}
}

const appointmentColumns = `
	id::text, service_id, customer_name, customer_email, customer_phone,
	slot_date, start_time, end_time, duration_minutes, status,
	cancelled_at, COALESCE(cancellation_reason, ''), created_at`

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	var slotDate time.Time
	var cancelledAt *time.Time
	err := row.Scan(
		&appt.ID,
		&appt.ServiceID,
		&appt.CustomerName,
		&appt.CustomerEmail,
		&appt.CustomerPhone,
		&slotDate,
		&appt.StartTime,
		&appt.EndTime,
		&appt.DurationMinutes,
		&appt.Status,
		&cancelledAt,
		&appt.CancelReason,
		&appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.SlotDate = slotDate.Format(model.DateLayout)
	appt.CancelledAt = cancelledAt
	return appt, nil
}

func collectAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	defer rows.Close()
	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

// ListActiveByDate returns the appointments that occupy slots on a date.
// Cancelled and no-show appointments do not block.
func (r *AppointmentRepository) ListActiveByDate(ctx context.Context, date string) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE slot_date = $1
			AND status NOT IN ('cancelled', 'no_show')
		ORDER BY start_time ASC
	`, dateParam(date))
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

// ListByDate returns every appointment on a date regardless of status.
func (r *AppointmentRepository) ListByDate(ctx context.Context, date string) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE slot_date = $1
		ORDER BY start_time ASC
	`, dateParam(date))
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

// ListBetween returns appointments starting within [start, end).
func (r *AppointmentRepository) ListBetween(ctx context.Context, start, end time.Time) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time ASC
	`, start, end)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, appointmentID string) (model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, appointmentID)
	return scanAppointment(row)
}

// InsertIfFree inserts an appointment only if its buffered interval is still
// free. The recheck runs against rows locked FOR UPDATE inside the same
// transaction as the insert, and the exclusion constraint catches races from
// other processes; either path reports ErrSlotTaken. The outbox events
// commit atomically with the row.
func (r *AppointmentRepository) InsertIfFree(ctx context.Context, appt model.Appointment, bufferMinutes int, events []outbox.Event) (model.Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE slot_date = $1
			AND status NOT IN ('cancelled', 'no_show')
		ORDER BY start_time ASC
		FOR UPDATE
	`, dateParam(appt.SlotDate))
	if err != nil {
		return model.Appointment{}, err
	}
	existing, err := collectAppointments(rows)
	if err != nil {
		return model.Appointment{}, err
	}

	duration := time.Duration(appt.DurationMinutes) * time.Minute
	buffer := time.Duration(bufferMinutes) * time.Minute
	if availability.Occupied(appt.StartTime, duration, buffer, existing) {
		return model.Appointment{}, ErrSlotTaken
	}

	bufferedUntil := appt.EndTime.Add(buffer)
	err = tx.QueryRow(ctx, `
		INSERT INTO appointments
			(id, service_id, customer_name, customer_email, customer_phone,
			 slot_date, start_time, end_time, buffered_until, duration_minutes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`, appt.ID, appt.ServiceID, appt.CustomerName, appt.CustomerEmail, appt.CustomerPhone,
		dateParam(appt.SlotDate), appt.StartTime, appt.EndTime, bufferedUntil,
		appt.DurationMinutes, appt.Status).Scan(&appt.CreatedAt)
	if err != nil {
		if IsConflict(err) {
			return model.Appointment{}, ErrSlotTaken
		}
		return model.Appointment{}, err
	}

	for _, evt := range events {
		if err := r.outbox.Insert(ctx, tx, evt); err != nil {
			return model.Appointment{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if IsConflict(err) {
			return model.Appointment{}, ErrSlotTaken
		}
		return model.Appointment{}, err
	}
	return appt, nil
}

// Cancel transitions an appointment to cancelled under a row lock. The
// authorize callback runs against the locked row so the cutoff check and the
// status change are atomic. Cancelling an already-cancelled appointment is
// idempotent.
func (r *AppointmentRepository) Cancel(ctx context.Context, appointmentID, reason string, authorize func(model.Appointment) error, events func(model.Appointment) []outbox.Event) (model.Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := scanAppointment(tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, appointmentID))
	if err != nil {
		return model.Appointment{}, err
	}

	if appt.Status == model.StatusCancelled {
		return appt, nil
	}
	if authorize != nil {
		if err := authorize(appt); err != nil {
			return model.Appointment{}, err
		}
	}

	var cancelledAt time.Time
	err = tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
			cancelled_at = now(),
			cancellation_reason = $2
		WHERE id = $1
		RETURNING cancelled_at
	`, appointmentID, reason).Scan(&cancelledAt)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.Status = model.StatusCancelled
	appt.CancelledAt = &cancelledAt
	appt.CancelReason = reason

	if events != nil {
		for _, evt := range events(appt) {
			if err := r.outbox.Insert(ctx, tx, evt); err != nil {
				return model.Appointment{}, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

// UpdateStatus applies a non-cancellation status transition under a row
// lock; authorize decides whether the transition is legal from the current
// status.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, appointmentID, status string, authorize func(model.Appointment) error) (model.Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := scanAppointment(tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, appointmentID))
	if err != nil {
		return model.Appointment{}, err
	}

	if authorize != nil {
		if err := authorize(appt); err != nil {
			return model.Appointment{}, err
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE appointments SET status = $2 WHERE id = $1
	`, appointmentID, status); err != nil {
		return model.Appointment{}, err
	}
	appt.Status = status

	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

func dateParam(date string) time.Time {
	t, _ := time.Parse(model.DateLayout, date)
	return t
}
