package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pawsnclaws/groomtime/internal/model"
	"github.com/pawsnclaws/groomtime/libs/db"
)

// SettingsRepository owns the administrator-facing configuration: booking
// settings, business hours, and blocked dates. Everything is validated at
// this boundary so malformed configuration never reaches the engine.
type SettingsRepository struct {
	pool *db.Pool
}

func NewSettingsRepository(pool *db.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// GetBookingSettings loads the single settings row plus blocked dates. The
// row is seeded by the initial migration, so a missing row is a storage
// error, not a default.
func (r *SettingsRepository) GetBookingSettings(ctx context.Context) (model.BookingSettings, error) {
	var s model.BookingSettings
	err := r.pool.QueryRow(ctx, `
		SELECT min_advance_hours, max_advance_days, cancellation_cutoff_hours,
			buffer_minutes, recurring_blocked_days
		FROM booking_settings
		WHERE id = 1
	`).Scan(&s.MinAdvanceHours, &s.MaxAdvanceDays, &s.CancellationCutoffHours,
		&s.BufferMinutes, &s.RecurringBlockedDays)
	if err != nil {
		return model.BookingSettings{}, err
	}

	blocked, err := r.ListBlockedDates(ctx)
	if err != nil {
		return model.BookingSettings{}, err
	}
	s.BlockedDates = blocked

	if err := model.ValidateBookingSettings(s); err != nil {
		return model.BookingSettings{}, err
	}
	return s, nil
}

// UpdateBookingSettings replaces the policy knobs. Blocked dates are managed
// through their own operations and are rejected here rather than dropped.
func (r *SettingsRepository) UpdateBookingSettings(ctx context.Context, s model.BookingSettings) error {
	if len(s.BlockedDates) > 0 {
		return fmt.Errorf("blocked dates are managed through the blocked-dates operations")
	}
	if err := model.ValidateBookingSettings(s); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE booking_settings
		SET min_advance_hours = $1,
			max_advance_days = $2,
			cancellation_cutoff_hours = $3,
			buffer_minutes = $4,
			recurring_blocked_days = $5,
			updated_at = now()
		WHERE id = 1
	`, s.MinAdvanceHours, s.MaxAdvanceDays, s.CancellationCutoffHours,
		s.BufferMinutes, s.RecurringBlockedDays)
	return err
}

// GetBusinessHours assembles the weekday map. Weekdays with no rows come
// back closed.
func (r *SettingsRepository) GetBusinessHours(ctx context.Context) (model.BusinessHours, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, open_minute, close_minute
		FROM business_hours
		ORDER BY weekday ASC, open_minute ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hours := model.BusinessHours{}
	for weekday := 0; weekday < 7; weekday++ {
		hours[weekday] = model.DayHours{IsClosed: true}
	}
	for rows.Next() {
		var weekday, openMin, closeMin int
		if err := rows.Scan(&weekday, &openMin, &closeMin); err != nil {
			return nil, err
		}
		day := hours[weekday]
		day.IsClosed = false
		day.Intervals = append(day.Intervals, model.HoursInterval{
			Open:  clockString(openMin),
			Close: clockString(closeMin),
		})
		hours[weekday] = day
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	if err := model.ValidateBusinessHours(hours); err != nil {
		return nil, err
	}
	return hours, nil
}

// UpsertBusinessHours replaces one weekday's intervals. An empty or closed
// day simply deletes its rows.
func (r *SettingsRepository) UpsertBusinessHours(ctx context.Context, weekday int, day model.DayHours) error {
	if err := model.ValidateBusinessHours(model.BusinessHours{weekday: day}); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM business_hours WHERE weekday = $1`, weekday); err != nil {
		return err
	}
	if !day.IsClosed {
		for _, iv := range day.Intervals {
			openMin, _ := model.ParseClock(iv.Open)
			closeMin, _ := model.ParseClock(iv.Close)
			if _, err := tx.Exec(ctx, `
				INSERT INTO business_hours (weekday, open_minute, close_minute)
				VALUES ($1, $2, $3)
			`, weekday, openMin, closeMin); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

func (r *SettingsRepository) ListBlockedDates(ctx context.Context) ([]model.BlockedDate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, start_date, end_date, reason
		FROM blocked_dates
		ORDER BY start_date ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocked []model.BlockedDate
	for rows.Next() {
		var b model.BlockedDate
		var start time.Time
		var end *time.Time
		if err := rows.Scan(&b.ID, &start, &end, &b.Reason); err != nil {
			return nil, err
		}
		b.Date = start.Format(model.DateLayout)
		if end != nil {
			b.EndDate = end.Format(model.DateLayout)
		}
		blocked = append(blocked, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return blocked, nil
}

func (r *SettingsRepository) AddBlockedDate(ctx context.Context, b model.BlockedDate) (model.BlockedDate, error) {
	if err := model.ValidateBlockedDate(b); err != nil {
		return model.BlockedDate{}, err
	}
	b.ID = uuid.NewString()

	var end *time.Time
	if b.EndDate != "" {
		t := dateParam(b.EndDate)
		end = &t
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO blocked_dates (id, start_date, end_date, reason)
		VALUES ($1, $2, $3, $4)
	`, b.ID, dateParam(b.Date), end, b.Reason)
	if err != nil {
		return model.BlockedDate{}, err
	}
	return b, nil
}

func (r *SettingsRepository) DeleteBlockedDate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blocked_dates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func clockString(minuteOfDay int) string {
	return time.Date(0, 1, 1, minuteOfDay/60, minuteOfDay%60, 0, 0, time.UTC).Format(model.ClockLayout)
}
