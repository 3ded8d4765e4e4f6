package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pawsnclaws/groomtime/internal/model"
	"github.com/pawsnclaws/groomtime/internal/outbox"
	"github.com/pawsnclaws/groomtime/libs/db"
)

type WaitlistEntry struct {
	ID            string
	RequestedDate string
	ServiceID     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Status        string
	CreatedAt     time.Time
}

// WaitlistRepository tracks customers waiting for a full date. The
// availability engine only ever reads the active count.
type WaitlistRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewWaitlistRepository(pool *db.Pool, outboxRepo *outbox.Repository) *WaitlistRepository {
	return &WaitlistRepository{pool: pool, outbox: outboxRepo}
}

func (r *WaitlistRepository) CountActive(ctx context.Context, date string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM waitlist_entries
		WHERE requested_date = $1 AND status = 'active'
	`, dateParam(date)).Scan(&count)
	return count, err
}

// Join inserts the entry and its outbox event in one transaction.
func (r *WaitlistRepository) Join(ctx context.Context, entry WaitlistEntry, events []outbox.Event) (WaitlistEntry, error) {
	entry.ID = uuid.NewString()
	entry.Status = "active"

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return WaitlistEntry{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO waitlist_entries
			(id, requested_date, service_id, customer_name, customer_email, customer_phone, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, entry.ID, dateParam(entry.RequestedDate), entry.ServiceID, entry.CustomerName,
		entry.CustomerEmail, entry.CustomerPhone, entry.Status).Scan(&entry.CreatedAt)
	if err != nil {
		return WaitlistEntry{}, err
	}

	for _, evt := range events {
		evt.AggregateID = entry.ID
		if err := r.outbox.Insert(ctx, tx, evt); err != nil {
			return WaitlistEntry{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return WaitlistEntry{}, err
	}
	return entry, nil
}

func (r *WaitlistRepository) ListByDate(ctx context.Context, date string) ([]WaitlistEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, requested_date, service_id, customer_name, customer_email, customer_phone, status, created_at
		FROM waitlist_entries
		WHERE requested_date = $1
		ORDER BY created_at ASC
	`, dateParam(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []WaitlistEntry
	for rows.Next() {
		var e WaitlistEntry
		var requested time.Time
		if err := rows.Scan(&e.ID, &requested, &e.ServiceID, &e.CustomerName, &e.CustomerEmail, &e.CustomerPhone, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.RequestedDate = requested.Format(model.DateLayout)
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}
