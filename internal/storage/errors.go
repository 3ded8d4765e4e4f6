package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrSlotTaken is returned when an insert loses the race for a slot, whether
// caught by the in-transaction recheck or by the database exclusion
// constraint.
var ErrSlotTaken = errors.New("slot already booked")

// IsConflict reports whether err is a Postgres exclusion (23P01) or unique
// (23505) violation. The appointments table carries both kinds of guard.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "23P01" || pgErr.Code == "23505")
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
