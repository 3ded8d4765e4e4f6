package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/pawsnclaws/groomtime/internal/model"
	"github.com/pawsnclaws/groomtime/libs/db"
)

// ServiceCatalog owns the groom services table. The engine only reads
// durations from it; the rest is admin bookkeeping.
type ServiceCatalog struct {
	pool *db.Pool
}

func NewServiceCatalog(pool *db.Pool) *ServiceCatalog {
	return &ServiceCatalog{pool: pool}
}

// GetDuration returns the service duration in minutes, or pgx.ErrNoRows for
// an unknown service id.
func (c *ServiceCatalog) GetDuration(ctx context.Context, serviceID string) (int, error) {
	var minutes int
	err := c.pool.QueryRow(ctx, `
		SELECT duration_minutes
		FROM services
		WHERE id = $1
	`, serviceID).Scan(&minutes)
	return minutes, err
}

func (c *ServiceCatalog) List(ctx context.Context) ([]model.Service, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id::text, name, duration_minutes
		FROM services
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.DurationMinutes); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return services, nil
}

func (c *ServiceCatalog) Create(ctx context.Context, name string, durationMinutes int) (model.Service, error) {
	s := model.Service{ID: uuid.NewString(), Name: name, DurationMinutes: durationMinutes}
	_, err := c.pool.Exec(ctx, `
		INSERT INTO services (id, name, duration_minutes)
		VALUES ($1, $2, $3)
	`, s.ID, s.Name, s.DurationMinutes)
	if err != nil {
		return model.Service{}, err
	}
	return s, nil
}
