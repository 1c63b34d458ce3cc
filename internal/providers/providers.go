// Package providers stores service-provider profiles and answers the
// radius queries the notification fan-out needs.
package providers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Provider is a subscribed service provider who can receive lead alerts.
type Provider struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email,omitempty"`
	ServiceType string  `json:"service_type"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	PushToken   string  `json:"-"`
	Active      bool    `json:"active"`
}

// Finder locates providers eligible for a lead alert.
type Finder interface {
	FindNearby(ctx context.Context, lat, lng, radiusKm float64, serviceType string) ([]Provider, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresFinder runs the radius query directly in SQL using the haversine
// formula, so it works without PostGIS.
type PostgresFinder struct {
	pool querier
}

func NewPostgresFinder(pool *pgxpool.Pool) *PostgresFinder {
	if pool == nil {
		panic("providers: pgx pool required")
	}
	return &PostgresFinder{pool: pool}
}

// NewPostgresFinderWithQuerier exists for tests using pgxmock.
func NewPostgresFinderWithQuerier(q querier) *PostgresFinder {
	if q == nil {
		panic("providers: querier required")
	}
	return &PostgresFinder{pool: q}
}

// FindNearby returns active providers of the given category within radiusKm
// of the point, nearest first.
func (f *PostgresFinder) FindNearby(ctx context.Context, lat, lng, radiusKm float64, serviceType string) ([]Provider, error) {
	query := `
		SELECT id, name, phone, COALESCE(email, ''), service_type, lat, lng, COALESCE(push_token, ''), active
		FROM providers
		WHERE active = true
		  AND ($4 = '' OR service_type = $4)
		  AND 6371 * 2 * asin(sqrt(
				power(sin(radians(lat - $1) / 2), 2) +
				cos(radians($1)) * cos(radians(lat)) *
				power(sin(radians(lng - $2) / 2), 2)
			)) <= $3
		ORDER BY 6371 * 2 * asin(sqrt(
				power(sin(radians(lat - $1) / 2), 2) +
				cos(radians($1)) * cos(radians(lat)) *
				power(sin(radians(lng - $2) / 2), 2)
			))
		LIMIT 50
	`
	rows, err := f.pool.Query(ctx, query, lat, lng, radiusKm, serviceType)
	if err != nil {
		return nil, fmt.Errorf("providers: nearby query failed: %w", err)
	}
	defer rows.Close()

	var out []Provider
	for rows.Next() {
		var p Provider
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.ServiceType, &p.Lat, &p.Lng, &p.PushToken, &p.Active); err != nil {
			return nil, fmt.Errorf("providers: scan failed: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("providers: nearby rows: %w", err)
	}
	return out, nil
}
