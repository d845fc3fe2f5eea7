package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/tripplanner/internal/plan"
)

// DefaultListLimit caps ListPlansByCity when no limit is given.
const DefaultListLimit = 20

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// StoredPlan is a saved plan with its storage metadata.
type StoredPlan struct {
	ID        uuid.UUID       `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Plan      plan.TravelPlan `json:"plan"`
}

// PlanSummary is the listing form of a saved plan.
type PlanSummary struct {
	ID        uuid.UUID `json:"id"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Days      int       `json:"days"`
	Style     string    `json:"style"`
	TotalCost float64   `json:"total_cost"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists composed plans.
type Repository struct {
	q     Querier
	newID func() uuid.UUID
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool, newID: uuid.New}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q, newID: uuid.New}
}

// SavePlan stores p under a new ID, which is also written into p.ID.
func (r *Repository) SavePlan(ctx context.Context, p *plan.TravelPlan) (uuid.UUID, error) {
	id := r.newID()
	p.ID = id.String()

	dataJSON, err := json.Marshal(p)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshaling plan for city %s: %w", p.Query.City, err)
	}

	const q = `
		INSERT INTO plans (id, city, country, days, style, total_cost, currency, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if _, err := r.q.Exec(ctx, q,
		id,
		p.Query.City,
		p.Query.Country,
		p.Query.Days,
		string(p.Query.Style),
		p.Cost.Total,
		p.Cost.TargetCurrency,
		dataJSON,
	); err != nil {
		p.ID = ""
		return uuid.Nil, fmt.Errorf("inserting plan for city %s: %w", p.Query.City, err)
	}

	return id, nil
}

// GetPlan retrieves a saved plan by ID.
// Returns nil, nil when no such plan exists.
func (r *Repository) GetPlan(ctx context.Context, id uuid.UUID) (*StoredPlan, error) {
	const q = `
		SELECT id, data, created_at
		FROM plans
		WHERE id = $1
	`

	var sp StoredPlan
	var dataJSON []byte

	err := r.q.QueryRow(ctx, q, id).Scan(&sp.ID, &dataJSON, &sp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying plan %s: %w", id, err)
	}

	if err := json.Unmarshal(dataJSON, &sp.Plan); err != nil {
		return nil, fmt.Errorf("unmarshaling plan %s: %w", id, err)
	}

	return &sp, nil
}

// ListPlansByCity returns the newest saved plans for a canonical city name.
// Uses the JSONB @> containment operator on the stored query.
func (r *Repository) ListPlansByCity(ctx context.Context, city string, limit int) ([]PlanSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	filter, err := json.Marshal(map[string]any{
		"query": map[string]any{"city": city},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling JSONB filter: %w", err)
	}

	const q = `
		SELECT id, city, country, days, style, total_cost, currency, created_at
		FROM plans
		WHERE data @> $1::jsonb
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, q, string(filter), limit)
	if err != nil {
		return nil, fmt.Errorf("querying plans for city %s: %w", city, err)
	}
	defer rows.Close()

	results := []PlanSummary{}
	for rows.Next() {
		var s PlanSummary
		if err := rows.Scan(
			&s.ID,
			&s.City,
			&s.Country,
			&s.Days,
			&s.Style,
			&s.TotalCost,
			&s.Currency,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning plan row: %w", err)
		}
		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plan rows: %w", err)
	}

	return results, nil
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if p, ok := r.q.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	var one int
	return r.q.QueryRow(ctx, "SELECT 1").Scan(&one)
}
