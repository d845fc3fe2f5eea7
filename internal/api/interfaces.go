package api

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/neexbeast/tripplanner/internal/attractions"
	"github.com/neexbeast/tripplanner/internal/catalog"
	"github.com/neexbeast/tripplanner/internal/cost"
	"github.com/neexbeast/tripplanner/internal/geo"
	"github.com/neexbeast/tripplanner/internal/geocode"
	"github.com/neexbeast/tripplanner/internal/plan"
	"github.com/neexbeast/tripplanner/internal/storage"
)

// PlanComposer builds travel plans.
type PlanComposer interface {
	Compose(ctx context.Context, req plan.Request) (*plan.TravelPlan, error)
}

// PlanStore defines the storage operations needed by handlers.
type PlanStore interface {
	SavePlan(ctx context.Context, p *plan.TravelPlan) (uuid.UUID, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*storage.StoredPlan, error)
	ListPlansByCity(ctx context.Context, city string, limit int) ([]storage.PlanSummary, error)
}

// Geocoder resolves a city to a location.
type Geocoder interface {
	Resolve(ctx context.Context, city string) (geocode.Location, error)
}

// AttractionFinder defines the attractions lookup needed by handlers.
type AttractionFinder interface {
	ForCity(ctx context.Context, city, country string, center *geo.Coordinates, limit int) attractions.Result
}

// Catalog matches city names and recommends destinations.
type Catalog interface {
	Match(input string) (catalog.Destination, bool)
	Recommend(tags []string, style cost.Style, rnd *rand.Rand) (catalog.Destination, bool)
}
