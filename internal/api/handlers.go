package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/neexbeast/tripplanner/internal/attractions"
	"github.com/neexbeast/tripplanner/internal/catalog"
	"github.com/neexbeast/tripplanner/internal/cost"
	"github.com/neexbeast/tripplanner/internal/geo"
	"github.com/neexbeast/tripplanner/internal/plan"
	"github.com/neexbeast/tripplanner/internal/storage"
	"github.com/neexbeast/tripplanner/internal/weather"
)

// MaxAttractionsLimit caps the limit query parameter.
const MaxAttractionsLimit = 50

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 20

// DefaultComposeTimeout bounds a whole plan composition. It must stay below
// the server's WriteTimeout so the response can still be written.
const DefaultComposeTimeout = 45 * time.Second

// Deps are the collaborators of Handlers. Store may be nil, in which case
// the plan persistence routes answer 503.
type Deps struct {
	Composer    PlanComposer
	Store       PlanStore
	Geocoder    Geocoder
	Attractions AttractionFinder
	Catalog     Catalog
	Log         *slog.Logger

	// ComposeTimeout defaults to DefaultComposeTimeout when zero.
	ComposeTimeout time.Duration
}

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	composer    PlanComposer
	store       PlanStore
	geocoder    Geocoder
	attractions AttractionFinder
	catalog     Catalog
	log         *slog.Logger

	composeTimeout time.Duration
}

// NewHandlers constructs Handlers from d.
func NewHandlers(d Deps) *Handlers {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.ComposeTimeout <= 0 {
		d.ComposeTimeout = DefaultComposeTimeout
	}
	return &Handlers{
		composer:    d.Composer,
		store:       d.Store,
		geocoder:    d.Geocoder,
		attractions: d.Attractions,
		catalog:     d.Catalog,
		log:         d.Log,

		composeTimeout: d.ComposeTimeout,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// errBadRequest marks request validation failures.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// writeComposeError maps Compose errors to HTTP statuses.
func (h *Handlers) writeComposeError(w http.ResponseWriter, city string, err error) {
	switch {
	case errors.Is(err, cost.ErrInvalidStyle):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, plan.ErrCityNotSupported):
		writeError(w, http.StatusNotFound, fmt.Sprintf("city not supported: %s", strings.TrimSpace(city)))
	case errors.Is(err, context.DeadlineExceeded):
		h.log.Warn("compose timed out", "city", city, "timeout", h.composeTimeout)
		writeError(w, http.StatusGatewayTimeout, "plan composition timed out")
	default:
		h.log.Error("compose failed", "city", city, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ComposePlan handles GET /api/v1/plans/{city}/{days}/{style}.
// Optional query parameters: start, end (YYYY-MM-DD), lat, lon, multiplier.
func (h *Handlers) ComposePlan(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")

	req, err := requestFromQuery(city, chi.URLParam(r, "days"), chi.URLParam(r, "style"), r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.composeTimeout)
	defer cancel()

	p, err := h.composer.Compose(ctx, req)
	if err != nil {
		h.writeComposeError(w, city, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func requestFromQuery(city, daysParam, style string, r *http.Request) (plan.Request, error) {
	days, err := parseDays(daysParam)
	if err != nil {
		return plan.Request{}, err
	}

	q := r.URL.Query()
	req := plan.Request{City: city, Days: days, Style: style}

	if req.Start, err = parseDate("start", q.Get("start")); err != nil {
		return plan.Request{}, err
	}
	if req.End, err = parseDate("end", q.Get("end")); err != nil {
		return plan.Request{}, err
	}
	if req.Coordinates, err = parseCoordinates(q.Get("lat"), q.Get("lon")); err != nil {
		return plan.Request{}, err
	}
	if m := q.Get("multiplier"); m != "" {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil || v <= 0 {
			return plan.Request{}, badRequest("invalid multiplier %q", m)
		}
		req.CostMultiplier = &v
	}

	return req, nil
}

func parseDays(s string) (int, error) {
	days, err := strconv.Atoi(s)
	if err != nil || days < 1 {
		return 0, badRequest("invalid days %q", s)
	}
	return days, nil
}

func parseDate(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(weather.DateLayout, s)
	if err != nil {
		return nil, badRequest("invalid %s date %q, want YYYY-MM-DD", name, s)
	}
	return &t, nil
}

// parseCoordinates ignores a lone lat or lon.
func parseCoordinates(lat, lon string) (*geo.Coordinates, error) {
	if lat == "" || lon == "" {
		return nil, nil
	}
	la, errLat := strconv.ParseFloat(lat, 64)
	lo, errLon := strconv.ParseFloat(lon, 64)
	c := geo.Coordinates{Latitude: la, Longitude: lo}
	if errLat != nil || errLon != nil || !c.Valid() {
		return nil, badRequest("invalid coordinates %q,%q", lat, lon)
	}
	return &c, nil
}

// createPlanRequest is the POST /api/v1/plans body.
type createPlanRequest struct {
	City       string   `json:"city"`
	Days       int      `json:"days"`
	Style      string   `json:"style"`
	StartDate  string   `json:"start_date,omitempty"`
	EndDate    string   `json:"end_date,omitempty"`
	Latitude   *float64 `json:"lat,omitempty"`
	Longitude  *float64 `json:"lon,omitempty"`
	Multiplier *float64 `json:"cost_multiplier,omitempty"`
}

func (b createPlanRequest) toRequest() (plan.Request, error) {
	if b.Days < 1 {
		return plan.Request{}, badRequest("invalid days %d", b.Days)
	}
	req := plan.Request{City: b.City, Days: b.Days, Style: b.Style}

	var err error
	if req.Start, err = parseDate("start", b.StartDate); err != nil {
		return plan.Request{}, err
	}
	if req.End, err = parseDate("end", b.EndDate); err != nil {
		return plan.Request{}, err
	}
	if c, ok := geo.FromPair(b.Latitude, b.Longitude); ok {
		if !c.Valid() {
			return plan.Request{}, badRequest("invalid coordinates %s", c)
		}
		req.Coordinates = &c
	}
	if b.Multiplier != nil {
		if *b.Multiplier <= 0 {
			return plan.Request{}, badRequest("invalid multiplier %v", *b.Multiplier)
		}
		req.CostMultiplier = b.Multiplier
	}
	return req, nil
}

type createPlanResponse struct {
	ID   uuid.UUID        `json:"id"`
	Plan *plan.TravelPlan `json:"plan"`
}

// CreatePlan handles POST /api/v1/plans.
// Composes a plan from the JSON body, stores it and returns its id.
func (h *Handlers) CreatePlan(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "plan storage not configured")
		return
	}

	var body createPlanRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req, err := body.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.composeTimeout)
	defer cancel()

	p, err := h.composer.Compose(ctx, req)
	if err != nil {
		h.writeComposeError(w, body.City, err)
		return
	}

	id, err := h.store.SavePlan(r.Context(), p)
	if err != nil {
		h.log.Error("save plan failed", "city", p.Query.City, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to store plan")
		return
	}

	w.Header().Set("Location", "/api/v1/plans/"+id.String())
	writeJSON(w, http.StatusCreated, createPlanResponse{ID: id, Plan: p})
}

// GetPlan handles GET /api/v1/plans/{id}.
func (h *Handlers) GetPlan(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "plan storage not configured")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	sp, err := h.store.GetPlan(r.Context(), id)
	if err != nil {
		h.log.Error("get plan failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if sp == nil {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}

	writeJSON(w, http.StatusOK, sp)
}

// ListPlans handles GET /api/v1/plans?city=&limit=.
// The city is canonicalized through the catalog before querying.
func (h *Handlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "plan storage not configured")
		return
	}

	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"), storage.DefaultListLimit, 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.catalog != nil {
		if d, ok := h.catalog.Match(city); ok {
			city = d.Name
		}
	}

	plans, err := h.store.ListPlansByCity(r.Context(), city, limit)
	if err != nil {
		h.log.Error("list plans failed", "city", city, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"city": city, "plans": plans})
}

func parseLimit(s string, fallback, ceiling int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, badRequest("invalid limit %q", s)
	}
	return min(n, ceiling), nil
}

type attractionsResponse struct {
	City        string                   `json:"city"`
	Country     string                   `json:"country,omitempty"`
	Status      attractions.Status       `json:"status"`
	Source      string                   `json:"source,omitempty"`
	Attractions []attractions.Attraction `json:"attractions"`
}

// Attractions handles GET /api/v1/attractions/{city}?limit=.
// 404 when the city cannot be resolved, 502 when every provider failed.
func (h *Handlers) Attractions(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(chi.URLParam(r, "city"))
	limit, err := parseLimit(r.URL.Query().Get("limit"), attractions.DefaultLimit, MaxAttractionsLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name, country := city, ""
	if h.catalog != nil {
		if d, ok := h.catalog.Match(city); ok {
			name, country = d.Name, d.Country
		}
	}

	loc, err := h.geocoder.Resolve(r.Context(), name)
	if err != nil {
		h.log.Info("attractions: city not resolved", "city", city, "err", err)
		writeError(w, http.StatusNotFound, fmt.Sprintf("city not supported: %s", city))
		return
	}
	if country == "" {
		country = loc.Country
	}

	res := h.attractions.ForCity(r.Context(), name, country, &loc.Coordinates, limit)
	if res.Status == attractions.StatusUnavailable {
		writeError(w, http.StatusBadGateway, "attractions unavailable")
		return
	}

	writeJSON(w, http.StatusOK, attractionsResponse{
		City:        name,
		Country:     country,
		Status:      res.Status,
		Source:      res.Source,
		Attractions: res.Items,
	})
}

type recommendationResponse struct {
	Tags        []string            `json:"tags"`
	Style       cost.Style          `json:"style"`
	Destination catalog.Destination `json:"destination"`
}

// Recommend handles GET /api/v1/recommendations?tags=a,b&style=.
// The style defaults to Standard.
func (h *Handlers) Recommend(w http.ResponseWriter, r *http.Request) {
	var tags []string
	for _, t := range strings.Split(r.URL.Query().Get("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		writeError(w, http.StatusBadRequest, "at least one tag is required")
		return
	}

	style := cost.Standard
	if s := r.URL.Query().Get("style"); s != "" {
		parsed, err := cost.ParseStyle(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		style = parsed
	}

	d, ok := h.catalog.Recommend(tags, style, nil)
	if !ok {
		writeError(w, http.StatusNotFound, "no destination matches the given tags")
		return
	}

	writeJSON(w, http.StatusOK, recommendationResponse{Tags: tags, Style: style, Destination: d})
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis
// connectivity. A nil redis is reported as "disabled" and does not degrade
// the status.
func HealthHandlerFunc(db, redis Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		check := func(name string, p Pinger) string {
			if p == nil {
				return "disabled"
			}
			if err := p.Ping(ctx); err != nil {
				log.Error("health check: ping failed", "component", name, "err", err)
				status = http.StatusServiceUnavailable
				return "error"
			}
			return "ok"
		}

		dbStatus := check("db", db)
		redisStatus := check("redis", redis)

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}

		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}
