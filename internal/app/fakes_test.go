package app_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"picky/internal/app"
	"picky/internal/domain"
	"picky/internal/recommend"
)

// ---- fakes ----

type memRepo struct {
	mu      sync.Mutex
	order   []string
	byID    map[string]domain.Restaurant
	pingErr error
	panics  bool
	favMin  float64
}

func newMemRepo(rs ...domain.Restaurant) *memRepo {
	m := &memRepo{byID: map[string]domain.Restaurant{}}
	for _, r := range rs {
		_, _ = m.Add(context.Background(), r)
	}
	return m
}

func (m *memRepo) Add(ctx context.Context, r domain.Restaurant) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = fmt.Sprintf("r%d", len(m.order)+1)
	}
	r.UpdatedAt = time.Date(2024, 1, len(m.order)+1, 0, 0, 0, 0, time.UTC)
	m.order = append(m.order, r.ID)
	m.byID[r.ID] = r
	return r.ID, nil
}

func (m *memRepo) Update(ctx context.Context, id string, r domain.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	r.ID = id
	m.byID[id] = r
	return nil
}

func (m *memRepo) GetAll(ctx context.Context) ([]domain.Restaurant, error) {
	if m.panics {
		panic("boom")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Restaurant, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id].Clone())
	}
	return out, nil
}

func (m *memRepo) GetByName(ctx context.Context, name string) (domain.Restaurant, error) {
	all, _ := m.GetAll(ctx)
	for _, r := range all {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return domain.Restaurant{}, fmt.Errorf("restaurant %q: %w", name, domain.ErrNotFound)
}

// sqlLimit truncates like SQL's LIMIT n: zero or less yields no rows.
func sqlLimit(rs []domain.Restaurant, limit int) []domain.Restaurant {
	if limit <= 0 {
		return nil
	}
	if len(rs) > limit {
		return rs[:limit]
	}
	return rs
}

func (m *memRepo) GetRecent(ctx context.Context, limit int) ([]domain.Restaurant, error) {
	all, _ := m.GetAll(ctx)
	return sqlLimit(all, limit), nil
}

func (m *memRepo) GetFavorites(ctx context.Context, minRating float64, limit int) ([]domain.Restaurant, error) {
	m.favMin = minRating
	all, _ := m.GetAll(ctx)
	var out []domain.Restaurant
	for _, r := range all {
		if r.Rated() && *r.Rating >= minRating {
			out = append(out, r)
		}
	}
	return sqlLimit(out, limit), nil
}

func (m *memRepo) GetWishlist(ctx context.Context, limit int) ([]domain.Restaurant, error) {
	all, _ := m.GetAll(ctx)
	var out []domain.Restaurant
	for _, r := range all {
		if r.IsWishlist {
			out = append(out, r)
		}
	}
	return sqlLimit(out, limit), nil
}

func (m *memRepo) Ping(ctx context.Context) error { return m.pingErr }

func (m *memRepo) get(name string) domain.Restaurant {
	r, _ := m.GetByName(context.Background(), name)
	return r
}

type stubPlaces struct {
	mu       sync.Mutex
	failing  map[string]bool
	enriched []string
	geocodes []string
	pingErr  error
}

func (p *stubPlaces) Search(ctx context.Context, query string, lat, lon float64, radiusM int) ([]domain.Place, error) {
	return nil, nil
}

func (p *stubPlaces) FindByName(ctx context.Context, name string, lat, lon float64, radiusM int) (*domain.Place, error) {
	return nil, domain.ErrNotFound
}

func (p *stubPlaces) GetDetails(ctx context.Context, placeID string) (*domain.GooglePlacesData, error) {
	return nil, domain.ErrNotFound
}

func (p *stubPlaces) Geocode(ctx context.Context, address string) (float64, float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.geocodes = append(p.geocodes, address)
	return 40.0, -73.0, nil
}

func (p *stubPlaces) Enrich(ctx context.Context, r domain.Restaurant) domain.Restaurant {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enriched = append(p.enriched, r.Name)
	if p.failing[r.Name] {
		return r
	}
	out := r.Clone()
	out.GooglePlaces = &domain.GooglePlacesData{
		PlaceID:     "pid-" + strings.ToLower(r.Name),
		Name:        r.Name,
		LastUpdated: time.Now(),
	}
	return out
}

func (p *stubPlaces) Ping(ctx context.Context) error { return p.pingErr }

var errDown = errors.New("down")

// ---- builders ----

func ptr[T any](v T) *T { return &v }

func rated(id, name string, rating float64, cuisines ...domain.Cuisine) domain.Restaurant {
	return domain.Restaurant{
		ID:           id,
		Name:         name,
		Location:     domain.Location{City: "New York", State: "NY"},
		CuisineTypes: cuisines,
		Rating:       ptr(rating),
	}
}

func newService(repo *memRepo, places domain.PlacesClient) *app.Service {
	engine := recommend.NewEngine(
		recommend.NewProfileBuilder(repo),
		recommend.NewAggregator(repo, places, 2),
		recommend.NewScorer(recommend.DefaultWeights()),
	)
	return app.NewService(repo, places, engine, app.Options{
		EnrichDelay: time.Nanosecond,
		Version:     "test",
	})
}
