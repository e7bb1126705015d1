package recommend_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"picky/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	mu      sync.Mutex
	all     []domain.Restaurant
	err     error
	getAlls atomic.Int32
}

func (f *fakeRepo) GetAll(ctx context.Context) ([]domain.Restaurant, error) {
	f.getAlls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Restaurant(nil), f.all...), nil
}

func (f *fakeRepo) GetByName(ctx context.Context, name string) (domain.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.all {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return domain.Restaurant{}, domain.ErrNotFound
}

func (f *fakeRepo) Add(ctx context.Context, r domain.Restaurant) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.all = append(f.all, r)
	return r.ID, nil
}

func (f *fakeRepo) Update(ctx context.Context, id string, r domain.Restaurant) error {
	return errors.New("not used")
}

func (f *fakeRepo) GetRecent(ctx context.Context, limit int) ([]domain.Restaurant, error) {
	return nil, nil
}

func (f *fakeRepo) GetFavorites(ctx context.Context, minRating float64, limit int) ([]domain.Restaurant, error) {
	return nil, nil
}

func (f *fakeRepo) GetWishlist(ctx context.Context, limit int) ([]domain.Restaurant, error) {
	return nil, nil
}

func (f *fakeRepo) Ping(ctx context.Context) error { return nil }

type fakePlaces struct {
	mu      sync.Mutex
	byQuery map[string][]domain.Place
	err     error
	queries []string
	radiusM int
}

func (f *fakePlaces) Search(ctx context.Context, query string, lat, lon float64, radiusM int) ([]domain.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.radiusM = radiusM
	if f.err != nil {
		return nil, f.err
	}
	return f.byQuery[query], nil
}

func (f *fakePlaces) FindByName(ctx context.Context, name string, lat, lon float64, radiusM int) (*domain.Place, error) {
	return nil, domain.ErrNotFound
}

func (f *fakePlaces) GetDetails(ctx context.Context, placeID string) (*domain.GooglePlacesData, error) {
	return nil, domain.ErrNotFound
}

func (f *fakePlaces) Geocode(ctx context.Context, address string) (float64, float64, error) {
	return 0, 0, domain.ErrNotFound
}

func (f *fakePlaces) Enrich(ctx context.Context, r domain.Restaurant) domain.Restaurant { return r }

func (f *fakePlaces) Ping(ctx context.Context) error { return nil }

// ---- builders ----

func ptr[T any](v T) *T { return &v }

func rated(name string, rating float64, cuisines ...domain.Cuisine) domain.Restaurant {
	return domain.Restaurant{
		ID:           "id-" + strings.ToLower(name),
		Name:         name,
		Location:     domain.Location{City: "New York", State: "NY"},
		CuisineTypes: cuisines,
		Rating:       ptr(rating),
	}
}

func geocoded(lat, lon float64) domain.Location {
	return domain.Location{City: "New York", State: "NY", Latitude: ptr(lat), Longitude: ptr(lon)}
}
