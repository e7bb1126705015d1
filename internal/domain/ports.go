package domain

import "context"

// RestaurantRepository is the visit log. GetByName returns ErrNotFound when
// no record matches.
type RestaurantRepository interface {
	// Write paths
	Add(ctx context.Context, r Restaurant) (string, error)
	Update(ctx context.Context, id string, r Restaurant) error

	// Read paths
	GetAll(ctx context.Context) ([]Restaurant, error)
	GetByName(ctx context.Context, name string) (Restaurant, error)
	GetRecent(ctx context.Context, limit int) ([]Restaurant, error)
	GetFavorites(ctx context.Context, minRating float64, limit int) ([]Restaurant, error)
	GetWishlist(ctx context.Context, limit int) ([]Restaurant, error)

	Ping(ctx context.Context) error
}

// PlacesClient is the search and enrichment oracle. Enrich never fails: on
// any error it returns its input unchanged.
type PlacesClient interface {
	Search(ctx context.Context, query string, lat, lon float64, radiusM int) ([]Place, error)
	FindByName(ctx context.Context, name string, lat, lon float64, radiusM int) (*Place, error)
	GetDetails(ctx context.Context, placeID string) (*GooglePlacesData, error)
	Geocode(ctx context.Context, address string) (lat, lon float64, err error)
	Enrich(ctx context.Context, r Restaurant) Restaurant
	Ping(ctx context.Context) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
