package sqlstore

import (
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"

	"picky/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func valBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

func valJSON(v any, empty bool) (any, error) {
	if empty {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// encode returns the column values shared by insert and update, from name
// through places_data.
func encode(r domain.Restaurant) ([]any, error) {
	cuisines, err := valJSON(r.CuisineTypes, len(r.CuisineTypes) == 0)
	if err != nil {
		return nil, fmt.Errorf("encode cuisines: %w", err)
	}
	vibes, err := valJSON(r.Vibes, len(r.Vibes) == 0)
	if err != nil {
		return nil, fmt.Errorf("encode ambiance: %w", err)
	}
	places, err := valJSON(r.GooglePlaces, r.GooglePlaces == nil)
	if err != nil {
		return nil, fmt.Errorf("encode places data: %w", err)
	}
	var visited any
	if r.DateVisited != nil {
		visited = r.DateVisited.UTC()
	}
	loc := r.Location
	return []any{
		r.Name,
		nameKey(r.Name),
		valStr(loc.Address),
		loc.City,
		valStr(loc.State),
		valStr(loc.Country),
		valStr(loc.Neighborhood),
		valStr(loc.PostalCode),
		valF64(loc.Latitude),
		valF64(loc.Longitude),
		cuisines,
		valStr(string(r.PriceRange)),
		vibes,
		valF64(r.Rating),
		valStr(r.Notes),
		visited,
		valBool(r.WouldReturn),
		r.IsWishlist,
		places,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(sc scanner) (domain.Restaurant, error) {
	var r domain.Restaurant
	var (
		address, state, country      sql.NullString
		neighborhood, postal, price  sql.NullString
		notes                        sql.NullString
		lat, lon, rating             sql.NullFloat64
		visited                      sql.NullTime
		wouldReturn                  sql.NullBool
		cuisinesRaw, vibesRaw, place []byte
	)
	if err := sc.Scan(
		&r.ID,
		&r.Name,
		&address,
		&r.Location.City,
		&state,
		&country,
		&neighborhood,
		&postal,
		&lat, &lon,
		&cuisinesRaw,
		&price,
		&vibesRaw,
		&rating,
		&notes,
		&visited,
		&wouldReturn,
		&r.IsWishlist,
		&place,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return domain.Restaurant{}, err
	}

	r.Location.Address = address.String
	r.Location.State = state.String
	r.Location.Country = country.String
	r.Location.Neighborhood = neighborhood.String
	r.Location.PostalCode = postal.String
	if lat.Valid && lon.Valid {
		la, lo := lat.Float64, lon.Float64
		r.Location.Latitude, r.Location.Longitude = &la, &lo
	}
	r.PriceRange = domain.PriceRange(price.String)
	r.Notes = notes.String
	if rating.Valid {
		v := rating.Float64
		r.Rating = &v
	}
	if visited.Valid {
		t := visited.Time.UTC()
		r.DateVisited = &t
	}
	if wouldReturn.Valid {
		b := wouldReturn.Bool
		r.WouldReturn = &b
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()

	if len(cuisinesRaw) > 0 {
		if err := json.Unmarshal(cuisinesRaw, &r.CuisineTypes); err != nil {
			return domain.Restaurant{}, fmt.Errorf("decode cuisines of %s: %w", r.ID, err)
		}
	}
	if len(vibesRaw) > 0 {
		if err := json.Unmarshal(vibesRaw, &r.Vibes); err != nil {
			return domain.Restaurant{}, fmt.Errorf("decode ambiance of %s: %w", r.ID, err)
		}
	}
	if len(place) > 0 {
		var g domain.GooglePlacesData
		if err := json.Unmarshal(place, &g); err != nil {
			return domain.Restaurant{}, fmt.Errorf("decode places data of %s: %w", r.ID, err)
		}
		r.GooglePlaces = &g
	}
	return r, nil
}
