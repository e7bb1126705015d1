package places

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"picky/internal/domain"
)

const (
	findRadiusM   = 10000
	detailsFields = "place_id,name,rating,user_ratings_total,price_level,types,formatted_address," +
		"formatted_phone_number,website,opening_hours,photos,reviews,geometry"
)

var _ domain.PlacesClient = (*Client)(nil)

func latLon(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
}

// Search runs a nearby search for restaurants matching query.
func (c *Client) Search(ctx context.Context, query string, lat, lon float64, radiusM int) ([]domain.Place, error) {
	params := url.Values{}
	params.Set("location", latLon(lat, lon))
	params.Set("radius", strconv.Itoa(radiusM))
	params.Set("type", "restaurant")
	if query != "" {
		params.Set("keyword", query)
	}
	var resp searchResponse
	if err := c.call(ctx, "place/nearbysearch", params, &resp); err != nil {
		return nil, fmt.Errorf("nearby search %q: %w", query, err)
	}
	return collect(resp.Results), nil
}

// FindByName text-searches "<name> restaurant" and returns the first hit whose
// name contains name, case-insensitively. A nil place means no match.
func (c *Client) FindByName(ctx context.Context, name string, lat, lon float64, radiusM int) (*domain.Place, error) {
	if radiusM <= 0 {
		radiusM = findRadiusM
	}
	params := url.Values{}
	params.Set("query", name+" restaurant")
	params.Set("location", latLon(lat, lon))
	params.Set("radius", strconv.Itoa(radiusM))
	params.Set("type", "restaurant")
	var resp searchResponse
	if err := c.call(ctx, "place/textsearch", params, &resp); err != nil {
		return nil, fmt.Errorf("text search %q: %w", name, err)
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for _, p := range collect(resp.Results) {
		if strings.Contains(strings.ToLower(p.Name), want) {
			return &p, nil
		}
	}
	return nil, nil
}

func (c *Client) GetDetails(ctx context.Context, placeID string) (*domain.GooglePlacesData, error) {
	d, err := c.details(ctx, placeID)
	if err != nil {
		return nil, err
	}
	g := d.toData(placeID)
	g.LastUpdated = c.now().UTC()
	return &g, nil
}

func (c *Client) details(ctx context.Context, placeID string) (*detailsResult, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailsFields)
	var resp detailsResponse
	if err := c.call(ctx, "place/details", params, &resp); err != nil {
		return nil, fmt.Errorf("details %s: %w", placeID, err)
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("details %s: %w", placeID, ErrNotFound)
	}
	return resp.Result, nil
}

// Geocode resolves a free-text address to the first result's coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (float64, float64, error) {
	if strings.TrimSpace(address) == "" {
		return 0, 0, fmt.Errorf("geocode: empty address: %w", domain.ErrInvalid)
	}
	params := url.Values{}
	params.Set("address", address)
	var resp geocodeResponse
	if err := c.call(ctx, "geocode", params, &resp); err != nil {
		return 0, 0, fmt.Errorf("geocode %q: %w", address, err)
	}
	for _, r := range resp.Results {
		if loc := r.Geometry.Location; loc != nil {
			return loc.Lat, loc.Lng, nil
		}
	}
	return 0, 0, fmt.Errorf("geocode %q: %w", address, ErrNotFound)
}

// Ping geocodes a well-known address.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.Geocode(ctx, "New York, NY")
	return err
}

// Enrich refreshes r's places data. Records with a place id get fresh details;
// others are located by name near their coordinates, geocoding the address
// when they have none. Coordinates are filled from the provider geometry. Any
// failure returns r unchanged.
func (c *Client) Enrich(ctx context.Context, r domain.Restaurant) domain.Restaurant {
	out, err := c.enrich(ctx, r.Clone())
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Str("restaurant", r.Name).Msg("enrichment failed")
		}
		return r
	}
	return out
}

func (c *Client) enrich(ctx context.Context, r domain.Restaurant) (domain.Restaurant, error) {
	placeID := r.PlaceID()
	if placeID == "" {
		lat, lon, ok := r.Location.Coords()
		if !ok {
			var err error
			if lat, lon, err = c.Geocode(ctx, r.Location.Query()); err != nil {
				return r, err
			}
		}
		p, err := c.FindByName(ctx, r.Name, lat, lon, findRadiusM)
		if err != nil {
			return r, err
		}
		if p == nil {
			return r, fmt.Errorf("find %q: %w", r.Name, ErrNotFound)
		}
		placeID = p.PlaceID
	}

	d, err := c.details(ctx, placeID)
	if err != nil {
		return r, err
	}
	g := d.toData(placeID)
	g.LastUpdated = c.now().UTC()
	r.GooglePlaces = &g
	if loc := d.Geometry.Location; loc != nil {
		lat, lng := loc.Lat, loc.Lng
		r.Location.Latitude, r.Location.Longitude = &lat, &lng
	}
	if !r.PriceRange.Known() && g.PriceLevel != nil {
		if tier, ok := domain.PriceFromLevel(*g.PriceLevel); ok {
			r.PriceRange = tier
		}
	}
	return r, nil
}

func collect(results []placeResult) []domain.Place {
	out := make([]domain.Place, 0, len(results))
	for _, pr := range results {
		if p, ok := pr.toPlace(); ok {
			out = append(out, p)
		}
	}
	return out
}
