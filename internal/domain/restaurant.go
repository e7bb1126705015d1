package domain

import (
	"strings"
	"time"
)

type Location struct {
	Address      string   `json:"address,omitempty"`
	City         string   `json:"city"`
	State        string   `json:"state,omitempty"`
	Country      string   `json:"country,omitempty"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	PostalCode   string   `json:"postal_code,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// Coords returns the coordinate pair; ok is false unless both halves are set.
func (l Location) Coords() (lat, lon float64, ok bool) {
	if l.Latitude == nil || l.Longitude == nil {
		return 0, 0, false
	}
	return *l.Latitude, *l.Longitude, true
}

func (l Location) Geocoded() bool {
	_, _, ok := l.Coords()
	return ok
}

// Query renders the location as a free-text address for geocoding.
func (l Location) Query() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{l.Address, l.City, l.State, l.PostalCode, l.Country} {
		if t := strings.TrimSpace(p); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, ", ")
}

type Restaurant struct {
	ID           string            `json:"id,omitempty"` // store record id; empty until persisted
	Name         string            `json:"name"`
	Location     Location          `json:"location"`
	CuisineTypes []Cuisine         `json:"cuisine_type"`
	PriceRange   PriceRange        `json:"price_range,omitempty"`
	Vibes        []Vibe            `json:"ambiance"`
	Rating       *float64          `json:"personal_rating,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	DateVisited  *time.Time        `json:"date_visited,omitempty"`
	WouldReturn  *bool             `json:"would_return,omitempty"`
	IsWishlist   bool              `json:"is_wishlist"`
	GooglePlaces *GooglePlacesData `json:"google_places_data,omitempty"`
	CreatedAt    time.Time         `json:"created_at,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at,omitempty"`
}

// DedupKey is the heuristic same-place identity: name and city, case-folded.
// Distinct places sharing a name in one city collide, and spelling variants
// of one place never merge.
func (r Restaurant) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(r.Name)) + "|" + strings.ToLower(strings.TrimSpace(r.Location.City))
}

func (r Restaurant) Rated() bool { return r.Rating != nil }

// PlaceID is the provider id, or "" when the record was never enriched.
func (r Restaurant) PlaceID() string {
	if r.GooglePlaces == nil {
		return ""
	}
	return r.GooglePlaces.PlaceID
}

// ExternalRating is the provider's public rating, when enrichment carried one.
func (r Restaurant) ExternalRating() (float64, bool) {
	if r.GooglePlaces == nil || r.GooglePlaces.Rating == nil {
		return 0, false
	}
	return *r.GooglePlaces.Rating, true
}

func (r Restaurant) HasCuisine(c Cuisine) bool {
	for _, x := range r.CuisineTypes {
		if x == c {
			return true
		}
	}
	return false
}

func (r Restaurant) HasVibe(v Vibe) bool {
	for _, x := range r.Vibes {
		if x == v {
			return true
		}
	}
	return false
}

// Clone deep-copies the slices and pointers so the copy can be mutated freely.
func (r Restaurant) Clone() Restaurant {
	out := r
	out.CuisineTypes = append([]Cuisine(nil), r.CuisineTypes...)
	out.Vibes = append([]Vibe(nil), r.Vibes...)
	out.Location.Latitude = clonePtr(r.Location.Latitude)
	out.Location.Longitude = clonePtr(r.Location.Longitude)
	out.Rating = clonePtr(r.Rating)
	out.DateVisited = clonePtr(r.DateVisited)
	out.WouldReturn = clonePtr(r.WouldReturn)
	if r.GooglePlaces != nil {
		g := r.GooglePlaces.Clone()
		out.GooglePlaces = &g
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// GooglePlacesData is the enrichment payload fetched from the places provider.
type GooglePlacesData struct {
	PlaceID          string        `json:"place_id"`
	Name             string        `json:"name"`
	Rating           *float64      `json:"rating,omitempty"`
	UserRatingsTotal int           `json:"user_ratings_total,omitempty"`
	PriceLevel       *int          `json:"price_level,omitempty"`
	Types            []string      `json:"types,omitempty"`
	FormattedAddress string        `json:"formatted_address,omitempty"`
	Phone            string        `json:"phone_number,omitempty"`
	Website          string        `json:"website,omitempty"`
	OpeningHours     []string      `json:"opening_hours,omitempty"`
	Photos           []string      `json:"photos,omitempty"`
	Reviews          []PlaceReview `json:"reviews,omitempty"`
	LastUpdated      time.Time     `json:"last_updated"`
}

func (g GooglePlacesData) Clone() GooglePlacesData {
	out := g
	out.Rating = clonePtr(g.Rating)
	out.PriceLevel = clonePtr(g.PriceLevel)
	out.Types = append([]string(nil), g.Types...)
	out.OpeningHours = append([]string(nil), g.OpeningHours...)
	out.Photos = append([]string(nil), g.Photos...)
	out.Reviews = append([]PlaceReview(nil), g.Reviews...)
	return out
}

type PlaceReview struct {
	Author string  `json:"author_name,omitempty"`
	Rating float64 `json:"rating,omitempty"`
	Text   string  `json:"text,omitempty"`
	Time   int64   `json:"time,omitempty"`
}

// WasEnriched reports whether after carries provider data newer than before.
func WasEnriched(before, after Restaurant) bool {
	if after.GooglePlaces == nil || after.GooglePlaces.PlaceID == "" {
		return false
	}
	if before.GooglePlaces == nil {
		return true
	}
	return after.GooglePlaces.LastUpdated.After(before.GooglePlaces.LastUpdated)
}
