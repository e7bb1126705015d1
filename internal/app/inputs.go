package app

import (
	"bytes"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"picky/internal/domain"
)

// StringList decodes from a JSON array or a comma-separated string.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = splitList(s)
		return nil
	}
	var xs []string
	if err := json.Unmarshal(b, &xs); err != nil {
		return err
	}
	*l = xs
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

type LocationInput struct {
	Address   string   `json:"address,omitempty"`
	City      string   `json:"city,omitempty" validate:"omitempty,max=128"`
	State     string   `json:"state,omitempty" validate:"omitempty,max=64"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

func (in LocationInput) location() domain.Location {
	return domain.Location{
		Address:   strings.TrimSpace(in.Address),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		Country:   strings.TrimSpace(in.Country),
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
}

type RecommendationRequest struct {
	UserID string `json:"user_id,omitempty"`
	LocationInput
	Occasion            string     `json:"occasion,omitempty"`
	CuisinePreferences  StringList `json:"cuisine_preferences,omitempty"`
	PricePreference     string     `json:"price_preference,omitempty"`
	AmbiancePreferences StringList `json:"ambiance_preferences,omitempty"`
	MaxDistanceKm       float64    `json:"max_distance_km,omitempty" validate:"gte=0,lte=500"`
	MaxResults          int        `json:"max_results,omitempty" validate:"gte=0,lte=100"`
	ExcludeVisited      bool       `json:"exclude_visited,omitempty"`
	IncludeWishlist     *bool      `json:"include_wishlist,omitempty"`
}

type VisitRequest struct {
	UserID         string `json:"user_id,omitempty"`
	RestaurantName string `json:"restaurant_name" validate:"required"`
	LocationInput
	Rating       *float64   `json:"rating,omitempty"`
	CuisineTypes StringList `json:"cuisine_types,omitempty"`
	PriceRange   string     `json:"price_range,omitempty"`
	Vibes        StringList `json:"vibes,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	DateVisited  string     `json:"date_visited,omitempty"`
	WouldReturn  *bool      `json:"would_return,omitempty"`
	IsWishlist   bool       `json:"is_wishlist,omitempty"`
}

type RatingRequest struct {
	UserID         string   `json:"user_id,omitempty"`
	RestaurantName string   `json:"restaurant_name" validate:"required"`
	NewRating      *float64 `json:"new_rating" validate:"required"`
	Notes          string   `json:"notes,omitempty"`
}

type SimilarRequest struct {
	UserID         string `json:"user_id,omitempty"`
	RestaurantName string `json:"restaurant_name" validate:"required"`
	MaxResults     int    `json:"max_results,omitempty" validate:"gte=0,lte=50"`
}

type SessionRequest struct {
	UserID string `json:"user_id,omitempty"`
	LocationInput
	Occasion           string     `json:"occasion,omitempty"`
	CuisinePreferences StringList `json:"cuisine_preferences,omitempty"`
	MaxDistanceKm      float64    `json:"max_distance_km,omitempty" validate:"gte=0,lte=500"`
	MaxResults         int        `json:"max_results,omitempty" validate:"gte=0,lte=100"`
}

// FeedbackRequest carries liked and disliked ids plus taste signals. Listed
// cuisine and vibe preferences count as a top rating; the rating maps carry
// explicit 1-5 scores.
type FeedbackRequest struct {
	SessionID          string             `json:"session_id" validate:"required"`
	LikedRestaurantIDs StringList         `json:"liked_restaurant_ids,omitempty"`
	DislikedIDs        StringList         `json:"disliked_restaurant_ids,omitempty"`
	CuisinePreferences StringList         `json:"cuisine_preferences,omitempty"`
	VibePreferences    StringList         `json:"vibe_preferences,omitempty"`
	CuisineRatings     map[string]float64 `json:"cuisine_ratings,omitempty"`
	VibeRatings        map[string]float64 `json:"vibe_ratings,omitempty"`
	PriceRatings       map[string]float64 `json:"price_ratings,omitempty"`
	AdditionalNotes    string             `json:"additional_notes,omitempty"`
}

const preferredRating = 5.0

func (in FeedbackRequest) feedback() domain.SessionFeedback {
	fb := domain.SessionFeedback{
		LikedRestaurants:    []string(in.LikedRestaurantIDs),
		DislikedRestaurants: []string(in.DislikedIDs),
		CuisineFeedback:     map[domain.Cuisine]float64{},
		VibeFeedback:        map[domain.Vibe]float64{},
		PriceFeedback:       map[domain.PriceRange]float64{},
		AdditionalNotes:     in.AdditionalNotes,
	}
	for _, c := range parseList("cuisine", in.CuisinePreferences, domain.ParseCuisine) {
		fb.CuisineFeedback[c] = preferredRating
	}
	for _, v := range parseList("vibe", in.VibePreferences, domain.ParseVibe) {
		fb.VibeFeedback[v] = preferredRating
	}
	parseRatings("cuisine", in.CuisineRatings, domain.ParseCuisine, fb.CuisineFeedback)
	parseRatings("vibe", in.VibeRatings, domain.ParseVibe, fb.VibeFeedback)
	parseRatings("price range", in.PriceRatings, domain.ParsePrice, fb.PriceFeedback)
	return fb
}

// parseList keeps recognized values and logs the rest.
func parseList[T comparable](kind string, raw []string, parse func(string) (T, bool)) []T {
	var out []T
	seen := map[T]struct{}{}
	for _, s := range raw {
		v, ok := parse(s)
		if !ok {
			log.Warn().Str("kind", kind).Str("value", s).Msg("ignoring unrecognized value")
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// parseRatings folds raw keys onto enum values. Keys that differ only in case
// or spacing collide on one value; the lower rating is kept.
func parseRatings[T comparable](kind string, raw map[string]float64, parse func(string) (T, bool), dst map[T]float64) {
	seenAs := make(map[T]string, len(raw))
	for _, s := range slices.Sorted(maps.Keys(raw)) {
		rating := raw[s]
		v, ok := parse(s)
		if !ok {
			log.Warn().Str("kind", kind).Str("value", s).Msg("ignoring unrecognized value")
			continue
		}
		if prev, dup := seenAs[v]; dup {
			log.Warn().
				Str("kind", kind).
				Str("value", s).
				Str("collides_with", prev).
				Msg("duplicate rating key, keeping the lower rating")
			if rating >= dst[v] {
				continue
			}
		}
		seenAs[v] = s
		dst[v] = rating
	}
}

func parseOne[T any](kind, raw string, parse func(string) (T, bool)) (T, bool) {
	var zero T
	if strings.TrimSpace(raw) == "" {
		return zero, false
	}
	v, ok := parse(raw)
	if !ok {
		log.Warn().Str("kind", kind).Str("value", raw).Msg("ignoring unrecognized value")
	}
	return v, ok
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// parseDate accepts RFC 3339 or a plain date. ok is false for empty or
// unparseable input; the latter is logged.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	log.Warn().Str("value", raw).Msg("ignoring unparseable visit date")
	return time.Time{}, false
}
