package domain

import "time"

const DefaultMaxTravelKm = 25.0

type UserPreferences struct {
	FavoriteCuisines    []Cuisine  `json:"favorite_cuisines"`
	PreferredPriceRange PriceRange `json:"preferred_price_range,omitempty"`
	PreferredVibes      []Vibe     `json:"preferred_ambiance"`
	DietaryRestrictions []string   `json:"dietary_restrictions"`
	MaxTravelDistanceKm float64    `json:"max_travel_distance"`
	PreferredOccasions  []Occasion `json:"preferred_occasions"`
	PreferredLocations  []string   `json:"preferred_locations"`
}

func NewUserPreferences() UserPreferences {
	return UserPreferences{MaxTravelDistanceKm: DefaultMaxTravelKm}
}

func (p UserPreferences) Clone() UserPreferences {
	out := p
	out.FavoriteCuisines = append([]Cuisine(nil), p.FavoriteCuisines...)
	out.PreferredVibes = append([]Vibe(nil), p.PreferredVibes...)
	out.DietaryRestrictions = append([]string(nil), p.DietaryRestrictions...)
	out.PreferredOccasions = append([]Occasion(nil), p.PreferredOccasions...)
	out.PreferredLocations = append([]string(nil), p.PreferredLocations...)
	return out
}

const PersonalityUnknown = "Unknown"

// UserProfile is derived from the visit log and rebuilt wholesale on refresh.
type UserProfile struct {
	UserID               string          `json:"user_id"`
	Preferences          UserPreferences `json:"preferences"`
	TotalRestaurants     int             `json:"total_restaurants"`
	AverageRating        *float64        `json:"average_rating,omitempty"`
	MostCommonCuisine    Cuisine         `json:"most_common_cuisine,omitempty"`
	MostCommonPriceRange PriceRange      `json:"most_common_price_range,omitempty"`
	FrequentLocations    []Location      `json:"frequent_locations"`
	RecentVisits         []string        `json:"recent_visits"`
	DiningPersonality    string          `json:"dining_personality"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
