package domain

import "time"

const (
	DefaultMaxDistanceKm = 25.0
	DefaultMaxResults    = 10
)

// RecommendationContext is a per-request value. Refinement derives a new one
// through Clone rather than editing a stored context.
type RecommendationContext struct {
	UserID             string     `json:"user_id"`
	Location           Location   `json:"location"`
	Occasion           Occasion   `json:"occasion"`
	MaxDistanceKm      float64    `json:"max_distance_km"`
	MaxResults         int        `json:"max_results"`
	CuisinePreferences []Cuisine  `json:"cuisine_preferences"`
	PricePreference    PriceRange `json:"price_preference,omitempty"`
	VibePreferences    []Vibe     `json:"ambiance_preferences"`
	ExcludeVisited     bool       `json:"exclude_visited"`
	IncludeWishlist    bool       `json:"include_wishlist"`
}

// NewRecommendationContext returns a context carrying every default.
func NewRecommendationContext(userID string, loc Location) RecommendationContext {
	return RecommendationContext{
		UserID:          userID,
		Location:        loc,
		Occasion:        OccasionCasualDining,
		MaxDistanceKm:   DefaultMaxDistanceKm,
		MaxResults:      DefaultMaxResults,
		IncludeWishlist: true,
	}
}

// Normalize fills zero occasion, distance and result count with defaults.
func (c RecommendationContext) Normalize() RecommendationContext {
	c.Occasion = c.Occasion.OrDefault()
	if c.MaxDistanceKm <= 0 {
		c.MaxDistanceKm = DefaultMaxDistanceKm
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	return c
}

func (c RecommendationContext) Clone() RecommendationContext {
	out := c
	out.CuisinePreferences = append([]Cuisine(nil), c.CuisinePreferences...)
	out.VibePreferences = append([]Vibe(nil), c.VibePreferences...)
	out.Location.Latitude = clonePtr(c.Location.Latitude)
	out.Location.Longitude = clonePtr(c.Location.Longitude)
	return out
}

// Match factor names used in Recommendation.MatchFactors.
const (
	FactorBase     = "base"
	FactorCuisine  = "cuisine"
	FactorPrice    = "price"
	FactorVibe     = "ambiance"
	FactorDistance = "distance"
	FactorRating   = "external_rating"
	FactorOccasion = "occasion"
)

type Recommendation struct {
	Restaurant   Restaurant            `json:"restaurant"`
	Score        float64               `json:"score"`
	Reasoning    string                `json:"reasoning"`
	DistanceKm   *float64              `json:"distance_km,omitempty"`
	MatchFactors map[string]float64    `json:"match_factors"`
	Context      RecommendationContext `json:"context"`
	GeneratedAt  time.Time             `json:"generated_at"`
}

// Factor reads a named contribution; absent factors read as 0.
func (r Recommendation) Factor(name string) float64 { return r.MatchFactors[name] }

type SessionFeedback struct {
	SessionID           string                 `json:"session_id"`
	LikedRestaurants    []string               `json:"liked_restaurants"`
	DislikedRestaurants []string               `json:"disliked_restaurants"`
	CuisineFeedback     map[Cuisine]float64    `json:"cuisine_feedback"`
	VibeFeedback        map[Vibe]float64       `json:"ambiance_feedback"`
	PriceFeedback       map[PriceRange]float64 `json:"price_feedback"`
	AdditionalNotes     string                 `json:"additional_notes,omitempty"`
	Timestamp           time.Time              `json:"timestamp"`
}

// RecommendationSession lives only in process memory.
type RecommendationSession struct {
	SessionID              string                `json:"session_id"`
	UserID                 string                `json:"user_id"`
	OriginalContext        RecommendationContext `json:"original_context"`
	CurrentRecommendations []Recommendation      `json:"current_recommendations"`
	Feedback               []SessionFeedback     `json:"feedback_history"`
	LearnedPreferences     UserPreferences       `json:"learned_preferences"`
	CreatedAt              time.Time             `json:"created_at"`
	UpdatedAt              time.Time             `json:"updated_at"`
}
