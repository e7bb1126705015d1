package recommend

import (
	"math"

	"picky/internal/domain"
	"picky/internal/geo"
)

// Weights are the additive scoring terms. Each capped term is clamped before
// the terms are summed; the sum is clamped to 1.
type Weights struct {
	Base         float64
	CuisineEach  float64
	CuisineCap   float64
	Price        float64
	VibeEach     float64
	VibeCap      float64
	DistanceMax  float64
	RatingMax    float64
	OccasionEach float64
	OccasionCap  float64
	MinScore     float64 // scores at or below are discarded
}

func DefaultWeights() Weights {
	return Weights{
		Base:         0.5,
		CuisineEach:  0.3,
		CuisineCap:   0.6,
		Price:        0.2,
		VibeEach:     0.1,
		VibeCap:      0.3,
		DistanceMax:  0.2,
		RatingMax:    0.2,
		OccasionEach: 0.1,
		OccasionCap:  0.2,
		MinScore:     0.1,
	}
}

// Factors is the per-candidate breakdown shared by scoring and reasoning.
type Factors struct {
	Base float64

	Cuisine         float64
	MatchedCuisines []domain.Cuisine

	Price        float64
	MatchedPrice domain.PriceRange

	Vibe         float64
	MatchedVibes []domain.Vibe

	Distance   float64
	DistanceKm *float64

	Rating         float64
	ExternalRating *float64

	Occasion     float64
	OccasionName domain.Occasion
}

func (f Factors) Total() float64 {
	sum := f.Base + f.Cuisine + f.Price + f.Vibe + f.Distance + f.Rating + f.Occasion
	return clamp(sum, 0, 1)
}

// Map exposes the contributions under the domain.Factor* names.
func (f Factors) Map() map[string]float64 {
	return map[string]float64{
		domain.FactorBase:     f.Base,
		domain.FactorCuisine:  f.Cuisine,
		domain.FactorPrice:    f.Price,
		domain.FactorVibe:     f.Vibe,
		domain.FactorDistance: f.Distance,
		domain.FactorRating:   f.Rating,
		domain.FactorOccasion: f.Occasion,
	}
}

type Scorer struct{ w Weights }

func NewScorer(w Weights) Scorer { return Scorer{w: w} }

func (s Scorer) Weights() Weights { return s.w }

// Factors computes the breakdown of r against the profile's learned taste and
// the request context.
func (s Scorer) Factors(r domain.Restaurant, p *domain.UserProfile, rc domain.RecommendationContext) Factors {
	f := Factors{Base: s.w.Base, OccasionName: rc.Occasion.OrDefault()}

	var prefs domain.UserPreferences
	if p != nil {
		prefs = p.Preferences
	}

	for _, c := range r.CuisineTypes {
		if containsCuisine(prefs.FavoriteCuisines, c) {
			f.MatchedCuisines = append(f.MatchedCuisines, c)
		}
	}
	f.Cuisine = math.Min(float64(len(f.MatchedCuisines))*s.w.CuisineEach, s.w.CuisineCap)

	if r.PriceRange.Known() && r.PriceRange == prefs.PreferredPriceRange {
		f.Price = s.w.Price
		f.MatchedPrice = r.PriceRange
	}

	for _, v := range r.Vibes {
		if containsVibe(prefs.PreferredVibes, v) {
			f.MatchedVibes = append(f.MatchedVibes, v)
		}
	}
	f.Vibe = math.Min(float64(len(f.MatchedVibes))*s.w.VibeEach, s.w.VibeCap)

	if d, ok := geo.Distance(rc.Location, r.Location); ok {
		f.DistanceKm = &d
		if rc.MaxDistanceKm > 0 {
			f.Distance = math.Max(0, s.w.DistanceMax-(d/rc.MaxDistanceKm)*s.w.DistanceMax)
		}
	}

	if rating, ok := r.ExternalRating(); ok {
		f.ExternalRating = &rating
		f.Rating = clamp((rating-3.0)/2.0*s.w.RatingMax, 0, s.w.RatingMax)
	}

	var occ int
	for _, v := range r.Vibes {
		if containsVibe(f.OccasionName.Vibes(), v) {
			occ++
		}
	}
	f.Occasion = math.Min(float64(occ)*s.w.OccasionEach, s.w.OccasionCap)
	return f
}

func (s Scorer) Score(r domain.Restaurant, p *domain.UserProfile, rc domain.RecommendationContext) float64 {
	return s.Factors(r, p, rc).Total()
}

// Relevant reports whether a total clears the minimum relevance threshold.
func (s Scorer) Relevant(score float64) bool { return score > s.w.MinScore }

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func containsCuisine(xs []domain.Cuisine, c domain.Cuisine) bool {
	for _, x := range xs {
		if x == c {
			return true
		}
	}
	return false
}

func containsVibe(xs []domain.Vibe, v domain.Vibe) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
