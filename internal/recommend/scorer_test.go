package recommend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picky/internal/domain"
	"picky/internal/recommend"
)

func profileWith(prefs domain.UserPreferences) *domain.UserProfile {
	return &domain.UserProfile{UserID: "u1", Preferences: prefs}
}

func TestScorer_BaseOnly(t *testing.T) {
	s := recommend.NewScorer(recommend.DefaultWeights())
	r := domain.Restaurant{Name: "Plain", Location: domain.Location{City: "x"}}

	f := s.Factors(r, nil, domain.RecommendationContext{})
	assert.Equal(t, 0.5, f.Total())
	assert.Equal(t, "Based on your dining preferences", recommend.Explain(f))
	assert.Nil(t, f.DistanceKm)
}

func TestScorer_TermsAndCaps(t *testing.T) {
	s := recommend.NewScorer(recommend.DefaultWeights())
	prefs := domain.UserPreferences{
		FavoriteCuisines:    []domain.Cuisine{domain.CuisineItalian, domain.CuisinePizza, domain.CuisineCafe},
		PreferredPriceRange: domain.PriceModerate,
		PreferredVibes: []domain.Vibe{
			domain.VibeCozy, domain.VibeQuiet, domain.VibeRomantic, domain.VibeTrendy,
		},
	}

	tests := []struct {
		name  string
		r     domain.Restaurant
		rc    domain.RecommendationContext
		check func(t *testing.T, f recommend.Factors)
	}{
		{
			name: "cuisine capped at 0.6",
			r:    domain.Restaurant{CuisineTypes: []domain.Cuisine{domain.CuisineItalian, domain.CuisinePizza, domain.CuisineCafe}},
			check: func(t *testing.T, f recommend.Factors) {
				assert.InDelta(t, 0.6, f.Cuisine, 1e-9)
				assert.Len(t, f.MatchedCuisines, 3)
			},
		},
		{
			name: "price only on exact tier",
			r:    domain.Restaurant{PriceRange: domain.PriceModerate},
			check: func(t *testing.T, f recommend.Factors) {
				assert.Equal(t, 0.2, f.Price)
				assert.Equal(t, domain.PriceModerate, f.MatchedPrice)
			},
		},
		{
			name: "adjacent price tier scores nothing",
			r:    domain.Restaurant{PriceRange: domain.PriceExpensive},
			check: func(t *testing.T, f recommend.Factors) {
				assert.Zero(t, f.Price)
			},
		},
		{
			name: "vibes capped at 0.3",
			r: domain.Restaurant{Vibes: []domain.Vibe{
				domain.VibeCozy, domain.VibeQuiet, domain.VibeRomantic, domain.VibeTrendy,
			}},
			check: func(t *testing.T, f recommend.Factors) {
				assert.InDelta(t, 0.3, f.Vibe, 1e-9)
			},
		},
		{
			name: "external rating clamps at both ends",
			r:    domain.Restaurant{GooglePlaces: &domain.GooglePlacesData{Rating: ptr(2.0)}},
			check: func(t *testing.T, f recommend.Factors) {
				assert.Zero(t, f.Rating)
			},
		},
		{
			name: "external rating scales linearly",
			r:    domain.Restaurant{GooglePlaces: &domain.GooglePlacesData{Rating: ptr(4.0)}},
			check: func(t *testing.T, f recommend.Factors) {
				assert.InDelta(t, 0.1, f.Rating, 1e-9)
			},
		},
		{
			name: "occasion vibes",
			r:    domain.Restaurant{Vibes: []domain.Vibe{domain.VibeRomantic, domain.VibeFineDining}},
			rc:   domain.RecommendationContext{Occasion: domain.OccasionDateNight},
			check: func(t *testing.T, f recommend.Factors) {
				assert.InDelta(t, 0.2, f.Occasion, 1e-9)
			},
		},
		{
			name: "distance needs both coordinates",
			r:    domain.Restaurant{Location: geocoded(40.0, -73.0)},
			rc:   domain.RecommendationContext{Location: domain.Location{City: "New York"}, MaxDistanceKm: 10},
			check: func(t *testing.T, f recommend.Factors) {
				assert.Zero(t, f.Distance)
				assert.Nil(t, f.DistanceKm)
			},
		},
		{
			name: "distance at origin is full weight",
			r:    domain.Restaurant{Location: geocoded(40.0, -73.0)},
			rc:   domain.RecommendationContext{Location: geocoded(40.0, -73.0), MaxDistanceKm: 10},
			check: func(t *testing.T, f recommend.Factors) {
				assert.InDelta(t, 0.2, f.Distance, 1e-9)
				require.NotNil(t, f.DistanceKm)
			},
		},
		{
			name: "distance beyond max is zero",
			r:    domain.Restaurant{Location: geocoded(41.0, -73.0)},
			rc:   domain.RecommendationContext{Location: geocoded(40.0, -73.0), MaxDistanceKm: 10},
			check: func(t *testing.T, f recommend.Factors) {
				assert.Zero(t, f.Distance)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := s.Factors(tt.r, profileWith(prefs), tt.rc)
			tt.check(t, f)
			total := f.Total()
			assert.GreaterOrEqual(t, total, 0.0)
			assert.LessOrEqual(t, total, 1.0)
		})
	}
}

func TestScorer_TotalClampedToOne(t *testing.T) {
	s := recommend.NewScorer(recommend.DefaultWeights())
	prefs := domain.UserPreferences{
		FavoriteCuisines:    []domain.Cuisine{domain.CuisineItalian, domain.CuisinePizza},
		PreferredPriceRange: domain.PriceExpensive,
		PreferredVibes:      []domain.Vibe{domain.VibeRomantic, domain.VibeFineDining},
	}
	r := domain.Restaurant{
		CuisineTypes: []domain.Cuisine{domain.CuisineItalian, domain.CuisinePizza},
		PriceRange:   domain.PriceExpensive,
		Vibes:        []domain.Vibe{domain.VibeRomantic, domain.VibeFineDining},
		Location:     geocoded(40.0, -73.0),
		GooglePlaces: &domain.GooglePlacesData{Rating: ptr(5.0)},
	}
	rc := domain.RecommendationContext{Location: geocoded(40.0, -73.0), MaxDistanceKm: 5, Occasion: domain.OccasionDateNight}

	assert.Equal(t, 1.0, s.Score(r, profileWith(prefs), rc))
}

func TestScorer_Relevant(t *testing.T) {
	s := recommend.NewScorer(recommend.DefaultWeights())
	assert.False(t, s.Relevant(0.1))
	assert.True(t, s.Relevant(0.1000001))
}

func TestExplain(t *testing.T) {
	f := recommend.Factors{
		Base:            0.5,
		Cuisine:         0.3,
		MatchedCuisines: []domain.Cuisine{domain.CuisineItalian},
		Price:           0.2,
		MatchedPrice:    domain.PriceModerate,
		MatchedVibes:    []domain.Vibe{domain.VibeCozy, domain.VibeQuiet},
		Vibe:            0.2,
		ExternalRating:  ptr(4.6),
		DistanceKm:      ptr(2.345),
		OccasionName:    domain.OccasionDateNight,
	}

	assert.Equal(t,
		"Matches your favorite cuisines: Italian; "+
			"Fits your preferred price range ($$); "+
			"Matches your preferred vibes: cozy, quiet; "+
			"Highly rated on Google (4.6/5); "+
			"Conveniently located (2.3km away); "+
			"Good for date night",
		recommend.Explain(f))
}

func TestExplain_ThresholdsAreQuiet(t *testing.T) {
	f := recommend.Factors{
		Base:           0.5,
		ExternalRating: ptr(3.9),
		DistanceKm:     ptr(5.1),
		OccasionName:   domain.OccasionCasualDining,
	}
	assert.Equal(t, "Based on your dining preferences", recommend.Explain(f))
}

func TestFactorsMap(t *testing.T) {
	f := recommend.Factors{Base: 0.5, Cuisine: 0.3, Distance: 0.1}
	m := f.Map()
	assert.Equal(t, 0.5, m[domain.FactorBase])
	assert.Equal(t, 0.3, m[domain.FactorCuisine])
	assert.Equal(t, 0.1, m[domain.FactorDistance])
	assert.Len(t, m, 7)
}
