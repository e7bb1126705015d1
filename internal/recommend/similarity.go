package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"picky/internal/domain"
)

const (
	similarCuisineWeight = 0.4
	similarPriceWeight   = 0.3
	similarVibeWeight    = 0.3

	// MinSimilarity is the inclusive floor for find-similar results.
	MinSimilarity     = 0.3
	DefaultSimilarMax = 5

	similarityEpsilon = 1e-9
)

// Similarity is symmetric and lies in [0, 1].
func Similarity(a, b domain.Restaurant) float64 {
	var s float64
	if anyCuisine(b, a.CuisineTypes) {
		s += similarCuisineWeight
	}
	if a.PriceRange.Known() && a.PriceRange == b.PriceRange {
		s += similarPriceWeight
	}
	if anyVibe(b, a.Vibes) {
		s += similarVibeWeight
	}
	return s
}

// FindSimilar ranks pool by similarity to ref, skipping ref itself (same name,
// case-insensitive) and anything under MinSimilarity.
func FindSimilar(ref domain.Restaurant, pool []domain.Restaurant, rc domain.RecommendationContext, limit int, now time.Time) []domain.Recommendation {
	if limit <= 0 {
		limit = DefaultSimilarMax
	}
	var out []domain.Recommendation
	for _, r := range pool {
		if strings.EqualFold(strings.TrimSpace(r.Name), strings.TrimSpace(ref.Name)) {
			continue
		}
		score := Similarity(ref, r)
		if score+similarityEpsilon < MinSimilarity {
			continue
		}
		out = append(out, domain.Recommendation{
			Restaurant:   r,
			Score:        score,
			Reasoning:    similarityReason(ref, r),
			MatchFactors: map[string]float64{"similarity": score},
			Context:      rc,
			GeneratedAt:  now,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func similarityReason(ref, r domain.Restaurant) string {
	var shared []string
	var cuisines []domain.Cuisine
	for _, c := range r.CuisineTypes {
		if ref.HasCuisine(c) {
			cuisines = append(cuisines, c)
		}
	}
	if len(cuisines) > 0 {
		shared = append(shared, "cuisine: "+joinNames(cuisines))
	}
	if ref.PriceRange.Known() && ref.PriceRange == r.PriceRange {
		shared = append(shared, fmt.Sprintf("price range: %s", r.PriceRange))
	}
	var vibes []domain.Vibe
	for _, v := range r.Vibes {
		if ref.HasVibe(v) {
			vibes = append(vibes, v)
		}
	}
	if len(vibes) > 0 {
		shared = append(shared, "vibes: "+joinNames(vibes))
	}
	return fmt.Sprintf("Similar to %s - shared %s", ref.Name, strings.Join(shared, "; "))
}
