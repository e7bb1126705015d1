package recommend

import (
	"fmt"
	"strings"

	"picky/internal/domain"
)

const (
	fallbackReason  = "Based on your dining preferences"
	nearbyKm        = 5.0
	highlyRatedFrom = 4.0
)

// Explain renders the clauses for the factors that fired, joined by "; ".
func Explain(f Factors) string {
	var clauses []string
	if len(f.MatchedCuisines) > 0 {
		clauses = append(clauses, "Matches your favorite cuisines: "+joinNames(f.MatchedCuisines))
	}
	if f.Price > 0 {
		clauses = append(clauses, fmt.Sprintf("Fits your preferred price range (%s)", f.MatchedPrice))
	}
	if len(f.MatchedVibes) > 0 {
		clauses = append(clauses, "Matches your preferred vibes: "+joinNames(f.MatchedVibes))
	}
	if f.ExternalRating != nil && *f.ExternalRating >= highlyRatedFrom {
		clauses = append(clauses, fmt.Sprintf("Highly rated on Google (%.1f/5)", *f.ExternalRating))
	}
	if f.DistanceKm != nil && *f.DistanceKm <= nearbyKm {
		clauses = append(clauses, fmt.Sprintf("Conveniently located (%.1fkm away)", *f.DistanceKm))
	}
	if f.OccasionName.OrDefault() != domain.OccasionCasualDining {
		clauses = append(clauses, fmt.Sprintf("Good for %s", f.OccasionName))
	}
	if len(clauses) == 0 {
		return fallbackReason
	}
	return strings.Join(clauses, "; ")
}

func joinNames[T ~string](xs []T) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = string(x)
	}
	return strings.Join(parts, ", ")
}
