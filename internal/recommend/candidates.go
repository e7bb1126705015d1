package recommend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"picky/internal/domain"
	"picky/internal/geo"
)

// MaxSearchRadiusM is the largest radius the places provider accepts.
const MaxSearchRadiusM = 50000

// Aggregator collects candidates from the visit log and the places oracle.
// Either source failing degrades to an empty list for that source.
type Aggregator struct {
	repo   domain.RestaurantRepository
	places domain.PlacesClient // nil disables oracle search
	sem    *semaphore.Weighted
}

// NewAggregator bounds concurrent oracle searches at concurrency (min 1).
func NewAggregator(repo domain.RestaurantRepository, places domain.PlacesClient, concurrency int) *Aggregator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Aggregator{repo: repo, places: places, sem: semaphore.NewWeighted(int64(concurrency))}
}

// Candidates gathers, deduplicates and filters candidates for rc.
func (a *Aggregator) Candidates(ctx context.Context, rc domain.RecommendationContext) []domain.Restaurant {
	local, remote := a.Gather(ctx, rc)
	return FilterCandidates(append(local, remote...), rc)
}

// Gather fetches the visit log and, when rc has coordinates, oracle results,
// concurrently.
func (a *Aggregator) Gather(ctx context.Context, rc domain.RecommendationContext) (local, remote []domain.Restaurant) {
	var g errgroup.Group
	g.Go(func() error {
		rs, err := a.repo.GetAll(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("repository fetch failed, continuing without local restaurants")
			return nil
		}
		local = rs
		return nil
	})
	if lat, lon, ok := rc.Location.Coords(); ok && a.places != nil {
		g.Go(func() error {
			remote = a.searchOracle(ctx, rc, lat, lon)
			return nil
		})
	}
	_ = g.Wait()
	return local, remote
}

func (a *Aggregator) searchOracle(ctx context.Context, rc domain.RecommendationContext, lat, lon float64) []domain.Restaurant {
	queries := []string{"restaurant"}
	if len(rc.CuisinePreferences) > 0 {
		queries = queries[:0]
		for _, c := range rc.CuisinePreferences {
			queries = append(queries, fmt.Sprintf("%s restaurant", c))
		}
	}
	radius := SearchRadiusM(rc.MaxDistanceKm)

	results := make([][]domain.Place, len(queries))
	var g errgroup.Group
	for i, q := range queries {
		if err := a.sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer a.sem.Release(1)
			places, err := a.places.Search(ctx, q, lat, lon, radius)
			if err != nil {
				log.Warn().Err(err).Str("query", q).Msg("places search failed")
				return nil
			}
			results[i] = places
			return nil
		})
	}
	_ = g.Wait()

	var out []domain.Restaurant
	for _, batch := range results {
		for _, p := range batch {
			out = append(out, p.ToRestaurant(rc.Location.City))
		}
	}
	return out
}

// SearchRadiusM converts a distance limit to a provider radius in meters.
func SearchRadiusM(maxDistanceKm float64) int {
	m := int(maxDistanceKm * 1000)
	if m <= 0 || m > MaxSearchRadiusM {
		return MaxSearchRadiusM
	}
	return m
}

// Dedup keeps the first record per DedupKey, so earlier sources win.
func Dedup(rs []domain.Restaurant) []domain.Restaurant {
	seen := make(map[string]struct{}, len(rs))
	out := make([]domain.Restaurant, 0, len(rs))
	for _, r := range rs {
		k := r.DedupKey()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// FilterCandidates deduplicates rs and applies the context's hard filters.
// Wishlist items skip the preference filters when rc includes the wishlist.
func FilterCandidates(rs []domain.Restaurant, rc domain.RecommendationContext) []domain.Restaurant {
	var out []domain.Restaurant
	for _, r := range Dedup(rs) {
		if rc.ExcludeVisited && r.Rated() {
			continue
		}
		if rc.IncludeWishlist && r.IsWishlist {
			out = append(out, r)
			continue
		}
		if passesFilters(r, rc) {
			out = append(out, r)
		}
	}
	return out
}

func passesFilters(r domain.Restaurant, rc domain.RecommendationContext) bool {
	if len(rc.CuisinePreferences) > 0 && !anyCuisine(r, rc.CuisinePreferences) {
		return false
	}
	if rc.PricePreference.Known() && r.PriceRange.Known() && r.PriceRange != rc.PricePreference {
		return false
	}
	if len(rc.VibePreferences) > 0 && !anyVibe(r, rc.VibePreferences) {
		return false
	}
	if d, ok := geo.Distance(rc.Location, r.Location); ok && rc.MaxDistanceKm > 0 && d > rc.MaxDistanceKm {
		return false
	}
	return true
}

func anyCuisine(r domain.Restaurant, cs []domain.Cuisine) bool {
	for _, c := range cs {
		if r.HasCuisine(c) {
			return true
		}
	}
	return false
}

func anyVibe(r domain.Restaurant, vs []domain.Vibe) bool {
	for _, v := range vs {
		if r.HasVibe(v) {
			return true
		}
	}
	return false
}
