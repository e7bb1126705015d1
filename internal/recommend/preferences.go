// Package recommend is the scoring and preference-learning core: it derives a
// user profile from the visit log, narrows and scores candidates against a
// request context, and runs interactive feedback sessions.
package recommend

import (
	"sort"

	"picky/internal/domain"
)

const (
	favoriteMinAvg   = 4.0
	favoriteMinCount = 2
)

// tally accumulates ratings per key while remembering first-seen order.
type tally[K comparable] struct {
	order []K
	sum   map[K]float64
	count map[K]int
}

func newTally[K comparable]() *tally[K] {
	return &tally[K]{sum: map[K]float64{}, count: map[K]int{}}
}

func (t *tally[K]) add(k K, rating float64) {
	if _, seen := t.count[k]; !seen {
		t.order = append(t.order, k)
	}
	t.sum[k] += rating
	t.count[k]++
}

func (t *tally[K]) avg(k K) float64 {
	if t.count[k] == 0 {
		return 0
	}
	return t.sum[k] / float64(t.count[k])
}

// qualifying returns keys with avg >= favoriteMinAvg over at least favoriteMinCount ratings.
func (t *tally[K]) qualifying() []K {
	var out []K
	for _, k := range t.order {
		if t.count[k] >= favoriteMinCount && t.avg(k) >= favoriteMinAvg {
			out = append(out, k)
		}
	}
	return out
}

// AnalyzePreferences derives taste from rated restaurants. Unrated entries are
// ignored; an empty input gives default preferences.
func AnalyzePreferences(rated []domain.Restaurant) domain.UserPreferences {
	prefs := domain.NewUserPreferences()

	cuisines := newTally[domain.Cuisine]()
	vibes := newTally[domain.Vibe]()
	prices := newTally[domain.PriceRange]()
	for _, r := range rated {
		if r.Rating == nil {
			continue
		}
		rating := *r.Rating
		for _, c := range r.CuisineTypes {
			cuisines.add(c, rating)
		}
		for _, v := range r.Vibes {
			vibes.add(v, rating)
		}
		if r.PriceRange.Known() {
			prices.add(r.PriceRange, rating)
		}
	}

	prefs.FavoriteCuisines = cuisines.qualifying()
	prefs.PreferredVibes = vibes.qualifying()

	// avg x count is the rating sum; first-seen tier wins ties.
	best := 0.0
	for _, p := range prices.order {
		if score := prices.avg(p) * float64(prices.count[p]); score > best {
			best = score
			prefs.PreferredPriceRange = p
		}
	}
	return prefs
}

// ranked returns keys by descending count; ties keep first-seen order.
func (t *tally[K]) ranked() []K {
	out := append([]K(nil), t.order...)
	sort.SliceStable(out, func(i, j int) bool { return t.count[out[i]] > t.count[out[j]] })
	return out
}

// mode returns the most frequent key, or ok=false when nothing was counted.
func (t *tally[K]) mode() (K, bool) {
	r := t.ranked()
	if len(r) == 0 {
		var zero K
		return zero, false
	}
	return r[0], true
}
