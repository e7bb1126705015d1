package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"picky/internal/domain"
)

const (
	maxFrequentLocations = 3
	maxRecentVisits      = 10
)

// ProfileBuilder owns the per-user profile cache. Cached profiles are shared
// and must be treated as read-only; a refresh swaps in a new value.
type ProfileBuilder struct {
	repo domain.RestaurantRepository

	mu    sync.RWMutex
	cache map[string]*domain.UserProfile
	group singleflight.Group

	now func() time.Time
}

func NewProfileBuilder(repo domain.RestaurantRepository) *ProfileBuilder {
	return &ProfileBuilder{
		repo:  repo,
		cache: make(map[string]*domain.UserProfile),
		now:   time.Now,
	}
}

// Refresh rebuilds the user's profile from the full visit log and replaces the
// cached entry. Concurrent refreshes for one user share a single load, which
// is detached from the first caller's cancellation so one caller going away
// does not fail the others. On a repository error the previous entry, if any,
// stays cached.
func (b *ProfileBuilder) Refresh(ctx context.Context, userID string) (*domain.UserProfile, error) {
	shared := context.WithoutCancel(ctx)
	v, err, _ := b.group.Do(userID, func() (any, error) {
		all, err := b.repo.GetAll(shared)
		if err != nil {
			return nil, fmt.Errorf("load restaurants: %w", err)
		}
		p := BuildProfile(userID, all, b.now())

		b.mu.Lock()
		if prev, ok := b.cache[userID]; ok {
			p.CreatedAt = prev.CreatedAt
		}
		b.cache[userID] = p
		b.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.UserProfile), nil
}

// GetOrCreate returns the cached profile, building it only when absent. If the
// build fails an empty, uncached profile is returned so callers can proceed.
func (b *ProfileBuilder) GetOrCreate(ctx context.Context, userID string) *domain.UserProfile {
	if p, ok := b.Cached(userID); ok {
		return p
	}
	p, err := b.Refresh(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("profile build failed, using empty profile")
		return BuildProfile(userID, nil, b.now())
	}
	return p
}

func (b *ProfileBuilder) Cached(userID string) (*domain.UserProfile, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.cache[userID]
	return p, ok
}

func (b *ProfileBuilder) Invalidate(userID string) {
	b.mu.Lock()
	delete(b.cache, userID)
	b.mu.Unlock()
}

// Users lists user ids with a cached profile.
func (b *ProfileBuilder) Users() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.cache))
	for id := range b.cache {
		out = append(out, id)
	}
	return out
}

// RefreshAll rebuilds every cached profile, returning the joined errors.
func (b *ProfileBuilder) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, id := range b.Users() {
		if _, err := b.Refresh(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("refresh %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// BuildProfile derives a profile from the whole visit log. Taste signals come
// from rated records only; the total counts everything, wishlist included.
func BuildProfile(userID string, all []domain.Restaurant, now time.Time) *domain.UserProfile {
	rated := make([]domain.Restaurant, 0, len(all))
	for _, r := range all {
		if r.Rated() {
			rated = append(rated, r)
		}
	}

	p := &domain.UserProfile{
		UserID:            userID,
		Preferences:       AnalyzePreferences(rated),
		TotalRestaurants:  len(all),
		DiningPersonality: ClassifyPersonality(rated),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if avg, n := averageRating(rated); n > 0 {
		p.AverageRating = &avg
	}

	cuisines := newTally[domain.Cuisine]()
	prices := newTally[domain.PriceRange]()
	places := newTally[string]()
	placeLoc := map[string]domain.Location{}
	for _, r := range rated {
		for _, c := range r.CuisineTypes {
			cuisines.add(c, 0)
		}
		if r.PriceRange.Known() {
			prices.add(r.PriceRange, 0)
		}
		key := r.Location.City + "|" + r.Location.State
		places.add(key, 0)
		placeLoc[key] = r.Location
	}
	if c, ok := cuisines.mode(); ok {
		p.MostCommonCuisine = c
	}
	if pr, ok := prices.mode(); ok {
		p.MostCommonPriceRange = pr
	}
	for _, key := range places.ranked() {
		if len(p.FrequentLocations) == maxFrequentLocations {
			break
		}
		p.FrequentLocations = append(p.FrequentLocations, placeLoc[key])
	}

	start := len(rated) - maxRecentVisits
	if start < 0 {
		start = 0
	}
	for _, r := range rated[start:] {
		if r.ID != "" {
			p.RecentVisits = append(p.RecentVisits, r.ID)
		}
	}
	return p
}
