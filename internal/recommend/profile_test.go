package recommend_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picky/internal/domain"
	"picky/internal/recommend"
)

func TestProfileBuilder_GetOrCreateIsCached(t *testing.T) {
	repo := &fakeRepo{all: []domain.Restaurant{
		rated("a", 4.5, domain.CuisineItalian),
		rated("b", 4.0, domain.CuisineItalian),
	}}
	b := recommend.NewProfileBuilder(repo)
	ctx := context.Background()

	first := b.GetOrCreate(ctx, "u1")
	second := b.GetOrCreate(ctx, "u1")

	assert.Same(t, first, second)
	assert.Equal(t, *first, *second)
	assert.EqualValues(t, 1, repo.getAlls.Load())
}

func TestProfileBuilder_RefreshReplacesEntry(t *testing.T) {
	repo := &fakeRepo{all: []domain.Restaurant{rated("a", 3.0)}}
	b := recommend.NewProfileBuilder(repo)
	ctx := context.Background()

	before := b.GetOrCreate(ctx, "u1")
	assert.Equal(t, 1, before.TotalRestaurants)

	repo.mu.Lock()
	repo.all = append(repo.all, rated("b", 5.0))
	repo.mu.Unlock()

	after, err := b.Refresh(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, after.TotalRestaurants)
	assert.NotSame(t, before, after)
	assert.Equal(t, 1, before.TotalRestaurants, "old value must not be mutated")

	cached, ok := b.Cached("u1")
	require.True(t, ok)
	assert.Same(t, after, cached)
}

func TestProfileBuilder_RepositoryFailure(t *testing.T) {
	repo := &fakeRepo{err: errors.New("store down")}
	b := recommend.NewProfileBuilder(repo)

	p := b.GetOrCreate(context.Background(), "u1")
	require.NotNil(t, p)
	assert.Equal(t, 0, p.TotalRestaurants)
	assert.Equal(t, domain.PersonalityUnknown, p.DiningPersonality)

	_, cached := b.Cached("u1")
	assert.False(t, cached, "a degraded profile is never cached")
}

func TestProfileBuilder_RefreshKeepsOldOnError(t *testing.T) {
	repo := &fakeRepo{all: []domain.Restaurant{rated("a", 4.0)}}
	b := recommend.NewProfileBuilder(repo)
	ctx := context.Background()
	old := b.GetOrCreate(ctx, "u1")

	repo.mu.Lock()
	repo.err = errors.New("boom")
	repo.mu.Unlock()

	_, err := b.Refresh(ctx, "u1")
	require.Error(t, err)
	cached, _ := b.Cached("u1")
	assert.Same(t, old, cached)
}

func TestProfileBuilder_ConcurrentRefresh(t *testing.T) {
	repo := &fakeRepo{all: []domain.Restaurant{rated("a", 4.0)}}
	b := recommend.NewProfileBuilder(repo)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = b.Refresh(context.Background(), "u1")
		}()
	}
	wg.Wait()

	p, ok := b.Cached("u1")
	require.True(t, ok)
	assert.Equal(t, 1, p.TotalRestaurants)
}

func TestBuildProfile_Aggregates(t *testing.T) {
	var all []domain.Restaurant
	for i := 0; i < 12; i++ {
		r := rated(fmt.Sprintf("r%02d", i), 4.0, domain.CuisineItalian)
		r.Location = domain.Location{City: fmt.Sprintf("City%d", i%4), State: "NY"}
		all = append(all, r)
	}
	all[0].CuisineTypes = []domain.Cuisine{domain.CuisineThai}
	all[1].PriceRange = domain.PriceModerate
	wish := domain.Restaurant{Name: "Wish", IsWishlist: true, Location: domain.Location{City: "Elsewhere"}}
	all = append(all, wish)

	p := recommend.BuildProfile("u1", all, time.Unix(0, 0))

	assert.Equal(t, 13, p.TotalRestaurants)
	require.NotNil(t, p.AverageRating)
	assert.InDelta(t, 4.0, *p.AverageRating, 1e-9)
	assert.Equal(t, domain.CuisineItalian, p.MostCommonCuisine)
	assert.Equal(t, domain.PriceModerate, p.MostCommonPriceRange)

	require.Len(t, p.FrequentLocations, 3)
	assert.Equal(t, "City0", p.FrequentLocations[0].City)
	assert.Equal(t, "City1", p.FrequentLocations[1].City)

	require.Len(t, p.RecentVisits, 10)
	assert.Equal(t, "id-r02", p.RecentVisits[0])
	assert.Equal(t, "id-r11", p.RecentVisits[9])
}

func TestProfileBuilder_RefreshAll(t *testing.T) {
	repo := &fakeRepo{all: []domain.Restaurant{rated("a", 4.0)}}
	b := recommend.NewProfileBuilder(repo)
	ctx := context.Background()
	b.GetOrCreate(ctx, "u1")
	b.GetOrCreate(ctx, "u2")

	require.NoError(t, b.RefreshAll(ctx))
	assert.EqualValues(t, 4, repo.getAlls.Load())

	b.Invalidate("u1")
	assert.ElementsMatch(t, []string{"u2"}, b.Users())
}

// gatedRepo blocks GetAll until released and fails if its context was cancelled.
type gatedRepo struct {
	fakeRepo
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedRepo) GetAll(ctx context.Context) ([]domain.Restaurant, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.fakeRepo.GetAll(ctx)
}

func TestProfileBuilder_SharedLoadOutlivesCancelledCaller(t *testing.T) {
	repo := &gatedRepo{
		fakeRepo: fakeRepo{all: []domain.Restaurant{rated("a", 4.5, domain.CuisineItalian)}},
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	b := recommend.NewProfileBuilder(repo)

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		p   *domain.UserProfile
		err error
	}
	first := make(chan result, 1)
	go func() {
		p, err := b.Refresh(ctx, "u1")
		first <- result{p, err}
	}()
	<-repo.entered

	second := make(chan result, 1)
	go func() {
		p, err := b.Refresh(context.Background(), "u1")
		second <- result{p, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	close(repo.release)

	for _, ch := range []chan result{first, second} {
		r := <-ch
		require.NoError(t, r.err)
		assert.Equal(t, 1, r.p.TotalRestaurants)
	}
	_, cached := b.Cached("u1")
	assert.True(t, cached)
}
