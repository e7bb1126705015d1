package placesync

import (
	"context"
	"time"

	"picky/internal/domain"
)

// Job is one scheduled enrichment sweep.
type Job struct {
	Name     string
	Interval time.Duration
	Delay    time.Duration // pause between provider calls
	pick     func(ctx context.Context, repo domain.RestaurantRepository, now time.Time) ([]domain.Restaurant, error)
}

const (
	recentLimit     = 50
	recentFreshness = 24 * time.Hour
	missingBatch    = 20
	staleAfter      = 7 * 24 * time.Hour
	manualSyncDelay = 100 * time.Millisecond
	manualSyncJob   = "manual"
)

// RecentChanges re-enriches the latest visits unless they were enriched within
// the last day.
func RecentChanges() Job {
	return Job{
		Name:     "recent_changes",
		Interval: time.Hour,
		Delay:    200 * time.Millisecond,
		pick: func(ctx context.Context, repo domain.RestaurantRepository, now time.Time) ([]domain.Restaurant, error) {
			rs, err := repo.GetRecent(ctx, recentLimit)
			if err != nil {
				return nil, err
			}
			out := rs[:0]
			for _, r := range rs {
				if r.PlaceID() != "" && r.UpdatedAt.After(now.Add(-recentFreshness)) {
					continue
				}
				out = append(out, r)
			}
			return out, nil
		},
	}
}

// MissingData enriches up to a batch of records that have no place id.
func MissingData() Job {
	return Job{
		Name:     "missing_data",
		Interval: 6 * time.Hour,
		Delay:    500 * time.Millisecond,
		pick: func(ctx context.Context, repo domain.RestaurantRepository, _ time.Time) ([]domain.Restaurant, error) {
			rs, err := repo.GetAll(ctx)
			if err != nil {
				return nil, err
			}
			var out []domain.Restaurant
			for _, r := range rs {
				if r.PlaceID() == "" {
					out = append(out, r)
				}
				if len(out) == missingBatch {
					break
				}
			}
			return out, nil
		},
	}
}

// FullResync refreshes every record not updated for a week.
func FullResync() Job {
	return Job{
		Name:     "full_resync",
		Interval: 24 * time.Hour,
		Delay:    time.Second,
		pick: func(ctx context.Context, repo domain.RestaurantRepository, now time.Time) ([]domain.Restaurant, error) {
			rs, err := repo.GetAll(ctx)
			if err != nil {
				return nil, err
			}
			out := rs[:0]
			for _, r := range rs {
				if !r.UpdatedAt.IsZero() && r.UpdatedAt.After(now.Add(-staleAfter)) {
					continue
				}
				out = append(out, r)
			}
			return out, nil
		},
	}
}

func DefaultJobs() []Job { return []Job{RecentChanges(), MissingData(), FullResync()} }

// JobByName finds a default job by name.
func JobByName(name string) (Job, bool) {
	for _, j := range DefaultJobs() {
		if j.Name == name {
			return j, true
		}
	}
	return Job{}, false
}
