// Package placesync keeps the visit log enriched with places data on a
// schedule and rebuilds cached profiles afterwards.
package placesync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"picky/internal/adapters/observability"
	"picky/internal/domain"
)

type ProfileRefresher interface {
	RefreshAll(ctx context.Context) error
}

// Report summarizes one sweep. Enriched counts records that gained places
// data; Updated counts records whose existing data was refreshed.
type Report struct {
	Job        string    `json:"job"`
	Candidates int       `json:"candidates"`
	Enriched   int       `json:"enriched"`
	Updated    int       `json:"updated"`
	Unchanged  int       `json:"unchanged"`
	Failed     int       `json:"failed"`
	Errors     []string  `json:"errors,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

type JobStatus struct {
	Name     string     `json:"name"`
	Interval string     `json:"interval"`
	LastRun  *time.Time `json:"last_run,omitempty"`
	NextRun  *time.Time `json:"next_run,omitempty"`
}

type Status struct {
	Running  bool        `json:"is_running"`
	LastSync *time.Time  `json:"last_sync,omitempty"`
	Jobs     []JobStatus `json:"jobs"`
}

// Syncer runs enrichment sweeps one at a time.
type Syncer struct {
	repo     domain.RestaurantRepository
	places   domain.PlacesClient
	profiles ProfileRefresher
	jobs     []Job

	run sync.Mutex // serializes sweeps

	mu       sync.Mutex
	running  int
	lastSync time.Time
	lastRun  map[string]time.Time
	nextRun  map[string]time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool
}

func New(repo domain.RestaurantRepository, places domain.PlacesClient, profiles ProfileRefresher, jobs ...Job) *Syncer {
	if len(jobs) == 0 {
		jobs = DefaultJobs()
	}
	return &Syncer{
		repo:     repo,
		places:   places,
		profiles: profiles,
		jobs:     jobs,
		lastRun:  map[string]time.Time{},
		nextRun:  map[string]time.Time{},
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

func (s *Syncer) Jobs() []Job { return append([]Job(nil), s.jobs...) }

// RunJob executes one sweep of job and refreshes cached profiles when anything
// changed.
func (s *Syncer) RunJob(ctx context.Context, job Job) (Report, error) {
	s.run.Lock()
	defer s.run.Unlock()

	now := s.now()
	rep := Report{Job: job.Name, StartedAt: now}
	candidates, err := job.pick(ctx, s.repo, now)
	if err != nil {
		return rep, fmt.Errorf("%s: select records: %w", job.Name, err)
	}
	rep.Candidates = len(candidates)
	log.Info().Str("job", job.Name).Int("candidates", len(candidates)).Msg("sync job starting")

	err = s.sweep(ctx, job.Name, job.Delay, candidates, &rep)
	s.finish(ctx, &rep)
	return rep, err
}

// ManualSync re-enriches every record in the log.
func (s *Syncer) ManualSync(ctx context.Context) (Report, error) {
	s.run.Lock()
	defer s.run.Unlock()

	rep := Report{Job: manualSyncJob, StartedAt: s.now()}
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return rep, fmt.Errorf("manual sync: load restaurants: %w", err)
	}
	rep.Candidates = len(all)

	err = s.sweep(ctx, manualSyncJob, manualSyncDelay, all, &rep)
	s.finish(ctx, &rep)
	return rep, err
}

func (s *Syncer) sweep(ctx context.Context, job string, delay time.Duration, rs []domain.Restaurant, rep *Report) error {
	s.setRunning(1)
	defer s.setRunning(-1)

	for i, r := range rs {
		if i > 0 && !s.sleep(ctx, delay) {
			return ctx.Err()
		}
		after := s.places.Enrich(ctx, r)
		if !domain.WasEnriched(r, after) {
			rep.Unchanged++
			observability.ObserveEnrich(job, "unchanged")
			continue
		}
		if err := s.repo.Update(ctx, r.ID, after); err != nil {
			rep.Failed++
			rep.Errors = append(rep.Errors, fmt.Sprintf("update %s: %v", r.Name, err))
			observability.ObserveEnrich(job, "error")
			log.Warn().Err(err).Str("job", job).Str("restaurant", r.Name).Msg("storing enrichment failed")
			continue
		}
		if r.PlaceID() != "" {
			rep.Updated++
		} else {
			rep.Enriched++
		}
		observability.ObserveEnrich(job, "ok")
	}
	return nil
}

func (s *Syncer) finish(ctx context.Context, rep *Report) {
	rep.FinishedAt = s.now()
	if rep.Enriched+rep.Updated > 0 && s.profiles != nil {
		if err := s.profiles.RefreshAll(ctx); err != nil {
			log.Warn().Err(err).Str("job", rep.Job).Msg("profile refresh after sync failed")
		}
	}

	s.mu.Lock()
	s.lastSync = rep.FinishedAt
	s.lastRun[rep.Job] = rep.FinishedAt
	s.mu.Unlock()

	log.Info().
		Str("job", rep.Job).
		Int("enriched", rep.Enriched).
		Int("updated", rep.Updated).
		Int("failed", rep.Failed).
		Dur("took", rep.FinishedAt.Sub(rep.StartedAt)).
		Msg("sync job finished")
}

func (s *Syncer) setRunning(delta int) {
	s.mu.Lock()
	s.running += delta
	s.mu.Unlock()
}

func (s *Syncer) scheduled(job string, next time.Time) {
	s.mu.Lock()
	s.nextRun[job] = next
	s.mu.Unlock()
}

func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{Running: s.running > 0}
	if !s.lastSync.IsZero() {
		t := s.lastSync
		st.LastSync = &t
	}
	for _, j := range s.jobs {
		js := JobStatus{Name: j.Name, Interval: j.Interval.String()}
		if t, ok := s.lastRun[j.Name]; ok {
			js.LastRun = &t
		}
		if t, ok := s.nextRun[j.Name]; ok {
			js.NextRun = &t
		}
		st.Jobs = append(st.Jobs, js)
	}
	return st
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
