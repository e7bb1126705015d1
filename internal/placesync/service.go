package placesync

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/thejerf/suture/v4"
)

// JobService runs one job on its interval under a suture supervisor.
type JobService struct {
	s   *Syncer
	job Job
}

var _ suture.Service = (*JobService)(nil)

// Services returns one supervised service per configured job.
func (s *Syncer) Services() []suture.Service {
	out := make([]suture.Service, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, &JobService{s: s, job: j})
	}
	return out
}

func (j *JobService) Serve(ctx context.Context) error {
	interval := j.job.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	j.s.scheduled(j.job.Name, j.s.now().Add(interval))
	log.Info().Str("job", j.job.Name).Dur("interval", interval).Msg("sync job scheduled")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := j.s.RunJob(ctx, j.job); err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Str("job", j.job.Name).Msg("sync job failed")
			}
			j.s.scheduled(j.job.Name, j.s.now().Add(interval))
		}
	}
}

func (j *JobService) String() string { return "sync-" + j.job.Name }
