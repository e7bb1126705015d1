package recommend

import (
	"context"
	"sort"
	"time"

	"picky/internal/domain"
)

// Recommender runs the full pipeline for one context.
type Recommender interface {
	Recommend(ctx context.Context, rc domain.RecommendationContext) ([]domain.Recommendation, error)
}

// Engine wires profile lookup, candidate aggregation and scoring.
type Engine struct {
	profiles *ProfileBuilder
	agg      *Aggregator
	scorer   Scorer
	now      func() time.Time
}

func NewEngine(profiles *ProfileBuilder, agg *Aggregator, scorer Scorer) *Engine {
	return &Engine{profiles: profiles, agg: agg, scorer: scorer, now: time.Now}
}

func (e *Engine) Profiles() *ProfileBuilder { return e.profiles }

// Recommend scores every surviving candidate, drops irrelevant ones and
// returns the best rc.MaxResults by descending score.
func (e *Engine) Recommend(ctx context.Context, rc domain.RecommendationContext) ([]domain.Recommendation, error) {
	rc = rc.Normalize()
	profile := e.profiles.GetOrCreate(ctx, rc.UserID)
	candidates := e.agg.Candidates(ctx, rc)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.Rank(candidates, profile, rc), nil
}

// Rank is the synchronous half of Recommend.
func (e *Engine) Rank(candidates []domain.Restaurant, profile *domain.UserProfile, rc domain.RecommendationContext) []domain.Recommendation {
	now := e.now()
	out := make([]domain.Recommendation, 0, len(candidates))
	for _, r := range candidates {
		f := e.scorer.Factors(r, profile, rc)
		score := f.Total()
		if !e.scorer.Relevant(score) {
			continue
		}
		out = append(out, domain.Recommendation{
			Restaurant:   r,
			Score:        score,
			Reasoning:    Explain(f),
			DistanceKm:   f.DistanceKm,
			MatchFactors: f.Map(),
			Context:      rc,
			GeneratedAt:  now,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if rc.MaxResults > 0 && len(out) > rc.MaxResults {
		out = out[:rc.MaxResults]
	}
	return out
}
