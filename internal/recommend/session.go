package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"picky/internal/domain"
)

const (
	likeThreshold    = 4.0
	dislikeThreshold = 2.0
)

// Sessions owns the in-memory session table. Each session has its own lock
// so feedback on one session never waits on another.
type Sessions struct {
	rec Recommender

	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	now   func() time.Time
	newID func(userID string) string
}

type sessionEntry struct {
	mu sync.Mutex
	s  domain.RecommendationSession
}

// Refinement is the outcome of re-running a session with learned preferences.
type Refinement struct {
	Context         domain.RecommendationContext `json:"context"`
	Recommendations []domain.Recommendation      `json:"recommendations"`
}

func NewSessions(rec Recommender) *Sessions {
	return &Sessions{
		rec:      rec,
		sessions: make(map[string]*sessionEntry),
		now:      time.Now,
		newID:    func(userID string) string { return fmt.Sprintf("%s-%s", userID, uuid.NewString()) },
	}
}

// Start opens a session and stores its initial recommendations.
func (m *Sessions) Start(ctx context.Context, userID string, rc domain.RecommendationContext) (domain.RecommendationSession, error) {
	rc.UserID = userID
	rc = rc.Normalize()
	recs, err := m.rec.Recommend(ctx, rc)
	if err != nil {
		return domain.RecommendationSession{}, fmt.Errorf("initial recommendations: %w", err)
	}

	now := m.now()
	s := domain.RecommendationSession{
		SessionID:              m.newID(userID),
		UserID:                 userID,
		OriginalContext:        rc.Clone(),
		CurrentRecommendations: recs,
		LearnedPreferences:     domain.NewUserPreferences(),
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	m.mu.Lock()
	m.sessions[s.SessionID] = &sessionEntry{s: s}
	m.mu.Unlock()

	log.Info().Str("session_id", s.SessionID).Int("recommendations", len(recs)).Msg("session started")
	return cloneSession(s), nil
}

func (m *Sessions) entry(id string) (*sessionEntry, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrNotFound)
	}
	return e, nil
}

func (m *Sessions) Get(id string) (domain.RecommendationSession, error) {
	e, err := m.entry(id)
	if err != nil {
		return domain.RecommendationSession{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneSession(e.s), nil
}

func (m *Sessions) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Feedback folds fb into the session's learned preferences and appends it to
// the feedback log.
func (m *Sessions) Feedback(id string, fb domain.SessionFeedback) (domain.RecommendationSession, error) {
	e, err := m.entry(id)
	if err != nil {
		return domain.RecommendationSession{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	fb.SessionID = id
	if fb.Timestamp.IsZero() {
		fb.Timestamp = m.now()
	}
	e.s.LearnedPreferences = Learn(e.s.LearnedPreferences, fb)
	e.s.Feedback = append(e.s.Feedback, fb)
	e.s.UpdatedAt = m.now()
	return cloneSession(e.s), nil
}

// Learn applies one feedback event to prefs and returns the updated copy.
// Ratings >= 4 add a cuisine or vibe, ratings < 2 remove it. Price ratings >= 4
// set the tier; with several, the highest tier wins.
func Learn(prefs domain.UserPreferences, fb domain.SessionFeedback) domain.UserPreferences {
	out := prefs.Clone()
	for _, c := range domain.AllCuisines() {
		rating, ok := fb.CuisineFeedback[c]
		if !ok {
			continue
		}
		switch {
		case rating >= likeThreshold && !containsCuisine(out.FavoriteCuisines, c):
			out.FavoriteCuisines = append(out.FavoriteCuisines, c)
		case rating < dislikeThreshold:
			out.FavoriteCuisines = removeAll(out.FavoriteCuisines, c)
		}
	}
	for _, v := range domain.AllVibes() {
		rating, ok := fb.VibeFeedback[v]
		if !ok {
			continue
		}
		switch {
		case rating >= likeThreshold && !containsVibe(out.PreferredVibes, v):
			out.PreferredVibes = append(out.PreferredVibes, v)
		case rating < dislikeThreshold:
			out.PreferredVibes = removeAll(out.PreferredVibes, v)
		}
	}
	for _, p := range domain.AllPrices() {
		if rating, ok := fb.PriceFeedback[p]; ok && rating >= likeThreshold {
			out.PreferredPriceRange = p
		}
	}
	return out
}

// Refine reruns the pipeline with the learned preferences merged into a copy
// of the original context and drops every restaurant disliked so far, matched
// by record id or place id.
func (m *Sessions) Refine(ctx context.Context, id string) (Refinement, error) {
	e, err := m.entry(id)
	if err != nil {
		return Refinement{}, err
	}

	e.mu.Lock()
	rc := DeriveContext(e.s.OriginalContext, e.s.LearnedPreferences)
	disliked := map[string]struct{}{}
	for _, fb := range e.s.Feedback {
		for _, rid := range fb.DislikedRestaurants {
			disliked[rid] = struct{}{}
		}
	}
	e.mu.Unlock()

	recs, err := m.rec.Recommend(ctx, rc)
	if err != nil {
		return Refinement{}, fmt.Errorf("refine %s: %w", id, err)
	}
	kept := make([]domain.Recommendation, 0, len(recs))
	for _, r := range recs {
		if isDisliked(r.Restaurant, disliked) {
			continue
		}
		kept = append(kept, r)
	}

	e.mu.Lock()
	e.s.CurrentRecommendations = kept
	e.s.UpdatedAt = m.now()
	e.mu.Unlock()

	return Refinement{Context: rc, Recommendations: kept}, nil
}

// isDisliked matches a restaurant by its record id or, for places-only
// results that have no record id, by its place id.
func isDisliked(r domain.Restaurant, disliked map[string]struct{}) bool {
	for _, id := range []string{r.ID, r.PlaceID()} {
		if _, ok := disliked[id]; ok && id != "" {
			return true
		}
	}
	return false
}

// DeriveContext returns a new context with learned cuisines and vibes unioned
// into the preference lists and the learned tier, if any, as the price filter.
// base is left untouched.
func DeriveContext(base domain.RecommendationContext, learned domain.UserPreferences) domain.RecommendationContext {
	rc := base.Clone()
	for _, c := range learned.FavoriteCuisines {
		if !containsCuisine(rc.CuisinePreferences, c) {
			rc.CuisinePreferences = append(rc.CuisinePreferences, c)
		}
	}
	for _, v := range learned.PreferredVibes {
		if !containsVibe(rc.VibePreferences, v) {
			rc.VibePreferences = append(rc.VibePreferences, v)
		}
	}
	if learned.PreferredPriceRange.Known() {
		rc.PricePreference = learned.PreferredPriceRange
	}
	return rc
}

func removeAll[T comparable](xs []T, x T) []T {
	out := xs[:0:0]
	for _, v := range xs {
		if v != x {
			out = append(out, v)
		}
	}
	return out
}

func cloneSession(s domain.RecommendationSession) domain.RecommendationSession {
	out := s
	out.OriginalContext = s.OriginalContext.Clone()
	out.CurrentRecommendations = append([]domain.Recommendation(nil), s.CurrentRecommendations...)
	out.Feedback = append([]domain.SessionFeedback(nil), s.Feedback...)
	out.LearnedPreferences = s.LearnedPreferences.Clone()
	return out
}
