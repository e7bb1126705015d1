package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"picky/internal/adapters/observability"
	"picky/internal/domain"
	"picky/internal/recommend"
)

type SessionData struct {
	SessionID       string                  `json:"session_id"`
	Count           int                     `json:"count"`
	Recommendations []domain.Recommendation `json:"recommendations"`
	Message         string                  `json:"message"`
}

func (s *Service) StartSession(ctx context.Context, in SessionRequest) Result[SessionData] {
	return run("start_interactive_session", func() (SessionData, error) {
		loc, err := s.resolveLocation(ctx, in.LocationInput)
		if err != nil {
			return SessionData{}, err
		}
		user := s.user(in.UserID)
		rc := domain.NewRecommendationContext(user, loc)
		if o, ok := parseOne("occasion", in.Occasion, domain.ParseOccasion); ok {
			rc.Occasion = o
		}
		rc.CuisinePreferences = parseList("cuisine", in.CuisinePreferences, domain.ParseCuisine)
		rc.MaxDistanceKm = pick(in.MaxDistanceKm, s.opts.DefaultRadiusKm)
		rc.MaxResults = pick(in.MaxResults, DefaultSessionLimit)

		sess, err := s.sessions.Start(ctx, user, rc)
		if err != nil {
			return SessionData{}, err
		}
		observability.ObserveSession("start")
		return SessionData{
			SessionID:       sess.SessionID,
			Count:           len(sess.CurrentRecommendations),
			Recommendations: sess.CurrentRecommendations,
			Message:         "Session started. Rate cuisines, vibes or restaurants to refine the list.",
		}, nil
	})
}

type FeedbackData struct {
	SessionID          string                 `json:"session_id"`
	FeedbackCount      int                    `json:"feedback_count"`
	LearnedPreferences domain.UserPreferences `json:"learned_preferences"`
	Message            string                 `json:"message"`
}

func (s *Service) SubmitFeedback(ctx context.Context, in FeedbackRequest) Result[FeedbackData] {
	return run("provide_session_feedback", func() (FeedbackData, error) {
		id := strings.TrimSpace(in.SessionID)
		if id == "" {
			return FeedbackData{}, invalidf("session id is required")
		}
		sess, err := s.sessions.Feedback(id, in.feedback())
		if err != nil {
			return FeedbackData{}, err
		}
		observability.ObserveSession("feedback")
		log.Debug().Str("session_id", id).Int("feedback", len(sess.Feedback)).Msg("session feedback recorded")
		return FeedbackData{
			SessionID:          id,
			FeedbackCount:      len(sess.Feedback),
			LearnedPreferences: sess.LearnedPreferences,
			Message:            "Feedback recorded. Ask for session recommendations to see the refined list.",
		}, nil
	})
}

type RefineData struct {
	SessionID string `json:"session_id"`
	Count     int    `json:"count"`
	recommend.Refinement
}

func (s *Service) RefineSession(ctx context.Context, sessionID string) Result[RefineData] {
	return run("get_session_recommendations", func() (RefineData, error) {
		id := strings.TrimSpace(sessionID)
		if id == "" {
			return RefineData{}, invalidf("session id is required")
		}
		ref, err := s.sessions.Refine(ctx, id)
		if err != nil {
			return RefineData{}, err
		}
		observability.ObserveSession("refine")
		return RefineData{SessionID: id, Count: len(ref.Recommendations), Refinement: ref}, nil
	})
}
