package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"picky/internal/adapters/observability"
	"picky/internal/domain"
	"picky/internal/recommend"
)

const (
	DefaultUserID       = "default"
	DefaultEnrichDelay  = 100 * time.Millisecond
	DefaultSessionLimit = 5
	DefaultSimilarLimit = 5
)

type Options struct {
	DefaultUserID   string
	MaxResults      int
	DefaultRadiusKm float64
	EnrichDelay     time.Duration
	Version         string
	Configuration   map[string]any
}

// Service is the tool surface shared by the HTTP and MCP adapters. Every
// method returns a Result and never panics.
type Service struct {
	repo     domain.RestaurantRepository
	places   domain.PlacesClient // nil when no API key is configured
	engine   *recommend.Engine
	sessions *recommend.Sessions
	opts     Options

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool
}

func NewService(repo domain.RestaurantRepository, places domain.PlacesClient, engine *recommend.Engine, opts Options) *Service {
	if opts.DefaultUserID == "" {
		opts.DefaultUserID = DefaultUserID
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = domain.DefaultMaxResults
	}
	if opts.DefaultRadiusKm <= 0 {
		opts.DefaultRadiusKm = domain.DefaultMaxDistanceKm
	}
	if opts.EnrichDelay == 0 {
		opts.EnrichDelay = DefaultEnrichDelay
	}
	return &Service{
		repo:     repo,
		places:   places,
		engine:   engine,
		sessions: recommend.NewSessions(engine),
		opts:     opts,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

func (s *Service) Profiles() *recommend.ProfileBuilder { return s.engine.Profiles() }

func (s *Service) user(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return s.opts.DefaultUserID
}

type RecommendationsData struct {
	Count           int                          `json:"count"`
	Context         domain.RecommendationContext `json:"context"`
	Recommendations []domain.Recommendation      `json:"recommendations"`
}

func (s *Service) GetRecommendations(ctx context.Context, in RecommendationRequest) Result[RecommendationsData] {
	return run("get_restaurant_recommendations", func() (RecommendationsData, error) {
		loc, err := s.resolveLocation(ctx, in.LocationInput)
		if err != nil {
			return RecommendationsData{}, err
		}
		rc := domain.NewRecommendationContext(s.user(in.UserID), loc)
		if o, ok := parseOne("occasion", in.Occasion, domain.ParseOccasion); ok {
			rc.Occasion = o
		}
		rc.CuisinePreferences = parseList("cuisine", in.CuisinePreferences, domain.ParseCuisine)
		if p, ok := parseOne("price range", in.PricePreference, domain.ParsePrice); ok {
			rc.PricePreference = p
		}
		rc.VibePreferences = parseList("vibe", in.AmbiancePreferences, domain.ParseVibe)
		rc.MaxDistanceKm = pick(in.MaxDistanceKm, s.opts.DefaultRadiusKm)
		rc.MaxResults = pick(in.MaxResults, s.opts.MaxResults)
		rc.ExcludeVisited = in.ExcludeVisited
		if in.IncludeWishlist != nil {
			rc.IncludeWishlist = *in.IncludeWishlist
		}

		recs, err := s.engine.Recommend(ctx, rc)
		if err != nil {
			return RecommendationsData{}, err
		}
		observability.ObserveRecommendations(len(recs))
		log.Info().Str("user_id", rc.UserID).Str("city", loc.City).Int("count", len(recs)).Msg("recommendations served")
		return RecommendationsData{Count: len(recs), Context: rc, Recommendations: recs}, nil
	})
}

// resolveLocation requires a city or a coordinate pair and geocodes a
// city-only location when a places client is available. Geocoding failure
// leaves the location without coordinates.
func (s *Service) resolveLocation(ctx context.Context, in LocationInput) (domain.Location, error) {
	loc := in.location()
	if (loc.Latitude == nil) != (loc.Longitude == nil) {
		return loc, invalidf("latitude and longitude must be given together")
	}
	if loc.City == "" && !loc.Geocoded() {
		return loc, invalidf("city or latitude/longitude is required")
	}
	if loc.Geocoded() || s.places == nil {
		return loc, nil
	}
	lat, lon, err := s.places.Geocode(ctx, loc.Query())
	if err != nil {
		log.Warn().Err(err).Str("query", loc.Query()).Msg("geocoding failed, continuing without coordinates")
		return loc, nil
	}
	loc.Latitude, loc.Longitude = &lat, &lon
	return loc, nil
}

func pick[T int | float64](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}

type VisitData struct {
	RestaurantID string            `json:"restaurant_id"`
	Restaurant   domain.Restaurant `json:"restaurant"`
	Created      bool              `json:"created"`
	Enriched     bool              `json:"enriched"`
	Message      string            `json:"message"`
}

// AddVisit records a visit or wishlist entry. An existing record with the same
// name is updated in place.
func (s *Service) AddVisit(ctx context.Context, in VisitRequest) Result[VisitData] {
	return run("add_restaurant_visit", func() (VisitData, error) {
		name := strings.TrimSpace(in.RestaurantName)
		if name == "" {
			return VisitData{}, invalidf("restaurant name is required")
		}
		if strings.TrimSpace(in.City) == "" {
			return VisitData{}, invalidf("city is required")
		}

		existing, err := s.repo.GetByName(ctx, name)
		created := errors.Is(err, domain.ErrNotFound)
		if err != nil && !created {
			return VisitData{}, fmt.Errorf("look up %q: %w", name, err)
		}

		r := existing
		if created {
			r = domain.Restaurant{Name: name, Location: in.location()}
		}
		s.applyVisit(&r, in)

		id := r.ID
		if created {
			if id, err = s.repo.Add(ctx, r); err != nil {
				return VisitData{}, fmt.Errorf("add %q: %w", name, err)
			}
			r.ID = id
		} else if err := s.repo.Update(ctx, id, r); err != nil {
			return VisitData{}, fmt.Errorf("update %q: %w", name, err)
		}

		enriched := false
		if s.places != nil {
			after := s.places.Enrich(ctx, r)
			if domain.WasEnriched(r, after) {
				if err := s.repo.Update(ctx, id, after); err != nil {
					log.Warn().Err(err).Str("restaurant", name).Msg("storing enrichment failed")
				} else {
					r, enriched = after, true
				}
			}
		}
		s.refreshProfile(ctx, s.user(in.UserID))

		verb := "Updated"
		if created {
			verb = "Added"
		}
		return VisitData{
			RestaurantID: id,
			Restaurant:   r,
			Created:      created,
			Enriched:     enriched,
			Message:      fmt.Sprintf("%s %s in your restaurant log", verb, name),
		}, nil
	})
}

func (s *Service) applyVisit(r *domain.Restaurant, in VisitRequest) {
	if in.Rating != nil {
		v := *in.Rating
		r.Rating = &v
	}
	if n := strings.TrimSpace(in.Notes); n != "" {
		r.Notes = n
	}
	if cs := parseList("cuisine", in.CuisineTypes, domain.ParseCuisine); len(cs) > 0 {
		r.CuisineTypes = cs
	}
	if p, ok := parseOne("price range", in.PriceRange, domain.ParsePrice); ok {
		r.PriceRange = p
	}
	if vs := parseList("vibe", in.Vibes, domain.ParseVibe); len(vs) > 0 {
		r.Vibes = vs
	}
	if in.WouldReturn != nil {
		v := *in.WouldReturn
		r.WouldReturn = &v
	}
	if st := strings.TrimSpace(in.State); st != "" && r.Location.State == "" {
		r.Location.State = st
	}
	r.IsWishlist = in.IsWishlist && r.Rating == nil

	if d, ok := parseDate(in.DateVisited); ok {
		r.DateVisited = &d
	} else if !r.IsWishlist {
		now := s.now().UTC()
		r.DateVisited = &now
	}
}

func (s *Service) refreshProfile(ctx context.Context, userID string) {
	if _, err := s.engine.Profiles().Refresh(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("profile refresh failed")
	}
}

type RatingData struct {
	Restaurant domain.Restaurant `json:"restaurant"`
	OldRating  *float64          `json:"old_rating,omitempty"`
	NewRating  float64           `json:"new_rating"`
	Message    string            `json:"message"`
}

func (s *Service) UpdateRating(ctx context.Context, in RatingRequest) Result[RatingData] {
	return run("update_restaurant_rating", func() (RatingData, error) {
		name := strings.TrimSpace(in.RestaurantName)
		if name == "" {
			return RatingData{}, invalidf("restaurant name is required")
		}
		if in.NewRating == nil {
			return RatingData{}, invalidf("new rating is required")
		}
		r, err := s.repo.GetByName(ctx, name)
		if err != nil {
			return RatingData{}, err
		}

		old := r.Rating
		rating := *in.NewRating
		r.Rating = &rating
		r.IsWishlist = false
		if n := strings.TrimSpace(in.Notes); n != "" {
			r.Notes = n
		}
		if err := s.repo.Update(ctx, r.ID, r); err != nil {
			return RatingData{}, fmt.Errorf("update %q: %w", name, err)
		}
		s.refreshProfile(ctx, s.user(in.UserID))
		return RatingData{
			Restaurant: r,
			OldRating:  old,
			NewRating:  rating,
			Message:    fmt.Sprintf("Updated %s rating to %.1f", r.Name, rating),
		}, nil
	})
}

func (s *Service) patterns(ctx context.Context, userID string) (recommend.PatternReport, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return recommend.PatternReport{}, fmt.Errorf("load restaurants: %w", err)
	}
	profile := s.engine.Profiles().GetOrCreate(ctx, userID)
	return recommend.AnalyzePatterns(all, profile, s.now()), nil
}

func (s *Service) AnalyzePatterns(ctx context.Context, userID string) Result[recommend.PatternReport] {
	return run("analyze_dining_patterns", func() (recommend.PatternReport, error) {
		return s.patterns(ctx, s.user(userID))
	})
}

// DiningProfile renders the pattern report as plain text.
func (s *Service) DiningProfile(ctx context.Context, userID string) Result[string] {
	return run("dining_profile", func() (string, error) {
		u := s.user(userID)
		rep, err := s.patterns(ctx, u)
		if err != nil {
			return "", err
		}
		return recommend.DiningProfileText(u, rep), nil
	})
}

type SimilarData struct {
	Reference domain.Restaurant       `json:"reference"`
	Count     int                     `json:"count"`
	Similar   []domain.Recommendation `json:"similar_restaurants"`
}

func (s *Service) FindSimilar(ctx context.Context, in SimilarRequest) Result[SimilarData] {
	return run("find_similar_restaurants", func() (SimilarData, error) {
		name := strings.TrimSpace(in.RestaurantName)
		if name == "" {
			return SimilarData{}, invalidf("restaurant name is required")
		}
		ref, err := s.repo.GetByName(ctx, name)
		if err != nil {
			return SimilarData{}, err
		}
		pool, err := s.repo.GetAll(ctx)
		if err != nil {
			return SimilarData{}, fmt.Errorf("load restaurants: %w", err)
		}
		rc := domain.NewRecommendationContext(s.user(in.UserID), ref.Location)
		limit := pick(in.MaxResults, DefaultSimilarLimit)
		similar := recommend.FindSimilar(ref, pool, rc, limit, s.now())
		return SimilarData{Reference: ref, Count: len(similar), Similar: similar}, nil
	})
}

type EnrichData struct {
	Total    int    `json:"total"`
	Enriched int    `json:"enriched"`
	Failed   int    `json:"failed"`
	Skipped  int    `json:"skipped"`
	Message  string `json:"message"`
}

// BulkEnrich enriches every record that has no place id yet, pausing between
// provider calls.
func (s *Service) BulkEnrich(ctx context.Context) Result[EnrichData] {
	return run("enrich_restaurant_database", func() (EnrichData, error) {
		if s.places == nil {
			return EnrichData{}, invalidf("places provider is not configured")
		}
		all, err := s.repo.GetAll(ctx)
		if err != nil {
			return EnrichData{}, fmt.Errorf("load restaurants: %w", err)
		}

		out := EnrichData{Total: len(all)}
		first := true
		for _, r := range all {
			if r.PlaceID() != "" {
				out.Skipped++
				continue
			}
			if !first && !s.sleep(ctx, s.opts.EnrichDelay) {
				return out, ctx.Err()
			}
			first = false

			after := s.places.Enrich(ctx, r)
			if !domain.WasEnriched(r, after) {
				out.Failed++
				observability.ObserveEnrich("bulk", "unchanged")
				continue
			}
			if err := s.repo.Update(ctx, r.ID, after); err != nil {
				log.Warn().Err(err).Str("restaurant", r.Name).Msg("storing enrichment failed")
				out.Failed++
				observability.ObserveEnrich("bulk", "error")
				continue
			}
			out.Enriched++
			observability.ObserveEnrich("bulk", "ok")
		}

		if err := s.engine.Profiles().RefreshAll(ctx); err != nil {
			log.Warn().Err(err).Msg("profile refresh after enrichment failed")
		}
		out.Message = fmt.Sprintf("Enriched %d of %d restaurants (%d failed, %d already enriched)",
			out.Enriched, out.Total, out.Failed, out.Skipped)
		log.Info().Int("enriched", out.Enriched).Int("failed", out.Failed).Int("skipped", out.Skipped).Msg("bulk enrichment finished")
		return out, nil
	})
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
