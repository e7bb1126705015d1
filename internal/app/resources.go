package app

import (
	"context"
	"fmt"
	"time"

	"picky/internal/domain"
)

const (
	DefaultRecentLimit    = 10
	DefaultFavoriteLimit  = 20
	DefaultWishlistLimit  = 50
	DefaultFavoriteRating = 4.0
	connectedStatus       = "connected"
)

type ConnectionsData struct {
	Repository string `json:"repository"`
	Places     string `json:"places"`
	Healthy    bool   `json:"healthy"`
}

// TestConnections pings both collaborators. A failed ping is reported in the
// data, not as a tool error.
func (s *Service) TestConnections(ctx context.Context) Result[ConnectionsData] {
	return run("test_connections", func() (ConnectionsData, error) {
		return s.connections(ctx), nil
	})
}

func (s *Service) connections(ctx context.Context) ConnectionsData {
	out := ConnectionsData{Repository: connectedStatus, Places: connectedStatus, Healthy: true}
	if err := s.repo.Ping(ctx); err != nil {
		out.Repository = "error: " + err.Error()
		out.Healthy = false
	}
	switch {
	case s.places == nil:
		out.Places = "not configured"
	default:
		if err := s.places.Ping(ctx); err != nil {
			out.Places = "error: " + err.Error()
			out.Healthy = false
		}
	}
	return out
}

type StatusData struct {
	Status         string          `json:"status"`
	Version        string          `json:"version"`
	Connections    ConnectionsData `json:"connections"`
	ActiveSessions int             `json:"active_sessions"`
	CachedProfiles int             `json:"cached_profiles"`
	Configuration  map[string]any  `json:"configuration,omitempty"`
	CheckedAt      time.Time       `json:"checked_at"`
}

func (s *Service) Status(ctx context.Context) Result[StatusData] {
	return run("status", func() (StatusData, error) {
		conns := s.connections(ctx)
		status := "healthy"
		if !conns.Healthy {
			status = "degraded"
		}
		return StatusData{
			Status:         status,
			Version:        s.opts.Version,
			Connections:    conns,
			ActiveSessions: s.sessions.Len(),
			CachedProfiles: len(s.engine.Profiles().Users()),
			Configuration:  s.opts.Configuration,
			CheckedAt:      s.now().UTC(),
		}, nil
	})
}

type ListData struct {
	Count       int                 `json:"count"`
	Restaurants []domain.Restaurant `json:"restaurants"`
}

func listOf(rs []domain.Restaurant, err error) (ListData, error) {
	if err != nil {
		return ListData{}, err
	}
	if rs == nil {
		rs = []domain.Restaurant{}
	}
	return ListData{Count: len(rs), Restaurants: rs}, nil
}

func (s *Service) RecentVisits(ctx context.Context, limit int) Result[ListData] {
	return run("recent_visits", func() (ListData, error) {
		return listOf(s.repo.GetRecent(ctx, pick(limit, DefaultRecentLimit)))
	})
}

func (s *Service) Favorites(ctx context.Context, minRating float64, limit int) Result[ListData] {
	return run("favorites", func() (ListData, error) {
		return listOf(s.repo.GetFavorites(ctx, pick(minRating, DefaultFavoriteRating), pick(limit, DefaultFavoriteLimit)))
	})
}

func (s *Service) Wishlist(ctx context.Context, limit int) Result[ListData] {
	return run("wishlist", func() (ListData, error) {
		return listOf(s.repo.GetWishlist(ctx, pick(limit, DefaultWishlistLimit)))
	})
}

type DatabaseData struct {
	TotalRestaurants int                 `json:"total_restaurants"`
	LastUpdated      *time.Time          `json:"last_updated,omitempty"`
	Restaurants      []domain.Restaurant `json:"restaurants"`
}

// Database dumps the whole visit log.
func (s *Service) Database(ctx context.Context) Result[DatabaseData] {
	return run("database", func() (DatabaseData, error) {
		all, err := s.repo.GetAll(ctx)
		if err != nil {
			return DatabaseData{}, fmt.Errorf("load restaurants: %w", err)
		}
		out := DatabaseData{TotalRestaurants: len(all), Restaurants: all}
		if all == nil {
			out.Restaurants = []domain.Restaurant{}
		}
		for _, r := range all {
			if out.LastUpdated == nil || r.UpdatedAt.After(*out.LastUpdated) {
				t := r.UpdatedAt
				out.LastUpdated = &t
			}
		}
		return out, nil
	})
}
