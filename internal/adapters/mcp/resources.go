package mcp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
)

const (
	mimeJSON = "application/json"
	mimeText = "text/plain"
)

type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

var resourceDefs = []Resource{
	{URI: "config://status", Name: "Server status", Description: "Connection health, version and cache sizes", MimeType: mimeJSON},
	{URI: "profile://dining-preferences", Name: "Dining profile", Description: "Plain-text summary of your dining habits", MimeType: mimeText},
	{URI: "restaurants://recent-visits", Name: "Recent visits", Description: "Most recently visited restaurants", MimeType: mimeJSON},
	{URI: "restaurants://favorites", Name: "Favorites", Description: "Restaurants rated 4 or higher", MimeType: mimeJSON},
	{URI: "restaurants://wishlist", Name: "Wishlist", Description: "Restaurants you want to try", MimeType: mimeJSON},
	{URI: "restaurants://database", Name: "Restaurant database", Description: "Every logged restaurant", MimeType: mimeJSON},
}

// readResource resolves a resource URI. Query parameters (limit, min_rating,
// user_id) tune the list resources.
func (s *Server) readResource(ctx context.Context, raw string) (mime, text string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("bad uri %q: %w", raw, err)
	}
	q := u.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	var body any
	switch u.Scheme + "://" + u.Host {
	case "config://status":
		body = s.svc.Status(ctx)
	case "profile://dining-preferences":
		res := s.svc.DiningProfile(ctx, q.Get("user_id"))
		if !res.Success {
			return "", "", res.Err()
		}
		return mimeText, res.Data, nil
	case "restaurants://recent-visits":
		body = s.svc.RecentVisits(ctx, limit)
	case "restaurants://favorites":
		minRating, _ := strconv.ParseFloat(q.Get("min_rating"), 64)
		body = s.svc.Favorites(ctx, minRating, limit)
	case "restaurants://wishlist":
		body = s.svc.Wishlist(ctx, limit)
	case "restaurants://database":
		body = s.svc.Database(ctx)
	default:
		return "", "", fmt.Errorf("unknown resource: %s", raw)
	}

	if f, ok := body.(interface{ Err() error }); ok {
		if err := f.Err(); err != nil {
			return "", "", err
		}
	}
	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return "", "", err
	}
	return mimeJSON, string(data), nil
}
