package mcp

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"picky/internal/app"
)

type Tool struct {
	InputSchema map[string]any `json:"inputSchema"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
}

func obj(props map[string]any, required ...string) map[string]any {
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func str(desc string) map[string]any { return map[string]any{"type": "string", "description": desc} }
func num(desc string) map[string]any { return map[string]any{"type": "number", "description": desc} }
func boolean(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}

// list accepts an array or a comma-separated string.
func list(desc string) map[string]any {
	return map[string]any{"type": []string{"array", "string"}, "items": map[string]any{"type": "string"}, "description": desc}
}

var locationProps = map[string]any{
	"address":   str("Street address"),
	"city":      str("City"),
	"state":     str("State or region"),
	"country":   str("Country"),
	"latitude":  num("Latitude"),
	"longitude": num("Longitude"),
}

func withLocation(props map[string]any) map[string]any {
	for k, v := range locationProps {
		props[k] = v
	}
	return props
}

var toolDefs = []Tool{
	{
		Name:        "get_restaurant_recommendations",
		Description: "Personalized restaurant recommendations for a location, scored against your visit history.",
		InputSchema: obj(withLocation(map[string]any{
			"user_id":              str("User identifier"),
			"occasion":             str("Dining occasion, e.g. date night"),
			"cuisine_preferences":  list("Cuisines to focus on"),
			"price_preference":     str("$, $$, $$$ or $$$$"),
			"ambiance_preferences": list("Wanted vibes, e.g. cozy"),
			"max_distance_km":      num("Search radius in km"),
			"max_results":          num("Maximum recommendations"),
			"exclude_visited":      boolean("Skip restaurants you have rated"),
			"include_wishlist":     boolean("Always consider wishlist entries"),
		})),
	},
	{
		Name:        "add_restaurant_visit",
		Description: "Log a restaurant visit or wishlist entry; existing records are updated by name.",
		InputSchema: obj(withLocation(map[string]any{
			"user_id":         str("User identifier"),
			"restaurant_name": str("Restaurant name"),
			"rating":          num("Your rating, 1-5"),
			"cuisine_types":   list("Cuisines served"),
			"price_range":     str("$, $$, $$$ or $$$$"),
			"vibes":           list("Atmosphere tags"),
			"notes":           str("Personal notes"),
			"date_visited":    str("Visit date, YYYY-MM-DD"),
			"would_return":    boolean("Would you go back"),
			"is_wishlist":     boolean("Not visited yet"),
		}), "restaurant_name", "city"),
	},
	{
		Name:        "update_restaurant_rating",
		Description: "Change the rating of a logged restaurant.",
		InputSchema: obj(map[string]any{
			"user_id":         str("User identifier"),
			"restaurant_name": str("Restaurant name"),
			"new_rating":      num("New rating, 1-5"),
			"notes":           str("Updated notes"),
		}, "restaurant_name", "new_rating"),
	},
	{
		Name:        "analyze_dining_patterns",
		Description: "Summarize cuisines, price levels, vibes, places and recent trends in your history.",
		InputSchema: obj(map[string]any{"user_id": str("User identifier")}),
	},
	{
		Name:        "find_similar_restaurants",
		Description: "Find logged restaurants similar to one you name.",
		InputSchema: obj(map[string]any{
			"user_id":         str("User identifier"),
			"restaurant_name": str("Reference restaurant"),
			"max_results":     num("Maximum results"),
		}, "restaurant_name"),
	},
	{
		Name:        "enrich_restaurant_database",
		Description: "Fetch places data for every logged restaurant that has none yet.",
		InputSchema: obj(map[string]any{}),
	},
	{
		Name:        "start_interactive_session",
		Description: "Start a recommendation session that learns from your feedback.",
		InputSchema: obj(withLocation(map[string]any{
			"user_id":             str("User identifier"),
			"occasion":            str("Dining occasion"),
			"cuisine_preferences": list("Cuisines to focus on"),
			"max_distance_km":     num("Search radius in km"),
			"max_results":         num("Maximum recommendations"),
		})),
	},
	{
		Name:        "provide_session_feedback",
		Description: "Tell a session what you liked and disliked.",
		InputSchema: obj(map[string]any{
			"session_id":              str("Session identifier"),
			"liked_restaurant_ids":    list("Restaurant ids you liked"),
			"disliked_restaurant_ids": list("Restaurant ids to exclude"),
			"cuisine_preferences":     list("Cuisines you want more of"),
			"vibe_preferences":        list("Vibes you want more of"),
			"cuisine_ratings":         map[string]any{"type": "object", "description": "Cuisine to 1-5 rating"},
			"vibe_ratings":            map[string]any{"type": "object", "description": "Vibe to 1-5 rating"},
			"price_ratings":           map[string]any{"type": "object", "description": "Price tier to 1-5 rating"},
			"additional_notes":        str("Free-form notes"),
		}, "session_id"),
	},
	{
		Name:        "get_session_recommendations",
		Description: "Refined recommendations for a session after feedback.",
		InputSchema: obj(map[string]any{"session_id": str("Session identifier")}, "session_id"),
	},
	{
		Name:        "test_connections",
		Description: "Check the restaurant database and places provider.",
		InputSchema: obj(map[string]any{}),
	},
}

type toolOutput struct {
	body   any
	failed bool
}

func output[T any](res app.Result[T]) toolOutput {
	return toolOutput{body: res, failed: !res.Success}
}

func decodeArgs(args json.RawMessage, dst any) error {
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

type userArgs struct {
	UserID string `json:"user_id"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

func (s *Server) callTool(ctx context.Context, name string, args json.RawMessage) (toolOutput, error) {
	switch name {
	case "get_restaurant_recommendations":
		var in app.RecommendationRequest
		if err := decodeArgs(args, &in); err != nil {
			return toolOutput{}, err
		}
		return output(s.svc.GetRecommendations(ctx, in)), nil

	case "add_restaurant_visit":
		var in app.VisitRequest
		if err := decodeArgs(args, &in); err != nil {
			return toolOutput{}, err
		}
		return output(s.svc.AddVisit(ctx, in)), nil

	case "update_restaurant_rating":
		var in app.RatingRequest
		if err := decodeArgs(args, &in); err != nil {
			return toolOutput{}, err
		}
		return output(s.svc.UpdateRating(ctx, in)), nil

	case "analyze_dining_patterns":
		var in userArgs
		if err := decodeArgs(args, &in); err != nil {
			return toolOutput{}, err
		}
		return output(s.svc.AnalyzePatterns(ctx, in.UserID)), nil

	case "find_similar_restaurants":
		var in app.SimilarRequest
		if err := decodeArgs(args, &in); err != nil {
			return toolOutput{}, err
		}
		return output(s.svc.FindSimilar(ctx, in)), nil

	case "enrich_restaurant_database":
		return output(s.svc.BulkEnrich(ctx)), nil

	case "start_interactive_session":
		var in app.SessionRequest
		if err := decodeArgs(args, &in); err != nil {
			return toolOutput{}, err
		}
		return output(s.svc.StartSession(ctx, in)), nil

	case "provide_session_feedback":
		var in app.FeedbackRequest
		if err := decodeArgs(args, &in); err != nil {
			return toolOutput{}, err
		}
		return output(s.svc.SubmitFeedback(ctx, in)), nil

	case "get_session_recommendations":
		var in sessionArgs
		if err := decodeArgs(args, &in); err != nil {
			return toolOutput{}, err
		}
		return output(s.svc.RefineSession(ctx, in.SessionID)), nil

	case "test_connections":
		return output(s.svc.TestConnections(ctx)), nil
	}
	return toolOutput{}, fmt.Errorf("unknown tool: %s", name)
}
