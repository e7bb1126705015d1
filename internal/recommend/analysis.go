package recommend

import (
	"fmt"
	"math"
	"strings"
	"time"

	"picky/internal/domain"
)

const (
	recentWindow   = 30 * 24 * time.Hour
	topVibes       = 5
	topCities      = 5
	noRecentTrends = "No recent dining activity"
	unknownPrice   = "Unknown"
)

type CuisineStat struct {
	Name          domain.Cuisine `json:"name"`
	Count         int            `json:"count"`
	AverageRating float64        `json:"average_rating"`
}

type VibeStat struct {
	Name  domain.Vibe `json:"name"`
	Count int         `json:"count"`
}

type CityStat struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// PatternReport summarizes a visit log for the analyze-patterns operation.
type PatternReport struct {
	TotalRestaurants  int           `json:"total_restaurants"`
	TotalVisits       int           `json:"total_visits"`
	AverageRating     *float64      `json:"average_rating"`
	DiningPersonality string        `json:"dining_personality"`
	FavoriteCuisines  []CuisineStat `json:"favorite_cuisines"`
	PriceComfortZone  string        `json:"price_comfort_zone"`
	PreferredVibes    []VibeStat    `json:"preferred_vibes"`
	LocationPatterns  []CityStat    `json:"location_patterns"`
	RecentTrends      []string      `json:"recent_trends"`
	Insights          []string      `json:"recommendations_insights"`
}

// AnalyzePatterns builds the report from the full log and the user's profile.
func AnalyzePatterns(all []domain.Restaurant, profile *domain.UserProfile, now time.Time) PatternReport {
	var rated []domain.Restaurant
	for _, r := range all {
		if r.Rated() {
			rated = append(rated, r)
		}
	}

	rep := PatternReport{
		TotalRestaurants:  len(all),
		TotalVisits:       len(rated),
		DiningPersonality: domain.PersonalityUnknown,
		PriceComfortZone:  unknownPrice,
	}
	if profile != nil {
		rep.AverageRating = profile.AverageRating
		rep.DiningPersonality = profile.DiningPersonality
	}

	cuisines := newTally[domain.Cuisine]()
	prices := newTally[domain.PriceRange]()
	vibes := newTally[domain.Vibe]()
	cities := newTally[string]()
	for _, r := range rated {
		for _, c := range r.CuisineTypes {
			cuisines.add(c, *r.Rating)
		}
		if r.PriceRange.Known() {
			prices.add(r.PriceRange, 0)
		}
		for _, v := range r.Vibes {
			vibes.add(v, 0)
		}
		cities.add(r.Location.City, 0)
	}

	for _, c := range cuisines.ranked() {
		rep.FavoriteCuisines = append(rep.FavoriteCuisines, CuisineStat{
			Name:          c,
			Count:         cuisines.count[c],
			AverageRating: round2(cuisines.avg(c)),
		})
	}
	if p, ok := prices.mode(); ok {
		rep.PriceComfortZone = string(p)
	}
	for i, v := range vibes.ranked() {
		if i == topVibes {
			break
		}
		rep.PreferredVibes = append(rep.PreferredVibes, VibeStat{Name: v, Count: vibes.count[v]})
	}
	for i, c := range cities.ranked() {
		if i == topCities {
			break
		}
		rep.LocationPatterns = append(rep.LocationPatterns, CityStat{City: c, Count: cities.count[c]})
	}

	rep.RecentTrends = recentTrends(rated, now)
	rep.Insights = insights(profile)
	return rep
}

func recentTrends(rated []domain.Restaurant, now time.Time) []string {
	cutoff := now.Add(-recentWindow)
	var recent []domain.Restaurant
	for _, r := range rated {
		if r.DateVisited != nil && r.DateVisited.After(cutoff) {
			recent = append(recent, r)
		}
	}
	if len(recent) == 0 {
		return []string{noRecentTrends}
	}

	var trends []string
	cuisines := newTally[domain.Cuisine]()
	for _, r := range recent {
		for _, c := range r.CuisineTypes {
			cuisines.add(c, 0)
		}
	}
	if top, ok := cuisines.mode(); ok {
		trends = append(trends, fmt.Sprintf("Recently favoring %s cuisine", top))
	}
	if avg, n := averageRating(recent); n > 0 {
		trends = append(trends, fmt.Sprintf("Recent average rating: %.1f", avg))
	}
	return trends
}

func insights(p *domain.UserProfile) []string {
	if p == nil {
		return nil
	}
	var out []string
	if p.AverageRating != nil && *p.AverageRating > 4.0 {
		out = append(out, "You tend to choose restaurants you really enjoy")
	}
	if len(p.Preferences.FavoriteCuisines) > 5 {
		out = append(out, "You're an adventurous eater who enjoys diverse cuisines")
	}
	if p.Preferences.PreferredPriceRange.Upscale() {
		out = append(out, "You prefer upscale dining experiences")
	}
	return out
}

// DiningProfileText renders a report as a short plain-text profile.
func DiningProfileText(userID string, rep PatternReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dining Profile for %s\n\n", userID)
	b.WriteString("Statistics:\n")
	fmt.Fprintf(&b, "- Total restaurants: %d\n", rep.TotalRestaurants)
	fmt.Fprintf(&b, "- Total visits: %d\n", rep.TotalVisits)
	if rep.AverageRating != nil {
		fmt.Fprintf(&b, "- Average rating: %.2f\n", *rep.AverageRating)
	} else {
		b.WriteString("- Average rating: N/A\n")
	}
	fmt.Fprintf(&b, "- Dining personality: %s\n", rep.DiningPersonality)

	b.WriteString("\nFavorite Cuisines:\n")
	for i, c := range rep.FavoriteCuisines {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "- %s: %d visits\n", c.Name, c.Count)
	}

	fmt.Fprintf(&b, "\nPrice Comfort Zone: %s\n", rep.PriceComfortZone)

	b.WriteString("\nPreferred Vibes:\n")
	for i, v := range rep.PreferredVibes {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "- %s\n", v.Name)
	}

	if len(rep.Insights) > 0 {
		b.WriteString("\nInsights:\n")
		for i, in := range rep.Insights {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "- %s\n", in)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
