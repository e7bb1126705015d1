package recommend

import "picky/internal/domain"

const (
	PersonalityAdventurous = "Adventurous Eater"
	PersonalityFineDining  = "Fine Dining Enthusiast"
	PersonalityUpscale     = "Upscale Diner"
	PersonalityDiscerning  = "Discerning Foodie"
	PersonalityCasual      = "Casual Explorer"
)

// ClassifyPersonality labels a dining history. Rules are checked in order and
// the first match wins; an empty history is Unknown.
func ClassifyPersonality(rated []domain.Restaurant) string {
	avg, n := averageRating(rated)
	if n == 0 {
		return domain.PersonalityUnknown
	}

	distinct := map[domain.Cuisine]struct{}{}
	var upscale, fineDining int
	for _, r := range rated {
		if r.Rating == nil {
			continue
		}
		for _, c := range r.CuisineTypes {
			distinct[c] = struct{}{}
		}
		if r.PriceRange.Upscale() {
			upscale++
		}
		if r.HasVibe(domain.VibeFineDining) {
			fineDining++
		}
	}

	switch {
	case len(distinct) > 10 && avg > 4.0:
		return PersonalityAdventurous
	case share(fineDining, n) > 0.3:
		return PersonalityFineDining
	case share(upscale, n) > 0.5:
		return PersonalityUpscale
	case avg > 4.2:
		return PersonalityDiscerning
	default:
		return PersonalityCasual
	}
}

func share(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

// averageRating returns the mean personal rating and how many records carried one.
func averageRating(rs []domain.Restaurant) (float64, int) {
	var sum float64
	var n int
	for _, r := range rs {
		if r.Rating != nil {
			sum += *r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}
