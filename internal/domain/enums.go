package domain

import "strings"

type Cuisine string

const (
	CuisineAmerican      Cuisine = "American"
	CuisineItalian       Cuisine = "Italian"
	CuisineJapanese      Cuisine = "Japanese"
	CuisineChinese       Cuisine = "Chinese"
	CuisineMexican       Cuisine = "Mexican"
	CuisineIndian        Cuisine = "Indian"
	CuisineFrench        Cuisine = "French"
	CuisineThai          Cuisine = "Thai"
	CuisineMediterranean Cuisine = "Mediterranean"
	CuisineSeafood       Cuisine = "Seafood"
	CuisineSteakhouse    Cuisine = "Steakhouse"
	CuisinePizza         Cuisine = "Pizza"
	CuisineSushi         Cuisine = "Sushi"
	CuisineBarbecue      Cuisine = "Barbecue"
	CuisineVegetarian    Cuisine = "Vegetarian"
	CuisineVegan         Cuisine = "Vegan"
	CuisineFastFood      Cuisine = "Fast Food"
	CuisineCafe          Cuisine = "Cafe"
	CuisineBakery        Cuisine = "Bakery"
	CuisineOther         Cuisine = "Other"
)

var allCuisines = []Cuisine{
	CuisineAmerican, CuisineItalian, CuisineJapanese, CuisineChinese, CuisineMexican,
	CuisineIndian, CuisineFrench, CuisineThai, CuisineMediterranean, CuisineSeafood,
	CuisineSteakhouse, CuisinePizza, CuisineSushi, CuisineBarbecue, CuisineVegetarian,
	CuisineVegan, CuisineFastFood, CuisineCafe, CuisineBakery, CuisineOther,
}

// PriceRange is one of four ordinal tiers. The zero value means unknown.
type PriceRange string

const (
	PriceBudget    PriceRange = "$"
	PriceModerate  PriceRange = "$$"
	PriceExpensive PriceRange = "$$$"
	PriceLuxury    PriceRange = "$$$$"
)

var allPrices = []PriceRange{PriceBudget, PriceModerate, PriceExpensive, PriceLuxury}

type Vibe string

const (
	VibeCasual         Vibe = "casual"
	VibeRomantic       Vibe = "romantic"
	VibeFamilyFriendly Vibe = "family-friendly"
	VibeFineDining     Vibe = "fine dining"
	VibeTrendy         Vibe = "trendy"
	VibeCozy           Vibe = "cozy"
	VibeLively         Vibe = "lively"
	VibeQuiet          Vibe = "quiet"
	VibeOutdoor        Vibe = "outdoor"
	VibeSportsBar      Vibe = "sports bar"
	VibeDateNight      Vibe = "date night"
	VibeBusiness       Vibe = "business"
	VibeBrunch         Vibe = "brunch"
	VibeLateNight      Vibe = "late night"
	VibeCounterService Vibe = "counter service"
	VibeFastFood       Vibe = "fast food"
)

var allVibes = []Vibe{
	VibeCasual, VibeRomantic, VibeFamilyFriendly, VibeFineDining, VibeTrendy, VibeCozy,
	VibeLively, VibeQuiet, VibeOutdoor, VibeSportsBar, VibeDateNight, VibeBusiness,
	VibeBrunch, VibeLateNight, VibeCounterService, VibeFastFood,
}

// Occasion is the dining context of a request. The zero value reads as casual dining.
type Occasion string

const (
	OccasionCasualDining  Occasion = "casual dining"
	OccasionDateNight     Occasion = "date night"
	OccasionBusinessLunch Occasion = "business lunch"
	OccasionFamilyDinner  Occasion = "family dinner"
	OccasionCelebration   Occasion = "celebration"
	OccasionQuickBite     Occasion = "quick bite"
	OccasionWeekendBrunch Occasion = "weekend brunch"
	OccasionHappyHour     Occasion = "happy hour"
	OccasionLateNight     Occasion = "late night"
	OccasionTakeout       Occasion = "takeout"
)

var allOccasions = []Occasion{
	OccasionCasualDining, OccasionDateNight, OccasionBusinessLunch, OccasionFamilyDinner,
	OccasionCelebration, OccasionQuickBite, OccasionWeekendBrunch, OccasionHappyHour,
	OccasionLateNight, OccasionTakeout,
}

func AllCuisines() []Cuisine   { return append([]Cuisine(nil), allCuisines...) }
func AllPrices() []PriceRange  { return append([]PriceRange(nil), allPrices...) }
func AllVibes() []Vibe         { return append([]Vibe(nil), allVibes...) }
func AllOccasions() []Occasion { return append([]Occasion(nil), allOccasions...) }

// ParseCuisine matches s against the closed cuisine set, ignoring case and
// surrounding space. ok is false for anything not in the set.
func ParseCuisine(s string) (Cuisine, bool) { return lookup(allCuisines, s) }

func ParsePrice(s string) (PriceRange, bool) { return lookup(allPrices, s) }

func ParseVibe(s string) (Vibe, bool) { return lookup(allVibes, s) }

func ParseOccasion(s string) (Occasion, bool) { return lookup(allOccasions, s) }

func lookup[T ~string](set []T, s string) (T, bool) {
	s = strings.TrimSpace(s)
	for _, v := range set {
		if strings.EqualFold(string(v), s) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Ordinal returns 1..4 for known tiers and 0 otherwise.
func (p PriceRange) Ordinal() int {
	for i, v := range allPrices {
		if v == p {
			return i + 1
		}
	}
	return 0
}

func (p PriceRange) Known() bool { return p.Ordinal() > 0 }

// Upscale reports whether p is one of the two most expensive tiers.
func (p PriceRange) Upscale() bool { return p == PriceExpensive || p == PriceLuxury }

// PriceFromLevel maps a places price level (0..4) to a tier; free and
// inexpensive both land on $.
func PriceFromLevel(level int) (PriceRange, bool) {
	switch level {
	case 0, 1:
		return PriceBudget, true
	case 2:
		return PriceModerate, true
	case 3:
		return PriceExpensive, true
	case 4:
		return PriceLuxury, true
	}
	return "", false
}

func (o Occasion) OrDefault() Occasion {
	if o == "" {
		return OccasionCasualDining
	}
	return o
}

// occasionVibes is the canonical atmosphere set per occasion.
var occasionVibes = map[Occasion][]Vibe{
	OccasionDateNight:     {VibeRomantic, VibeFineDining},
	OccasionBusinessLunch: {VibeBusiness, VibeQuiet},
	OccasionFamilyDinner:  {VibeFamilyFriendly, VibeCasual},
	OccasionCelebration:   {VibeFineDining, VibeTrendy},
	OccasionQuickBite:     {VibeCasual, VibeFastFood},
	OccasionWeekendBrunch: {VibeBrunch, VibeCasual},
	OccasionHappyHour:     {VibeSportsBar, VibeLively},
	OccasionLateNight:     {VibeLateNight, VibeCasual},
}

// Vibes returns the canonical vibe set for o; casual dining and takeout have none.
func (o Occasion) Vibes() []Vibe { return occasionVibes[o.OrDefault()] }

var placeTypeCuisine = map[string]Cuisine{
	"italian_restaurant":       CuisineItalian,
	"chinese_restaurant":       CuisineChinese,
	"japanese_restaurant":      CuisineJapanese,
	"mexican_restaurant":       CuisineMexican,
	"indian_restaurant":        CuisineIndian,
	"french_restaurant":        CuisineFrench,
	"thai_restaurant":          CuisineThai,
	"mediterranean_restaurant": CuisineMediterranean,
	"seafood_restaurant":       CuisineSeafood,
	"steak_house":              CuisineSteakhouse,
	"pizza_restaurant":         CuisinePizza,
	"sushi_restaurant":         CuisineSushi,
	"barbecue_restaurant":      CuisineBarbecue,
	"vegetarian_restaurant":    CuisineVegetarian,
	"vegan_restaurant":         CuisineVegan,
	"american_restaurant":      CuisineAmerican,
	"fast_food_restaurant":     CuisineFastFood,
	"meal_takeaway":            CuisineFastFood,
	"cafe":                     CuisineCafe,
	"bakery":                   CuisineBakery,
}

// CuisinesFromPlaceTypes maps provider type tags onto cuisines, in tag order
// without duplicates. Tags with no mapping yield Other.
func CuisinesFromPlaceTypes(types []string) []Cuisine {
	var out []Cuisine
	for _, t := range types {
		if c, ok := placeTypeCuisine[strings.ToLower(t)]; ok && !containsCuisine(out, c) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return []Cuisine{CuisineOther}
	}
	return out
}

func containsCuisine(xs []Cuisine, c Cuisine) bool {
	for _, x := range xs {
		if x == c {
			return true
		}
	}
	return false
}
