package domain

import "strings"

// Place is a raw search hit from the places provider.
type Place struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Address          string   `json:"address,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	PriceLevel       *int     `json:"price_level,omitempty"`
	Types            []string `json:"types,omitempty"`
}

// ToRestaurant converts a search hit into an unrated candidate. The city is
// read from the address, either a formatted "street, city, region, country"
// or a nearby-search vicinity "street, city"; fallbackCity covers the rest.
func (p Place) ToRestaurant(fallbackCity string) Restaurant {
	loc := Location{
		Address:   p.Address,
		City:      cityFromAddress(p.Address),
		Latitude:  clonePtr(p.Latitude),
		Longitude: clonePtr(p.Longitude),
	}
	if loc.City == "" {
		loc.City = fallbackCity
	}
	r := Restaurant{
		Name:         p.Name,
		Location:     loc,
		CuisineTypes: CuisinesFromPlaceTypes(p.Types),
		GooglePlaces: &GooglePlacesData{
			PlaceID:          p.PlaceID,
			Name:             p.Name,
			Rating:           clonePtr(p.Rating),
			UserRatingsTotal: p.UserRatingsTotal,
			PriceLevel:       clonePtr(p.PriceLevel),
			Types:            append([]string(nil), p.Types...),
			FormattedAddress: p.Address,
		},
	}
	if p.PriceLevel != nil {
		if tier, ok := PriceFromLevel(*p.PriceLevel); ok {
			r.PriceRange = tier
		}
	}
	return r
}

func cityFromAddress(addr string) string {
	parts := strings.Split(addr, ",")
	switch {
	case len(parts) >= 3:
		return strings.TrimSpace(parts[len(parts)-3])
	case len(parts) == 2:
		return strings.TrimSpace(parts[1])
	}
	return ""
}
