package places

import (
	"strings"

	"picky/internal/domain"
)

func (s apiStatus) status() apiStatus { return s }

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geometry struct {
	Location *latLng `json:"location"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity"`
	FormattedAddress string   `json:"formatted_address"`
	Geometry         geometry `json:"geometry"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	PriceLevel       *int     `json:"price_level"`
	Types            []string `json:"types"`
}

type searchResponse struct {
	apiStatus
	Results []placeResult `json:"results"`
}

type detailsResult struct {
	placeResult
	Phone        string `json:"formatted_phone_number"`
	Website      string `json:"website"`
	OpeningHours *struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
	Photos []struct {
		Reference string `json:"photo_reference"`
	} `json:"photos"`
	Reviews []domain.PlaceReview `json:"reviews"`
}

type detailsResponse struct {
	apiStatus
	Result *detailsResult `json:"result"`
}

type geocodeResponse struct {
	apiStatus
	Results []struct {
		Geometry geometry `json:"geometry"`
	} `json:"results"`
}

// toPlace drops hits without an id or a name.
func (p placeResult) toPlace() (domain.Place, bool) {
	if p.PlaceID == "" || strings.TrimSpace(p.Name) == "" {
		return domain.Place{}, false
	}
	out := domain.Place{
		PlaceID:          p.PlaceID,
		Name:             p.Name,
		Address:          firstNonEmpty(p.Vicinity, p.FormattedAddress),
		Rating:           p.Rating,
		UserRatingsTotal: p.UserRatingsTotal,
		PriceLevel:       p.PriceLevel,
		Types:            p.Types,
	}
	if loc := p.Geometry.Location; loc != nil {
		lat, lng := loc.Lat, loc.Lng
		out.Latitude, out.Longitude = &lat, &lng
	}
	return out, true
}

func (d detailsResult) toData(placeID string) domain.GooglePlacesData {
	g := domain.GooglePlacesData{
		PlaceID:          placeID,
		Name:             d.Name,
		Rating:           d.Rating,
		UserRatingsTotal: d.UserRatingsTotal,
		PriceLevel:       d.PriceLevel,
		Types:            d.Types,
		FormattedAddress: firstNonEmpty(d.FormattedAddress, d.Vicinity),
		Phone:            d.Phone,
		Website:          d.Website,
		Reviews:          d.Reviews,
	}
	if d.OpeningHours != nil {
		g.OpeningHours = d.OpeningHours.WeekdayText
	}
	for _, ph := range d.Photos {
		if ph.Reference != "" {
			g.Photos = append(g.Photos, ph.Reference)
		}
	}
	return g
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
