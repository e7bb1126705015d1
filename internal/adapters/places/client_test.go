package places_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picky/internal/adapters/places"
	"picky/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func newClient(t *testing.T, h http.Handler) *places.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	cl, err := places.New(ts.URL, "test-key", 100)
	require.NoError(t, err)
	return cl
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

const nearbyBody = `{
  "status": "OK",
  "results": [
    {"place_id": "p1", "name": "Nonna", "vicinity": "2 Main St, Boston",
     "geometry": {"location": {"lat": 42.36, "lng": -71.06}},
     "rating": 4.6, "user_ratings_total": 120, "price_level": 2,
     "types": ["italian_restaurant", "restaurant"]},
    {"place_id": "", "name": "No Id"},
    {"place_id": "p2", "name": "Bangkok", "formatted_address": "3 Main St, Boston, MA, USA"}
  ]
}`

func TestNew_RequiresKey(t *testing.T) {
	_, err := places.New("", "", 1)
	assert.Error(t, err)
}

func TestClient_Search(t *testing.T) {
	var got *http.Request
	cl := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(nearbyBody))
	}))

	ps, err := cl.Search(testCtx(t), "Italian restaurant", 42.36, -71.06, 5000)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/place/nearbysearch/json", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "test-key", q.Get("key"))
	assert.Equal(t, "42.36,-71.06", q.Get("location"))
	assert.Equal(t, "5000", q.Get("radius"))
	assert.Equal(t, "Italian restaurant", q.Get("keyword"))

	require.Len(t, ps, 2)
	assert.Equal(t, "Nonna", ps[0].Name)
	assert.Equal(t, "2 Main St, Boston", ps[0].Address)
	assert.Equal(t, 42.36, *ps[0].Latitude)
	assert.Equal(t, 2, *ps[0].PriceLevel)
	assert.Equal(t, "3 Main St, Boston, MA, USA", ps[1].Address)
	assert.Nil(t, ps[1].Latitude)
}

func TestClient_Search_ZeroResults(t *testing.T) {
	cl := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	ps, err := cl.Search(testCtx(t), "restaurant", 1, 1, 100)
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		status string
		want   error
	}{
		{"REQUEST_DENIED", places.ErrForbidden},
		{"OVER_QUERY_LIMIT", places.ErrOverQuota},
		{"NOT_FOUND", places.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			cl := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"` + tt.status + `","error_message":"nope"}`))
			}))
			_, err := cl.Search(testCtx(t), "restaurant", 1, 1, 100)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_RetriesThenSuccess(t *testing.T) {
	var hits int32
	cl := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = w.Write([]byte(nearbyBody))
		}
	}))

	ps, err := cl.Search(testCtx(t), "restaurant", 1, 1, 100)
	require.NoError(t, err)
	assert.Len(t, ps, 2)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&hits), int32(3))
}

func TestClient_HTTP404IsNotFound(t *testing.T) {
	cl := newClient(t, http.NotFoundHandler())
	_, err := cl.GetDetails(testCtx(t), "p1")
	assert.ErrorIs(t, err, places.ErrNotFound)
}

func TestClient_FindByName(t *testing.T) {
	cl := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/textsearch/json", r.URL.Path)
		assert.Equal(t, "10000", r.URL.Query().Get("radius"))
		_, _ = w.Write([]byte(nearbyBody))
	}))

	p, err := cl.FindByName(testCtx(t), "bangkok", 42.36, -71.06, 0)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "p2", p.PlaceID)

	missing, err := cl.FindByName(testCtx(t), "zzz", 42.36, -71.06, 0)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

const detailsBody = `{
  "status": "OK",
  "result": {
    "place_id": "p1", "name": "Nonna", "rating": 4.7, "price_level": 3,
    "types": ["italian_restaurant"], "formatted_address": "2 Main St, Boston, MA 02108, USA",
    "formatted_phone_number": "(617) 555-0100", "website": "https://nonna.example",
    "opening_hours": {"weekday_text": ["Monday: 5-10 PM"]},
    "photos": [{"photo_reference": "ph1"}, {"photo_reference": ""}],
    "reviews": [{"author_name": "Ana", "rating": 5, "text": "great", "time": 1700000000}],
    "geometry": {"location": {"lat": 42.3601, "lng": -71.0589}}
  }
}`

func TestClient_GetDetails(t *testing.T) {
	cl := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "p1", r.URL.Query().Get("place_id"))
		_, _ = w.Write([]byte(detailsBody))
	}))

	g, err := cl.GetDetails(testCtx(t), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", g.PlaceID)
	assert.Equal(t, 4.7, *g.Rating)
	assert.Equal(t, "(617) 555-0100", g.Phone)
	assert.Equal(t, []string{"Monday: 5-10 PM"}, g.OpeningHours)
	assert.Equal(t, []string{"ph1"}, g.Photos)
	require.Len(t, g.Reviews, 1)
	assert.Equal(t, "Ana", g.Reviews[0].Author)
	assert.False(t, g.LastUpdated.IsZero())
}

func TestClient_Geocode(t *testing.T) {
	cl := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/json", r.URL.Path)
		if r.URL.Query().Get("address") == "Nowhere" {
			_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":40.7,"lng":-74.0}}}]}`))
	}))

	lat, lon, err := cl.Geocode(testCtx(t), "New York, NY")
	require.NoError(t, err)
	assert.Equal(t, 40.7, lat)
	assert.Equal(t, -74.0, lon)

	_, _, err = cl.Geocode(testCtx(t), "Nowhere")
	assert.ErrorIs(t, err, places.ErrNotFound)

	_, _, err = cl.Geocode(testCtx(t), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalid)

	assert.NoError(t, cl.Ping(testCtx(t)))
}

func enrichServer(t *testing.T) (*places.Client, *int32) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/geocode/json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":42.36,"lng":-71.06}}}]}`))
	})
	mux.HandleFunc("/place/textsearch/json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(nearbyBody))
	})
	mux.HandleFunc("/place/details/json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(detailsBody))
	})
	return newClient(t, mux), &calls
}

func TestClient_Enrich_ByName(t *testing.T) {
	cl, calls := enrichServer(t)
	in := domain.Restaurant{Name: "Nonna", Location: domain.Location{Address: "2 Main St", City: "Boston"}}

	out := cl.Enrich(testCtx(t), in)

	require.NotNil(t, out.GooglePlaces)
	assert.Equal(t, "p1", out.PlaceID())
	assert.Equal(t, 42.3601, *out.Location.Latitude)
	assert.Equal(t, domain.PriceExpensive, out.PriceRange)
	assert.True(t, domain.WasEnriched(in, out))
	assert.Nil(t, in.GooglePlaces, "input untouched")
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestClient_Enrich_ByPlaceIDSkipsSearch(t *testing.T) {
	cl, calls := enrichServer(t)
	in := domain.Restaurant{
		Name:         "Nonna",
		Location:     domain.Location{City: "Boston"},
		PriceRange:   domain.PriceModerate,
		GooglePlaces: &domain.GooglePlacesData{PlaceID: "p1"},
	}

	out := cl.Enrich(testCtx(t), in)
	assert.Equal(t, 4.7, *out.GooglePlaces.Rating)
	assert.Equal(t, domain.PriceModerate, out.PriceRange, "known tier kept")
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestClient_Enrich_FailureReturnsInput(t *testing.T) {
	cl := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	in := domain.Restaurant{Name: "Nonna", Location: geocodedLoc()}
	out := cl.Enrich(testCtx(t), in)
	assert.Equal(t, in, out)
}

func geocodedLoc() domain.Location {
	return domain.Location{City: "Boston", Latitude: ptr(42.36), Longitude: ptr(-71.06)}
}
