package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"picky/internal/app"
	"picky/internal/placesync"
)

const maxBodyBytes = 1 << 20

// Handlers serves the tool surface over HTTP. Sync is optional; without it the
// sync routes answer 503.
type Handlers struct {
	S    *app.Service
	Sync *placesync.Syncer
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Get("/connections", h.connections)

		r.Post("/recommendations", h.recommendations)
		r.Post("/visits", h.addVisit)
		r.Post("/enrich", h.enrich)

		r.Get("/restaurants", h.database)
		r.Get("/restaurants/recent", h.recent)
		r.Get("/restaurants/favorites", h.favorites)
		r.Get("/restaurants/wishlist", h.wishlist)
		r.Put("/restaurants/{name}/rating", h.updateRating)
		r.Get("/restaurants/{name}/similar", h.similar)

		r.Get("/patterns", h.patterns)
		r.Get("/profile", h.profile)

		r.Post("/sessions", h.startSession)
		r.Post("/sessions/{id}/feedback", h.feedback)
		r.Get("/sessions/{id}/recommendations", h.refine)

		r.Post("/sync", h.manualSync)
		r.Get("/sync/status", h.syncStatus)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func statusFor(kind app.ErrorKind) int {
	switch kind {
	case app.KindNotFound:
		return http.StatusNotFound
	case app.KindInvalid:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeResult writes a tool result with a status derived from its error kind.
func writeResult[T any](w http.ResponseWriter, res app.Result[T]) {
	status := http.StatusOK
	if res.Error != nil {
		status = statusFor(res.Error.Kind)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Error().Err(err).Msg("write JSON result failed")
	}
}

// writeCached is writeResult for read-only resources, honouring If-None-Match.
func writeCached[T any](w http.ResponseWriter, r *http.Request, res app.Result[T]) {
	if !res.Success {
		writeResult(w, res)
		return
	}
	etag, body := calcETagAndBody(res)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write cached body")
	}
}

// decode reads a JSON body into dst and validates it. It writes the problem
// response itself and reports whether the handler should continue.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return false
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, dst); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
			return false
		}
	}
	if msg := validateBody(dst); msg != "" {
		writeProblem(w, http.StatusUnprocessableEntity, "Validation failed", msg)
		return false
	}
	return true
}

func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// queryInt reads a non-negative integer query parameter; ok is false when the
// value is present but malformed.
func queryInt(r *http.Request, key string) (n int, ok bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (h *Handlers) status(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.S.Status(r.Context()))
}

func (h *Handlers) connections(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.S.TestConnections(r.Context()))
}

func (h *Handlers) recommendations(w http.ResponseWriter, r *http.Request) {
	var in app.RecommendationRequest
	if !decode(w, r, &in) {
		return
	}
	writeResult(w, h.S.GetRecommendations(r.Context(), in))
}

func (h *Handlers) addVisit(w http.ResponseWriter, r *http.Request) {
	var in app.VisitRequest
	if !decode(w, r, &in) {
		return
	}
	writeResult(w, h.S.AddVisit(r.Context(), in))
}

func (h *Handlers) enrich(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.S.BulkEnrich(r.Context()))
}

func (h *Handlers) updateRating(w http.ResponseWriter, r *http.Request) {
	in := app.RatingRequest{RestaurantName: pathParam(r, "name")}
	if !decode(w, r, &in) {
		return
	}
	in.RestaurantName = pathParam(r, "name")
	writeResult(w, h.S.UpdateRating(r.Context(), in))
}

func (h *Handlers) similar(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "max_results")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid max_results", "max_results must be a non-negative integer")
		return
	}
	writeResult(w, h.S.FindSimilar(r.Context(), app.SimilarRequest{
		UserID:         r.URL.Query().Get("user_id"),
		RestaurantName: pathParam(r, "name"),
		MaxResults:     limit,
	}))
}

func (h *Handlers) patterns(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.S.AnalyzePatterns(r.Context(), r.URL.Query().Get("user_id")))
}

func (h *Handlers) profile(w http.ResponseWriter, r *http.Request) {
	res := h.S.DiningProfile(r.Context(), r.URL.Query().Get("user_id"))
	if !res.Success {
		writeResult(w, res)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, res.Data)
}

func (h *Handlers) startSession(w http.ResponseWriter, r *http.Request) {
	var in app.SessionRequest
	if !decode(w, r, &in) {
		return
	}
	writeResult(w, h.S.StartSession(r.Context(), in))
}

func (h *Handlers) feedback(w http.ResponseWriter, r *http.Request) {
	in := app.FeedbackRequest{SessionID: chi.URLParam(r, "id")}
	if !decode(w, r, &in) {
		return
	}
	in.SessionID = chi.URLParam(r, "id")
	writeResult(w, h.S.SubmitFeedback(r.Context(), in))
}

func (h *Handlers) refine(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.S.RefineSession(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handlers) listParams(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit, ok := queryInt(r, "limit")
	if !ok || limit > 200 {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 0 and 200")
		return 0, false
	}
	return limit, true
}

func (h *Handlers) recent(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.listParams(w, r)
	if !ok {
		return
	}
	writeCached(w, r, h.S.RecentVisits(r.Context(), limit))
}

func (h *Handlers) favorites(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.listParams(w, r)
	if !ok {
		return
	}
	var minRating float64
	if v := r.URL.Query().Get("min_rating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid min_rating", "min_rating must be a number")
			return
		}
		minRating = f
	}
	writeCached(w, r, h.S.Favorites(r.Context(), minRating, limit))
}

func (h *Handlers) wishlist(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.listParams(w, r)
	if !ok {
		return
	}
	writeCached(w, r, h.S.Wishlist(r.Context(), limit))
}

func (h *Handlers) database(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, h.S.Database(r.Context()))
}

func (h *Handlers) manualSync(w http.ResponseWriter, r *http.Request) {
	if h.Sync == nil {
		writeProblem(w, http.StatusServiceUnavailable, "Sync disabled", "background sync is not configured")
		return
	}
	rep, err := h.Sync.ManualSync(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("manual sync failed")
		writeProblem(w, http.StatusBadGateway, "Sync failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handlers) syncStatus(w http.ResponseWriter, r *http.Request) {
	if h.Sync == nil {
		writeProblem(w, http.StatusServiceUnavailable, "Sync disabled", "background sync is not configured")
		return
	}
	writeJSON(w, http.StatusOK, h.Sync.Status())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}
