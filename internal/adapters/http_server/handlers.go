// Package httpserver exposes the reply selector and the knowledge base over HTTP.
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"travel_planner/internal/adapters/observability"
	"travel_planner/internal/domain"
)

// maxReplyBody caps POST /v1/reply payloads.
const maxReplyBody = 64 << 10

// Conversation is what the API needs from the conversation service.
type Conversation interface {
	Reply(ctx context.Context, chatID int64, text string) domain.Reply
	TopMisses(ctx context.Context, limit int) ([]domain.MissStat, error)
}

type Handlers struct {
	Conv Conversation
	KB   *domain.Knowledge
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type replyRequest struct {
	Text string `json:"text"`
}

type missesResponse struct {
	Items []domain.MissStat `json:"items"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/reply", h.reply)
	s.mux.Get("/v1/destinations", h.listDestinations)
	s.mux.Get("/v1/destinations/{key}", h.getDestination)
	s.mux.Get("/v1/categories", h.listCategories)
	s.mux.Get("/v1/categories/{key}", h.getCategory)
	s.mux.Get("/v1/misses", h.listMisses)
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

// writeCached writes v as JSON with an ETag, answering 304 when the client
// already holds the same representation.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "encode response")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func (h *Handlers) reply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReplyBody))
	if err := dec.Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected JSON object with a text field")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid text", "text must not be empty")
		return
	}

	rep := h.Conv.Reply(r.Context(), 0, text)
	observability.ObserveReply(string(rep.Branch))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		log.Error().Err(err).Msg("failed to write reply body")
	}
}

func (h *Handlers) listDestinations(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, h.KB.Destinations)
}

func (h *Handlers) getDestination(w http.ResponseWriter, r *http.Request) {
	d, ok := h.KB.Destination(strings.ToLower(chi.URLParam(r, "key")))
	if !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", "destination not found")
		return
	}
	writeCached(w, r, d)
}

func (h *Handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, h.KB.Categories)
}

func (h *Handlers) getCategory(w http.ResponseWriter, r *http.Request) {
	c, ok := h.KB.Category(strings.ToLower(chi.URLParam(r, "key")))
	if !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", "category not found")
		return
	}
	writeCached(w, r, c)
}

func (h *Handlers) listMisses(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}

	items, err := h.Conv.TopMisses(r.Context(), limit)
	switch {
	case errors.Is(err, domain.ErrMissStoreDown):
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "unmatched query log is not configured")
		return
	case err != nil:
		log.Error().Err(err).Msg("list misses failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not list unmatched queries")
		return
	}
	if items == nil {
		items = []domain.MissStat{}
	}
	writeCached(w, r, missesResponse{Items: items})
}
