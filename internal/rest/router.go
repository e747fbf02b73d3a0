// Package rest serves the plain HTTP routes next to the GraphQL endpoint. The
// trivia feed is consumed by chat bots; the listings page with tokens.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Alp4ka/quizhub/audit"
	"github.com/Alp4ka/quizhub/internal/auth"
	"github.com/Alp4ka/quizhub/internal/models"
	"github.com/Alp4ka/quizhub/pager"
)

type Handler struct {
	db       *gorm.DB
	recorder *audit.Recorder
	shuffle  func(n int, swap func(i, j int))
}

func NewHandler(db *gorm.DB, recorder *audit.Recorder) *Handler {
	return &Handler{
		db:       db,
		recorder: recorder,
		shuffle:  rand.Shuffle,
	}
}

// Routes registers the handlers on r. Identities are expected to be attached
// by auth.Middleware further up the chain.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/trivia/questions", h.handleTriviaQuestions)
	r.Post("/trivia/reports", h.handleTriviaReport)
	r.Post("/analytics/errors", h.handleAnalyticsError)

	r.Route("/api", func(api chi.Router) {
		api.With(requireRole(models.RoleAdmin)).Get("/changes", h.handleChanges)
		api.Get("/blog/entries", h.handleBlogEntries)
	})
}

func requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := auth.Require(r.Context(), roles...); err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("could not write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, pager.ErrInvalidArgument), errors.Is(err, models.ErrInvalidID):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	default:
		log.WithError(err).Error("request failed")
		writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", pager.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// pageRequest reads limit and startToken from the query string.
func pageRequest(r *http.Request) (pager.Request, error) {
	query := r.URL.Query()
	req := pager.Request{StartToken: query.Get("startToken")}

	if limit := query.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return req, badRequest("limit %q is not a non-negative number", limit)
		}
		req.Limit = n
	}

	return req, nil
}

// pageSort reads the sort parameter, "createdAt desc,title asc" or repeated
// sort values, through mapping. Without one the listing keeps fallback. The
// primary key is appended as the tie-breaker when the client leaves it out.
func pageSort(r *http.Request, mapping pager.ColumnMapping, fallback ...pager.OrderBy) (pager.Orderings, error) {
	items := lo.FlatMap(r.URL.Query()["sort"], func(v string, _ int) []string {
		return strings.Split(v, ",")
	})
	items = lo.Compact(lo.Map(items, func(item string, _ int) string { return strings.TrimSpace(item) }))
	if len(items) == 0 {
		return fallback, nil
	}

	orderings, err := pager.ParseSort(items, mapping)
	if err != nil {
		return nil, err
	}

	if !lo.ContainsBy(orderings, func(o pager.OrderBy) bool { return o.Column == "id" }) {
		orderings = append(orderings, pager.OrderBy{Column: "id", Direction: orderings[len(orderings)-1].Direction})
	}

	return orderings, nil
}
