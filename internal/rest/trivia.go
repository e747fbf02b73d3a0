package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/Alp4ka/quizhub/internal/models"
)

// legacyQuestion is the flat question format of the bot feed.
type legacyQuestion struct {
	Question  string  `json:"question"`
	Answer    string  `json:"answer"`
	Category  string  `json:"category"`
	Language  string  `json:"language"`
	Hint1     *string `json:"hint1"`
	Hint2     *string `json:"hint2"`
	Submitter *string `json:"submitter"`
}

type triviaFilter struct {
	include    []string
	exclude    []string
	submitters []string
	verified   bool
	disabled   bool
	shuffled   bool
	count      int
}

func parseTriviaFilter(r *http.Request) (triviaFilter, error) {
	query := r.URL.Query()

	f := triviaFilter{
		include:    parseList(query.Get("include")),
		exclude:    parseList(query.Get("exclude")),
		submitters: parseList(query.Get("submitters")),
	}

	var err error
	if f.verified, err = parseBool(query.Get("verified"), true); err != nil {
		return f, err
	}
	if f.disabled, err = parseBool(query.Get("disabled"), false); err != nil {
		return f, err
	}
	if f.shuffled, err = parseBool(query.Get("shuffled"), true); err != nil {
		return f, err
	}

	if count := query.Get("count"); count != "" {
		if f.count, err = strconv.Atoi(count); err != nil || f.count < 0 {
			return f, badRequest("count %q is not a positive number", count)
		}
	}

	return f, nil
}

// parseList reads the "[a,b,c]" list notation of the feed.
func parseList(raw string) []string {
	raw = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(raw), "["), "]")

	return lo.Compact(lo.Map(strings.Split(raw, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	}))
}

func parseBool(raw string, fallback bool) (bool, error) {
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, badRequest("%q is not a boolean", raw)
	}

	return v, nil
}

// scope narrows the feed. Exclusion wins over inclusion, and the verified and
// disabled flags must hold for both the question and its category.
func (f triviaFilter) scope(tx *gorm.DB) *gorm.DB {
	switch {
	case len(f.exclude) > 0:
		tx = tx.Where(`"category"."name" NOT IN ?`, f.exclude)
	case len(f.include) > 0:
		tx = tx.Where(`"category"."name" IN ?`, f.include)
	}

	if len(f.submitters) > 0 {
		tx = tx.Where(`"question"."submitter" IN ?`, f.submitters)
	}

	tx = tx.
		Where(`"question"."verified" = ? AND "category"."verified" = ?`, f.verified, f.verified).
		Where(`"question"."disabled" = ? AND "category"."disabled" = ?`, f.disabled, f.disabled)

	if !f.shuffled {
		tx = tx.Order(`"question"."created_at" DESC`)
		if f.count > 0 {
			tx = tx.Limit(f.count)
		}
	}

	return tx
}

func (h *Handler) handleTriviaQuestions(w http.ResponseWriter, r *http.Request) {
	f, err := parseTriviaFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	questions := make([]legacyQuestion, 0)
	err = h.db.WithContext(r.Context()).
		Table(`"trivia_questions" AS "question"`).
		Select(`"question"."question", "question"."answer", "category"."name" AS "category", "language"."name" AS "language", ` +
			`"question"."hint1", "question"."hint2", "question"."submitter"`).
		Joins(`JOIN "trivia_categories" AS "category" ON "category"."id" = "question"."category_id"`).
		Joins(`JOIN "languages" AS "language" ON "language"."id" = "question"."language_id"`).
		Scopes(f.scope).
		Scan(&questions).Error
	if err != nil {
		writeError(w, err)
		return
	}

	if f.shuffled {
		h.shuffle(len(questions), func(i, j int) { questions[i], questions[j] = questions[j], questions[i] })
		if f.count > 0 && f.count < len(questions) {
			questions = questions[:f.count]
		}
	}

	writeJSON(w, http.StatusOK, questions)
}

type reportRequest struct {
	QuestionID string `json:"questionId"`
	User       string `json:"user"`
	Message    string `json:"message"`
}

func (h *Handler) handleTriviaReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, badRequest("invalid JSON: %v", err))
		return
	}

	if _, _, err := models.DecodeID(req.QuestionID); err != nil {
		writeError(w, err)
		return
	}

	if _, err := models.FileReport(r.Context(), h.db, h.recorder, req.QuestionID, req.Message, req.User); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
