package reporter

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

const maxJSONBodyBytes = 1 << 20

const trendDateLayout = "2006-01-02"

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) CreateTrend(w http.ResponseWriter, r *http.Request) {
	reporterID := r.PathValue("id")
	if _, err := uuid.Parse(reporterID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid reporter id")
		return
	}

	input, date, ok := parseTrendInput(w, r)
	if !ok {
		return
	}

	trend, err := h.repo.InsertTrend(r.Context(), reporterID, input, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "reporter not found")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to create trend")
		return
	}

	writeJSON(w, http.StatusCreated, trend)
}

func (h *Handler) UpdateTrend(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid trend id")
		return
	}

	input, date, ok := parseTrendInput(w, r)
	if !ok {
		return
	}

	trend, err := h.repo.UpdateTrend(r.Context(), id, input, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "trend not found")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to update trend")
		return
	}

	writeJSON(w, http.StatusOK, trend)
}

func (h *Handler) DeleteTrend(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid trend id")
		return
	}

	if err := h.repo.DeleteTrend(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "trend not found")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to delete trend")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListByPress(w http.ResponseWriter, r *http.Request) {
	pressID := r.PathValue("id")
	if _, err := uuid.Parse(pressID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid press id")
		return
	}

	reporters, err := h.repo.ListByPress(r.Context(), pressID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "press not found")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to list reporters")
		return
	}

	writeJSON(w, http.StatusOK, reporters)
}

func parseTrendInput(w http.ResponseWriter, r *http.Request) (TrendInput, time.Time, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var input TrendInput
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return TrendInput{}, time.Time{}, false
	}

	input.Keyword = strings.TrimSpace(input.Keyword)
	if input.Keyword == "" {
		writeError(w, http.StatusBadRequest, "keyword is required")
		return TrendInput{}, time.Time{}, false
	}
	if !utf8.ValidString(input.Keyword) || len(input.Keyword) > 100 {
		writeError(w, http.StatusBadRequest, "keyword is invalid")
		return TrendInput{}, time.Time{}, false
	}
	if input.Count < 0 {
		writeError(w, http.StatusBadRequest, "count must be >= 0")
		return TrendInput{}, time.Time{}, false
	}

	date, err := time.Parse(trendDateLayout, strings.TrimSpace(input.Date))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
		return TrendInput{}, time.Time{}, false
	}

	return input, date, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
