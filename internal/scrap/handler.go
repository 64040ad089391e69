package scrap

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"newslens/internal/auth"
)

const maxJSONBodyBytes = 1 << 20

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// CreateScrap bookmarks a news article for the authenticated user. The
// user comes from the access token, never from the request body.
func (h *Handler) CreateScrap(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var input ScrapInput
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	input.NewsID = strings.TrimSpace(input.NewsID)
	if _, err := uuid.Parse(input.NewsID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid news id")
		return
	}

	s, err := h.repo.Insert(r.Context(), identity.SubjectID, input.NewsID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, ErrNewsNotFound):
			writeError(w, http.StatusNotFound, "news not found")
		case errors.Is(err, ErrDuplicate):
			writeError(w, http.StatusConflict, "news already scrapped")
		default:
			sentry.CaptureException(err)
			writeError(w, http.StatusInternalServerError, "failed to create scrap")
		}
		return
	}

	writeJSON(w, http.StatusCreated, s)
}

func (h *Handler) DeleteScrap(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	newsID := r.PathValue("newsID")
	if _, err := uuid.Parse(newsID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid news id")
		return
	}

	if err := h.repo.Delete(r.Context(), identity.SubjectID, newsID); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, ErrNewsNotFound):
			writeError(w, http.StatusNotFound, "news not found")
		case errors.Is(err, ErrScrapNotFound):
			writeError(w, http.StatusNotFound, "scrap not found")
		default:
			sentry.CaptureException(err)
			writeError(w, http.StatusInternalServerError, "failed to delete scrap")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListScraps(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	scraps, err := h.repo.ListByUser(r.Context(), identity.SubjectID)
	if err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to list scraps")
		return
	}

	writeJSON(w, http.StatusOK, scraps)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
