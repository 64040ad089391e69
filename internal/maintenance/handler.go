package maintenance

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"newslens/internal/observability"
	"newslens/internal/reporter"
)

// CleanupHandler purges trend rows older than the retention window.
// It is meant to be invoked by a scheduler and is guarded by a shared
// secret rather than a user token.
type CleanupHandler struct {
	repo           *reporter.Repository
	logger         *observability.Logger
	cronSecret     string
	trendRetention time.Duration
	batchSize      int
}

func NewCleanupHandler(
	repo *reporter.Repository,
	logger *observability.Logger,
	cronSecret string,
	trendRetention time.Duration,
	batchSize int,
) *CleanupHandler {
	return &CleanupHandler{
		repo:           repo,
		logger:         logger,
		cronSecret:     strings.TrimSpace(cronSecret),
		trendRetention: trendRetention,
		batchSize:      batchSize,
	}
}

func (h *CleanupHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.cronSecret == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) != h.cronSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	retention := h.trendRetention
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	cutoff := time.Now().UTC().Add(-retention)

	deleted, err := h.repo.DeleteTrendsBefore(r.Context(), cutoff, h.batchSize)
	if err != nil {
		h.logger.Error("trend_cleanup_failed", map[string]any{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cleanup failed"})
		return
	}

	h.logger.Info("trend_cleanup_completed", map[string]any{
		"deleted_trends": deleted,
		"cutoff":         cutoff.Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"deleted_trends": deleted,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
