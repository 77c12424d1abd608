// Package historyhttp menyajikan endpoint lini masa riwayat aset.
package historyhttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/asetdesk/asetdesk/internal/history"
	"github.com/asetdesk/asetdesk/internal/platform/httpx"
)

// TimelineService defines the business contract for timeline data.
type TimelineService interface {
	Timeline(ctx context.Context, assetID string) ([]history.Group, error)
}

// Handler menangani permintaan lini masa riwayat.
type Handler struct {
	logger  *slog.Logger
	service TimelineService
}

// NewHandler membuat handler riwayat baru.
func NewHandler(logger *slog.Logger, service TimelineService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers history routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/assets/{assetID}/history", h.handleTimeline)
}

type timelineResponse struct {
	AssetID string          `json:"assetId"`
	Groups  []history.Group `json:"groups"`
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	assetID := strings.TrimSpace(chi.URLParam(r, "assetID"))
	if assetID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "asset id is required")
		return
	}

	groups, err := h.service.Timeline(r.Context(), assetID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Klien sudah pergi; hasilnya dibuang saja.
			return
		}
		h.logger.Error("build timeline", slog.String("asset", assetID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	if groups == nil {
		groups = []history.Group{}
	}
	httpx.JSON(w, http.StatusOK, timelineResponse{AssetID: assetID, Groups: groups})
}
