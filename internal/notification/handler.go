package notification

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/asetdesk/asetdesk/internal/platform/httpx"
	"github.com/asetdesk/asetdesk/internal/shared"
)

// DegradedHeader menandai respons yang berisi data contoh, bukan asli.
const DegradedHeader = "X-Degraded"

// SweepEnqueuer menjadwalkan sweep revalidasi approval di luar jalur
// request.
type SweepEnqueuer interface {
	EnqueueRevalidate(ctx context.Context, at time.Time) error
}

// Handler menangani endpoint notifikasi.
type Handler struct {
	logger  *slog.Logger
	service *Service
	sweeps  SweepEnqueuer
}

// NewHandler membuat handler notifikasi baru.
func NewHandler(logger *slog.Logger, service *Service, sweeps SweepEnqueuer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, sweeps: sweeps}
}

// MountRoutes registers notification routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/notifications", h.handleList)
	r.Post("/notifications/revalidate", h.handleRevalidate)
	r.Post("/notifications/{id}/read", h.handleMarkRead)
	r.Post("/notifications/{id}/hide", h.handleHide)
	r.Delete("/notifications/hidden", h.handleShowAll)
	r.Delete("/notifications/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	result, err := h.service.Visible(r.Context(), principal)
	if err != nil {
		h.logger.Error("reconcile notifications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if result.Degraded {
		w.Header().Set(DegradedHeader, "seed")
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleRevalidate(w http.ResponseWriter, r *http.Request) {
	if h.sweeps == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "sweep queue is not configured")
		return
	}
	if err := h.sweeps.EnqueueRevalidate(r.Context(), time.Now().UTC()); err != nil {
		h.logger.Error("enqueue revalidate sweep", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.MarkRead(r.Context(), id); err != nil {
		h.logger.Error("mark read", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHide(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.Hide(r.Context(), principal, id); err != nil {
		h.logger.Error("hide notification", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		h.logger.Error("delete notification", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleShowAll(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.ShowAll(r.Context(), principal); err != nil {
		h.logger.Error("clear hidden set", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "notification id must be a positive integer")
		return 0, false
	}
	return id, true
}
