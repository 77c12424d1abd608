package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/asetdesk/asetdesk/internal/auth"
	historyhttp "github.com/asetdesk/asetdesk/internal/history/http"
	"github.com/asetdesk/asetdesk/internal/notification"
	"github.com/asetdesk/asetdesk/internal/observability"
	"github.com/asetdesk/asetdesk/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	SessionManager      *shared.SessionManager
	AuthHandler         *auth.Handler
	HistoryHandler      *historyhttp.Handler
	NotificationHandler *notification.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with Asetdesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}
	if params.HistoryHandler != nil {
		params.HistoryHandler.MountRoutes(r)
	}
	if params.NotificationHandler != nil {
		params.NotificationHandler.MountRoutes(r)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
