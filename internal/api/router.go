package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/skysar/sarplan/internal/config"
	"github.com/skysar/sarplan/internal/planner"
	"github.com/skysar/sarplan/internal/storage/sqlite"
	"github.com/skysar/sarplan/internal/websocket"
	"github.com/skysar/sarplan/pkg/logger"
)

// Router wraps the chi router with the API handlers
type Router struct {
	handler  *Handler
	config   *config.Config
	logger   *logger.Logger
	wsServer *websocket.Server
}

// NewRouter creates a new API router
func NewRouter(plannerService *planner.Service, cfg *config.Config, log *logger.Logger, wsServer *websocket.Server, planStorage *sqlite.PlanStorage) *Router {
	handler := NewHandler(plannerService, cfg, log, wsServer, planStorage)
	wsServer.SetMessageHandler(handler)

	return &Router{
		handler:  handler,
		config:   cfg,
		logger:   log.Named("api-router"),
		wsServer: wsServer,
	}
}

// Routes returns the configured HTTP handler
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(rt.corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", rt.handler.GetHealth)
		r.Get("/config", rt.handler.GetConfig)

		r.Route("/plans", func(r chi.Router) {
			r.Post("/", rt.handler.CreatePlan)
			r.Get("/", rt.handler.GetPlans)
			r.Get("/{id}", rt.handler.GetPlan)
			r.Get("/{id}/geojson", rt.handler.GetPlanGeoJSON)
			r.Get("/{id}/report", rt.handler.GetPlanReport)
			r.Get("/{id}/heatmap.png", rt.handler.GetPlanHeatmap)
		})
	})

	// WebSocket endpoint for plan event streaming
	r.Get("/ws", rt.wsServer.HandleConnection)

	// Rendered artifacts written by the CLI and server
	staticHandler := NewStaticFileHandler(rt.config.Output.Dir, rt.logger)
	r.Handle("/files/*", http.StripPrefix("/files", staticHandler))

	return r
}

// corsMiddleware applies the configured CORS policy
func (rt *Router) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && rt.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rt *Router) originAllowed(origin string) bool {
	for _, allowed := range rt.config.Server.CORSAllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
