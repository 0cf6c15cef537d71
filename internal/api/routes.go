package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes. Everything under /api requires a
// tenant header; health endpoints do not.
func SetupRoutes(h *Handlers, hc *HealthChecker, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", TenantHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", hc.HandleHealth)
	r.Get("/health/live", hc.HandleLiveness)
	r.Get("/health/ready", hc.HandleReadiness)

	r.Route("/api", func(r chi.Router) {
		r.Use(TenantMiddleware)

		r.Route("/leads", func(r chi.Router) {
			r.Get("/predictions", h.ListTopPredictions)
			r.Get("/{contactID}/prediction", h.GetLeadPrediction)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/summary", h.GetCampaignsSummary)
			r.Get("/timeline", h.GetCampaignsTimeline)
			r.Get("/report.xlsx", h.ExportCampaignReport)
			r.Post("/{campaignID}/events", h.TrackCampaignEvent)
			r.Get("/{campaignID}/events", h.ListCampaignEvents)
			r.Post("/{campaignID}/sends", h.RegisterCampaignSend)
			r.Get("/{campaignID}/metrics", h.GetCampaignMetrics)
			r.Get("/{campaignID}/links", h.GetTrackingLinks)
		})

		r.Route("/abtests", func(r chi.Router) {
			r.Post("/", h.CreateABTest)
			r.Get("/", h.ListABTests)
			r.Get("/{id}", h.GetABTest)
			r.Post("/{id}/start", h.StartABTest)
			r.Post("/{id}/sends", h.RegisterABTestSend)
			r.Post("/{id}/evaluate", h.EvaluateABTest)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	})

	return r
}
