package routes

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/stridelog/stridelog/internal/app"
	"github.com/stridelog/stridelog/internal/handler"
	"github.com/stridelog/stridelog/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	goal := handler.NewGoalHandler(app.GoalService)
	dashboard := handler.NewDashboardHandler(app.GoalService)
	analytics := handler.NewAnalyticsHandler(app.Analytics)

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", health.Health)

	// Owner-scoped API
	mux.HandleFunc("GET /goals", goal.List)
	mux.HandleFunc("POST /goals", goal.Create)
	mux.HandleFunc("GET /goals/{id}", goal.Get)
	mux.HandleFunc("PUT /goals/{id}", goal.Update)
	mux.HandleFunc("DELETE /goals/{id}", goal.Delete)
	mux.HandleFunc("POST /goals/{id}/progress", goal.AppendProgress)
	mux.HandleFunc("GET /summary", dashboard.Summary)

	// Admin reporting surface
	mux.Handle("GET /admin/analytics", middleware.RequireAdmin(http.HandlerFunc(analytics.Report)))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: app.Cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	authed := middleware.Chain(mux,
		middleware.RequestLogging,
		skipAuthForHealth(middleware.RequireAuth(app.Cfg.JWTSecret)),
	)

	return corsHandler.Handler(authed)
}

// skipAuthForHealth exempts the health probe from bearer auth.
func skipAuthForHealth(auth func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authed := auth(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}
			authed.ServeHTTP(w, r)
		})
	}
}
