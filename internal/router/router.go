package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"babykicks-backend/internal/handlers"
	"babykicks-backend/internal/middleware"
	"babykicks-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	sessionHandler *handlers.SessionHandler,
	insightHandler *handlers.InsightHandler,
	trendsHandler *handlers.TrendsHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/guest", authHandler.Guest)
			r.Post("/login", authHandler.Login)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Profile Routes ────
		r.Route("/profile", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", profileHandler.Get)
			r.Put("/", profileHandler.Update)
		})

		// ──── Counting Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", sessionHandler.List)
			r.Get("/current", sessionHandler.Current)
			r.Post("/start", sessionHandler.Start)
			r.Post("/tap", sessionHandler.Tap)
			r.Post("/finish", sessionHandler.Finish)
			r.Post("/save", sessionHandler.Save)
			r.Post("/discard", sessionHandler.Discard)
		})

		// ──── Weekly Insight Routes ────
		r.Route("/insights", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/weekly", insightHandler.Weekly)
		})

		// ──── Trends & Dashboard Routes ────
		r.Route("/trends", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", trendsHandler.Report)
		})
		r.Route("/dashboard", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/today", trendsHandler.Today)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
