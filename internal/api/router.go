package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(cors.Handler(s.corsOptions()))
	r.Use(s.bodySizeLimitMiddleware)

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/auth/token", s.handleToken)

		// WebSocket authenticates with a ticket, checked in the handler.
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/ws-ticket", s.handleWSTicket)
			r.Get("/system", s.handleSystem)

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", s.handleGetSettings)
				r.Put("/credentials", s.handleSetCredentials)
				r.Delete("/credentials", s.handleClearCredentials)
				r.Post("/credentials/test", s.handleTestCredentials)
				r.Put("/preferences", s.handleUpdatePreferences)
			})

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Post("/refresh", s.handleRefreshDevices)
				r.Put("/order", s.handleSetDeviceOrder)
				r.Post("/reorder/{action}", s.handleDeviceReorder)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.Get("/status", s.handleGetDeviceStatus)
					r.Post("/commands", s.handleSendCommand)
					r.Delete("/error", s.handleClearDeviceError)
				})
			})

			r.Route("/scenes", func(r chi.Router) {
				r.Get("/", s.handleListScenes)
				r.Post("/refresh", s.handleRefreshScenes)
				r.Put("/order", s.handleSetSceneOrder)
				r.Post("/reorder/{action}", s.handleSceneReorder)
				r.Post("/{id}/execute", s.handleExecuteScene)
				r.Delete("/{id}/error", s.handleClearSceneError)
			})

			r.Route("/night-lights", func(r chi.Router) {
				r.Get("/", s.handleListNightLights)
				r.Route("/{deviceID}", func(r chi.Router) {
					r.Get("/", s.handleGetNightLight)
					r.Put("/", s.handleAssignNightLight)
					r.Delete("/", s.handleRemoveNightLight)
					r.Post("/run", s.handleRunNightLight)
				})
			})
		})
	})

	return r
}

func (s *Server) corsOptions() cors.Options {
	origins := s.cfg.CORS.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	methods := s.cfg.CORS.AllowedMethods
	if len(methods) == 0 {
		methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	headers := s.cfg.CORS.AllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	maxAge := s.cfg.CORS.MaxAge
	if maxAge == 0 {
		maxAge = 86400
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   methods,
		AllowedHeaders:   headers,
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: s.cfg.CORS.AllowCredentials,
		MaxAge:           maxAge,
	}
}
