/* router.go
 * Contains the route table of the HTTP server
 * Authors: Zachary Bower
 */

package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewServer creates a Server with its routes configured
// Preconditions: Receives the server configuration. cfg.API must not be nil
// Postconditions: Returns the server, ready to be served with Handler
func NewServer(cfg Config) *Server {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s := &Server{
		api:     cfg.API,
		hub:     NewHub(),
		router:  chi.NewRouter(),
		secret:  cfg.WebhookSecret,
		origins: origins,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Webhook-Secret"},
		MaxAge:         300,
	}))

	s.router.Get("/health", s.healthCheck)
	s.router.Post("/webhooks/upstream", s.UpstreamWebhookHandler)
	s.router.With(middleware.Timeout(15*time.Second)).Get("/schedule", s.getSchedule)

	s.router.Route("/events/{name}", func(r chi.Router) {
		// websocket connections are long lived so only the plain requests get a timeout
		r.Get("/ws", s.serveWs)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(15 * time.Second))
			r.Get("/", s.getView)
			r.Get("/teams", s.getTeams)
			r.Get("/standings", s.getStandings)
			r.Post("/events", s.postEvent)
		})
	})
	return s
}

// Handler returns the root handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub of the server
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	events := s.api.Events()
	watching := make(map[string]int, len(events))
	for _, event := range events {
		watching[event] = s.hub.CountEvent(event)
	}
	writeJSON(w, http.StatusOK, jsonResponse{"status": "ok", "events": events, "clients": s.hub.Count(), "watching": watching})
}
