/* models.go
 * Contains the configuration, server and request types of the web package
 * Authors: Zachary Bower
 */

package web

import (
	"pickleball-brackets/api/api"

	"github.com/go-chi/chi/v5"
)

// Config holds the configuration for the web server
type Config struct {
	Addr           string
	API            *api.API
	AllowedOrigins []string
	// WebhookSecret must be sent in the X-Webhook-Secret header of upstream webhooks. Empty disables the check
	WebhookSecret string
}

// Server is the HTTP server that serves bracket views and handles webhook requests
type Server struct {
	api     *api.API
	hub     *Hub
	router  chi.Router
	secret  string
	origins []string
}

// UpstreamEvent is the body of a webhook sent when the tournament site publishes new results. An empty Event means
// every event of the tournament changed
type UpstreamEvent struct {
	Tournament int    `json:"tournament"`
	Event      string `json:"event"`
}

type jsonResponse map[string]any
