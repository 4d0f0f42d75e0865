/* webhook.go
 * Contains the webhook the tournament site calls when results are published
 * Authors: Zachary Bower
 */

package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// refreshTimeout bounds a refresh started by a webhook
const refreshTimeout = 30 * time.Second

// isRelevantEvent reports whether a webhook is about the tournament being served
func (s *Server) isRelevantEvent(e UpstreamEvent) bool {
	return e.Tournament == s.api.TournamentID
}

// UpstreamWebhookHandler HTTP endpoint that receives a webhook from the tournament site used to kick off refreshing
// the stored event data
// Preconditions: HTTP server has been started, receives HTTP ResponseWriter and Http Request
// Postconditions: Responds 202 and refreshes the named event, or every loaded event, in the background. Webhooks for
// other tournaments are acknowledged and ignored
func (s *Server) UpstreamWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	if s.secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get("X-Webhook-Secret")), []byte(s.secret)) != 1 {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var event UpstreamEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		log.Println("failed to decode webhook:", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if !s.isRelevantEvent(event) {
		w.WriteHeader(http.StatusOK)
		return
	}

	log.Printf("upstream webhook tournament=%d event=%q", event.Tournament, event.Event)

	go func(e UpstreamEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		var err error
		if e.Event == "" {
			err = s.api.RefreshAll(ctx)
		} else {
			err = s.api.Refresh(ctx, e.Event)
		}
		if err != nil {
			log.Println("refresh failed:", err)
		}
	}(event)

	w.WriteHeader(http.StatusAccepted)
}
