/* handlers.go
 * Contains the HTTP handlers for bracket views, rosters, standings, the schedule and renderer events, plus the JSON
 * helpers they share
 * Authors: Zachary Bower
 */

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"pickleball-brackets/api/api"
	"pickleball-brackets/api/external"
	"pickleball-brackets/api/session"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes is the largest request body accepted
const maxBodyBytes = 1 << 20

// getView handles GET /events/{name}
func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	view, err := s.api.GetView(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// getTeams handles GET /events/{name}/teams?filter=
func (s *Server) getTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.api.GetTeams(r.Context(), chi.URLParam(r, "name"), r.URL.Query().Get("filter"))
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"teams": teams})
}

// getStandings handles GET /events/{name}/standings
func (s *Server) getStandings(w http.ResponseWriter, r *http.Request) {
	rows, err := s.api.GetStandings(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"standings": rows})
}

// getSchedule handles GET /schedule?filter=
func (s *Server) getSchedule(w http.ResponseWriter, r *http.Request) {
	view, err := s.api.GetSchedule(r.Context(), r.URL.Query().Get("filter"))
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// postEvent handles POST /events/{name}/events. The event is applied to the shared session of the event, so every
// websocket client watching it receives the new view
func (s *Server) postEvent(w http.ResponseWriter, r *http.Request) {
	var e session.Event
	if err := readJSON(w, r, &e); err != nil {
		writeJSON(w, http.StatusBadRequest, jsonResponse{"error": err.Error()})
		return
	}

	view, err := s.api.Dispatch(r.Context(), chi.URLParam(r, "name"), e)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Helper function to decode a single JSON value from a request body
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var typeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &typeError):
			return fmt.Errorf("body contains incorrect JSON type for field %q", typeError.Field)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("body contains unknown key %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		default:
			return err
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

// Helper function to write a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	js, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to encode response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(js, '\n'))
}

// Helper function to map an error from the api to a status code and write it
func errorResponse(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		message = "the server encountered a problem and could not process your request"
	}
	writeJSON(w, status, jsonResponse{"error": message})
}

// Helper function to choose the status code of an error
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotLoaded), errors.Is(err, external.ErrNotFound), errors.Is(err, session.ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, session.ErrUnknownEvent):
		return http.StatusBadRequest
	case errors.Is(err, api.ErrNotRoundRobin):
		return http.StatusConflict
	case errors.Is(err, external.ErrCaptcha):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
