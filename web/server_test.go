/* server_test.go
 * Contains unit tests for the routes, handlers, websocket hub and webhook of the web package
 * Authors: Zachary Bower
 */

package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	apiPkg "pickleball-brackets/api/api"
	"pickleball-brackets/api/schedule"
	"pickleball-brackets/api/session"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer creates a Server over the loaded mock store and an httptest server running it
func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server, *apiPkg.MockStore) {
	t.Helper()
	ms := apiPkg.NewLoadedMockStore()
	cfg.API = apiPkg.New(ms, 7)
	s := NewServer(cfg)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts, ms
}

// Helper function to GET a path and decode the JSON response
func getJSON(t *testing.T, ts *httptest.Server, path string, dst any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if dst != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	}
	return resp.StatusCode
}

// region route tests

func TestHealth(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})

	var body map[string]any
	status := getJSON(t, ts, "/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["clients"])
}

// TestHealth_Watching tests the health check reports the clients watching each loaded event
func TestHealth_Watching(t *testing.T) {
	s, ts, _ := newTestServer(t, Config{})
	dialEvent(t, ts, "Mixed Doubles 4.0")
	assert.Eventually(t, func() bool { return s.Hub().CountEvent("Mixed Doubles 4.0") == 1 }, time.Second, 10*time.Millisecond)

	var body struct {
		Clients  int            `json:"clients"`
		Watching map[string]int `json:"watching"`
	}
	status := getJSON(t, ts, "/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, body.Clients)
	assert.Equal(t, map[string]int{"Mixed Doubles 4.0": 1}, body.Watching)
}

func TestGetView_DoubleElim(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})

	var view session.View
	status := getJSON(t, ts, "/events/"+url.PathEscape("Mixed Doubles 4.0"), &view)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Mixed Doubles 4.0", view.Name)
	require.Len(t, view.Sections, 1)
	assert.Equal(t, 3, view.Sections[0].Roots[0].ID)
	assert.Equal(t, "idle", view.Selection)
}

func TestGetView_UnknownEvent(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})

	var body map[string]string
	status := getJSON(t, ts, "/events/missing", &body)

	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, body["error"])
}

func TestGetTeams_Filtered(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})

	var body struct {
		Teams [][]map[string]any `json:"teams"`
	}
	status := getJSON(t, ts, "/events/"+url.PathEscape("Mixed Doubles 4.0")+"/teams?filter=bob", &body)

	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Teams, 1)
	assert.Equal(t, "Brown", body.Teams[0][0]["lastName"])
}

func TestGetStandings(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})

	var body struct {
		Standings []map[string]any `json:"standings"`
	}
	status := getJSON(t, ts, "/events/"+url.PathEscape("Singles Pool")+"/standings", &body)

	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Standings, 3)
	assert.EqualValues(t, 1, body.Standings[0]["rank"])
}

func TestGetStandings_DoubleElim(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})

	status := getJSON(t, ts, "/events/"+url.PathEscape("Mixed Doubles 4.0")+"/standings", nil)

	assert.Equal(t, http.StatusConflict, status)
}

// TestGetSchedule_Filtered tests the schedule is filtered by the query string
func TestGetSchedule_Filtered(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})

	var view schedule.View
	status := getJSON(t, ts, "/schedule?filter=singles", &view)

	assert.Equal(t, http.StatusOK, status)
	assert.False(t, view.NoMatches)
	require.Len(t, view.Days, 1)
	require.Len(t, view.Days[0].Slots, 1)
	assert.Equal(t, "Singles Pool", view.Days[0].Slots[0].Venues["Court B"][0].Event)
}

// TestGetSchedule_NoMatches tests a filter matching nothing is not an error
func TestGetSchedule_NoMatches(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})

	var view schedule.View
	status := getJSON(t, ts, "/schedule?filter=skinny", &view)

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, view.NoMatches)
	assert.Equal(t, []string{"Court A", "Court B"}, view.Venues)
}

// TestGetSchedule_StoreError tests store failures are hidden behind a 500
func TestGetSchedule_StoreError(t *testing.T) {
	_, ts, ms := newTestServer(t, Config{})
	ms.GetScheduleError = errors.New("db down")

	var body map[string]any
	status := getJSON(t, ts, "/schedule", &body)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, body["error"], "db down")
}

func TestPostEvent_Filter(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})

	resp, err := http.Post(ts.URL+"/events/"+url.PathEscape("Mixed Doubles 4.0")+"/events", "application/json",
		strings.NewReader(`{"type": "filter", "filter": "bobby"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var view session.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bobby", view.Query)
	assert.Equal(t, 1, view.Sections[0].Roots[0].ID)
}

func TestPostEvent_Errors(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})
	path := ts.URL + "/events/" + url.PathEscape("Mixed Doubles 4.0") + "/events"

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"bad json", `{"type": `, http.StatusBadRequest},
		{"unknown field", `{"kind": "click"}`, http.StatusBadRequest},
		{"unknown type", `{"type": "drag"}`, http.StatusBadRequest},
		{"unknown match", `{"type": "click", "matchId": 99}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(path, "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{AllowedOrigins: []string{"https://brackets.example"}})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/events/x/events", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://brackets.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "https://brackets.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

// endregion

// region statusFor tests

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(session.ErrNotLoaded))
	assert.Equal(t, http.StatusNotFound, statusFor(session.ErrUnknownNode))
	assert.Equal(t, http.StatusBadRequest, statusFor(session.ErrUnknownEvent))
	assert.Equal(t, http.StatusConflict, statusFor(apiPkg.ErrNotRoundRobin))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}

// endregion

// region websocket tests

// Helper function to open a websocket to an event
func dialEvent(t *testing.T, ts *httptest.Server, event string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events/" + url.PathEscape(event) + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// Helper function to read the next message of a given type, skipping others
func readMessage(t *testing.T, conn *websocket.Conn, msgType string) json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == msgType {
			return msg.Payload
		}
	}
}

func TestWebsocket_StreamsViews(t *testing.T) {
	s, ts, _ := newTestServer(t, Config{})
	conn := dialEvent(t, ts, "Mixed Doubles 4.0")

	var view session.View
	require.NoError(t, json.Unmarshal(readMessage(t, conn, "view"), &view))
	assert.Equal(t, "Mixed Doubles 4.0", view.Name)
	assert.Eventually(t, func() bool { return s.Hub().CountEvent("Mixed Doubles 4.0") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(session.Event{Type: session.FilterChanged, Filter: "davis"}))
	require.NoError(t, json.Unmarshal(readMessage(t, conn, "view"), &view))
	assert.Equal(t, "davis", view.Query)
}

func TestWebsocket_SharedBetweenClients(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})
	first := dialEvent(t, ts, "Mixed Doubles 4.0")
	second := dialEvent(t, ts, "Mixed Doubles 4.0")
	readMessage(t, first, "view")
	readMessage(t, second, "view")

	id := 1
	require.NoError(t, first.WriteJSON(session.Event{Type: session.Click, MatchID: &id}))

	var view session.View
	require.NoError(t, json.Unmarshal(readMessage(t, second, "view"), &view))
	assert.Equal(t, "held", view.Selection)
}

func TestWebsocket_ReportsErrors(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})
	conn := dialEvent(t, ts, "Mixed Doubles 4.0")
	readMessage(t, conn, "view")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	var msg string
	require.NoError(t, json.Unmarshal(readMessage(t, conn, "error"), &msg))
	assert.Equal(t, "message is not a valid event", msg)
}

func TestWebsocket_UnregistersOnClose(t *testing.T) {
	s, ts, _ := newTestServer(t, Config{})
	conn := dialEvent(t, ts, "Mixed Doubles 4.0")
	readMessage(t, conn, "view")

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	assert.Eventually(t, func() bool { return s.Hub().Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebsocket_RejectsOrigin(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{AllowedOrigins: []string{"https://brackets.example"}})
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events/" + url.PathEscape("Mixed Doubles 4.0") + "/ws"

	header := http.Header{"Origin": []string{"https://elsewhere.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// endregion

// region webhook tests

func postWebhook(t *testing.T, ts *httptest.Server, body string, secret string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/webhooks/upstream", bytes.NewBufferString(body))
	require.NoError(t, err)
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestUpstreamWebhook_WrongMethod(t *testing.T) {
	server := &Server{}
	w := httptest.NewRecorder()

	server.UpstreamWebhookHandler(w, httptest.NewRequest(http.MethodGet, "/webhooks/upstream", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestUpstreamWebhook_InvalidJSON(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})

	assert.Equal(t, http.StatusBadRequest, postWebhook(t, ts, "invalid json", ""))
}

func TestUpstreamWebhook_OtherTournament(t *testing.T) {
	_, ts, ms := newTestServer(t, Config{})

	assert.Equal(t, http.StatusOK, postWebhook(t, ts, `{"tournament": 8, "event": "Singles Pool"}`, ""))
	assert.Empty(t, ms.InvalidatedEvents())
}

func TestUpstreamWebhook_RefreshesEvent(t *testing.T) {
	_, ts, ms := newTestServer(t, Config{})

	assert.Equal(t, http.StatusAccepted, postWebhook(t, ts, `{"tournament": 7, "event": "Singles Pool"}`, ""))
	assert.Eventually(t, func() bool {
		events := ms.InvalidatedEvents()
		return len(events) == 1 && events[0] == "Singles Pool"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUpstreamWebhook_RefreshesAll(t *testing.T) {
	s, ts, ms := newTestServer(t, Config{})
	_, err := s.api.Session(t.Context(), "Singles Pool")
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, postWebhook(t, ts, `{"tournament": 7}`, ""))
	assert.Eventually(t, func() bool { return len(ms.InvalidatedEvents()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestUpstreamWebhook_Secret(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{WebhookSecret: "s3cret"})

	assert.Equal(t, http.StatusUnauthorized, postWebhook(t, ts, `{"tournament": 7}`, ""))
	assert.Equal(t, http.StatusUnauthorized, postWebhook(t, ts, `{"tournament": 7}`, "wrong"))
	assert.Equal(t, http.StatusAccepted, postWebhook(t, ts, `{"tournament": 7}`, "s3cret"))
}

// endregion
