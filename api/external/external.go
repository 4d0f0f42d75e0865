/* external.go
 * Contains the client used to fetch event data and player lists from the upstream tournament site, and return the
 * results to the higher level functions. Requests are rate limited so refreshes never flood upstream
 * Authors: Zachary Bower
 */

package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pickleball-brackets/api/bracket"
	"pickleball-brackets/api/schedule"
	"pickleball-brackets/api/shared"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64; rv:93.0) Gecko/20100101 Firefox/93.0"
	requestTimeout = 20 * time.Second
	// maxConcurrentFetches bounds FetchEvents
	maxConcurrentFetches = 4
)

// Client for the upstream site
type Client struct {
	BaseURL string
	HTTP    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client for baseURL allowing requestsPerSecond requests with bursts of up to burst
// Preconditions: Receives upstream base url without a trailing slash, a rate and a burst size
// Postconditions: Returns the client
func NewClient(baseURL string, requestsPerSecond float64, burst int) *Client {
	if burst < 1 {
		burst = 1
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// FetchEventData gets the raw event data json of one event
// Preconditions: Receives context, tournament id and event name
// Postconditions: Returns the eventData json, an error wrapping ErrCaptcha or ErrNotFound if upstream refused, or
// another error if the request failed
func (c *Client) FetchEventData(ctx context.Context, tournamentID int, event string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/tournament/%d/event/%s/data", c.BaseURL, tournamentID, url.PathEscape(event))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return DecodeEnvelope(body)
}

// FetchEvent gets and decodes one event
// Preconditions: Receives context, tournament id and event name
// Postconditions: Returns the decoded snapshot or an error
func (c *Client) FetchEvent(ctx context.Context, tournamentID int, event string) (*bracket.Snapshot, error) {
	data, err := c.FetchEventData(ctx, tournamentID, event)
	if err != nil {
		return nil, err
	}
	snapshot, err := bracket.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("error decoding event %s: %w", event, err)
	}
	return snapshot, nil
}

// FetchEvents gets several events of a tournament concurrently
// Preconditions: Receives context, tournament id and event names
// Postconditions: Returns snapshots in the order of events, or the first error. Remaining fetches are cancelled on
// error
func (c *Client) FetchEvents(ctx context.Context, tournamentID int, events []string) ([]*bracket.Snapshot, error) {
	snapshots := make([]*bracket.Snapshot, len(events))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for i, event := range events {
		g.Go(func() error {
			snapshot, err := c.FetchEvent(ctx, tournamentID, event)
			if err != nil {
				return err
			}
			snapshots[i] = snapshot
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// FetchPlayerList gets the player list of a tournament from its info page
// Preconditions: Receives context and tournament id
// Postconditions: Returns the players listed on the page or an error
func (c *Client) FetchPlayerList(ctx context.Context, tournamentID int) ([]shared.Player, error) {
	endpoint := fmt.Sprintf("%s/tournamentinfo.pl?tid=%d", c.BaseURL, tournamentID)
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return ParsePlayerList(bytes.NewReader(body))
}

// FetchSchedule gets the schedule of a tournament from its info page
// Preconditions: Receives context and tournament id
// Postconditions: Returns the schedule items in page order or an error
func (c *Client) FetchSchedule(ctx context.Context, tournamentID int) ([]schedule.Item, error) {
	endpoint := fmt.Sprintf("%s/tournamentinfo.pl?tid=%d", c.BaseURL, tournamentID)
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return ParseSchedule(bytes.NewReader(body))
}

// DecodeEnvelope unwraps the event data from an upstream response
// Preconditions: Receives the response body
// Postconditions: Returns the raw eventData json or an error describing why upstream did not send it
func DecodeEnvelope(body []byte) ([]byte, error) {
	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("error parsing upstream response: %w", err)
	}

	switch {
	case len(envelope.EventData) > 0 && !bytes.Equal(envelope.EventData, []byte("null")):
		return envelope.EventData, nil
	case envelope.Captcha != nil:
		return nil, &CaptchaError{URL: envelope.Captcha.URL}
	case envelope.Error != nil:
		if strings.HasSuffix(envelope.Error.Reason, "not found") {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, envelope.Error.Reason)
		}
		return nil, fmt.Errorf("upstream error: %s", envelope.Error.Reason)
	default:
		return nil, errors.New("upstream response has no event data")
	}
}

// Helper function to send a rate limited GET request and read the body
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Accept-Language", "en-US,en;q=0.5")

	response, err := c.HTTP.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	case response.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("failed to fetch %s, status code: %d", endpoint, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
