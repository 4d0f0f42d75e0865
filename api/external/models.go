/* models.go
 * This file contains the models and errors used by the external package when fetching data from upstream
 * Authors: Zachary Bower
 */

package external

import (
	"encoding/json"
	"errors"
)

var (
	// ErrCaptcha is returned when upstream asks for a captcha instead of serving data
	ErrCaptcha = errors.New("upstream requires a captcha")
	// ErrNotFound is returned when upstream does not know the tournament or event
	ErrNotFound = errors.New("not found upstream")
)

// Envelope is the response of the event data endpoint. Exactly one field is set
type Envelope struct {
	EventData json.RawMessage `json:"eventData,omitempty"`
	Captcha   *Captcha        `json:"captcha,omitempty"`
	Error     *Reason         `json:"error,omitempty"`
}

// Captcha that has to be solved in a browser before upstream serves data again
type Captcha struct {
	URL string `json:"url"`
}

// Reason upstream gives for an error
type Reason struct {
	Reason string `json:"reason"`
}

// CaptchaError carries the captcha url and unwraps to ErrCaptcha
type CaptchaError struct {
	URL string
}

func (e *CaptchaError) Error() string {
	return ErrCaptcha.Error() + ": " + e.URL
}

func (e *CaptchaError) Unwrap() error {
	return ErrCaptcha
}
