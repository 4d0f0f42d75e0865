/* models.go
 * This file contain the errors and helper functions that are used by api consumers
 * Authors: Zachary Bower
 */

package api

import "errors"

// ErrNotRoundRobin is returned when standings are requested for a double elimination event
var ErrNotRoundRobin = errors.New("event is not a round robin")

// ErrNoStore is returned when an event must be fetched or refreshed but the API was built without a store
var ErrNoStore = errors.New("no store configured")
