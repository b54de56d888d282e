package keyworddata

import (
	"errors"
	"fmt"

	"github.com/sells-group/evidence-cli/internal/resilience"
	"github.com/sells-group/evidence-cli/pkg/dataforseo"
)

// ErrDataUnavailable is the single signal returned for every provider
// failure: task creation, not-ready or empty results, transport errors, rate
// limits and an open circuit all match it with errors.Is.
var ErrDataUnavailable = errors.New("keyworddata: data unavailable")

// UnavailableError carries the underlying cause of an ErrDataUnavailable.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("keyworddata: %s unavailable: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is matches ErrDataUnavailable.
func (e *UnavailableError) Is(target error) bool { return target == ErrDataUnavailable }

func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UnavailableError{Op: op, Err: err}
}

// outcome is the metrics label for a provider call result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, dataforseo.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, dataforseo.ErrResultNotReady):
		return "not_ready"
	case errors.Is(err, dataforseo.ErrEmptyResult):
		return "empty"
	default:
		return "error"
	}
}

// tripsBreaker reports whether err says the provider itself is unhealthy.
// Not-ready and empty results are normal answers and do not count.
func tripsBreaker(err error) bool {
	if errors.Is(err, dataforseo.ErrResultNotReady) || errors.Is(err, dataforseo.ErrEmptyResult) {
		return false
	}
	if errors.Is(err, dataforseo.ErrRateLimited) || resilience.IsTransient(err) {
		return true
	}
	var apiErr *dataforseo.APIError
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return false
}
