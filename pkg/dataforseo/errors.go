package dataforseo

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrResultNotReady means the task was accepted but its result was not
	// available when fetched.
	ErrResultNotReady = errors.New("dataforseo: result not ready")

	// ErrRateLimited means the provider rejected the call with a rate-limit status.
	ErrRateLimited = errors.New("dataforseo: rate limited")

	// ErrEmptyResult means the task completed with no usable rows.
	ErrEmptyResult = errors.New("dataforseo: empty result")
)

// APIError is returned when DataForSEO responds with a non-2xx HTTP status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dataforseo: HTTP %d: %s", e.StatusCode, e.Body)
}

// Is maps HTTP 429 to ErrRateLimited.
func (e *APIError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// TaskError is returned when the envelope or task carries a non-success
// provider status code.
type TaskError struct {
	Code    int
	Message string
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("dataforseo: status %d: %s", e.Code, e.Message)
}

// Is maps provider status codes onto the package sentinels.
func (e *TaskError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Code == StatusRateLimit
	case ErrResultNotReady:
		return e.Code == StatusTaskHanded || e.Code == StatusTaskInQueue
	default:
		return false
	}
}
