package api

import "fmt"

// ServerError is a request the server answered but rejected. Message is
// the server's user-facing text, when it sent one. ServerError unwraps to
// the matching sentinel in internal/common (for 401/403/404), so both
// errors.Is and message extraction work on the same value.
type ServerError struct {
	Status  int
	Message string

	sentinel error
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server rejected request (%d)", e.Status)
}

func (e *ServerError) Unwrap() error { return e.sentinel }
