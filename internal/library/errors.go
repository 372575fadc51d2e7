package library

import "fmt"

// Error reports a failed Lidarr request. Payload carries the response body so
// Lidarr's own message reaches the user.
type Error struct {
	URL        string
	StatusCode int
	Payload    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("lidarr: GET %s: %v", e.URL, e.Err)
	case e.Payload != "":
		return fmt.Sprintf("lidarr: GET %s failed: %d %s", e.URL, e.StatusCode, e.Payload)
	default:
		return fmt.Sprintf("lidarr: GET %s failed: %d", e.URL, e.StatusCode)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
