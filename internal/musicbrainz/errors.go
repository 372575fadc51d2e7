package musicbrainz

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a failed remote call.
type ErrorKind string

const (
	KindHTTP     ErrorKind = "http"
	KindNetwork  ErrorKind = "network"
	KindTimeout  ErrorKind = "timeout"
	KindDecode   ErrorKind = "decode"
	KindCanceled ErrorKind = "canceled"
)

// RemoteError reports a MusicBrainz call that failed after retries were
// exhausted or that could not be retried at all.
type RemoteError struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Body       string
	Attempts   int
	Err        error
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "musicbrainz: %s error", e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, " for %s", e.URL)
	}
	if e.Attempts > 1 {
		fmt.Fprintf(&b, " after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	} else if e.Body != "" {
		b.WriteString(": ")
		b.WriteString(e.Body)
	}
	return b.String()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
