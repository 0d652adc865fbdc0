// Package console is the operator-side client library behind cosmeonctl:
// a typed API client, a polling session and the commands operators run.
package console

import "fmt"

// ConnectionError means no response reached the service. Dependent data must
// be treated as unavailable, never as empty-by-design.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ServerError is a 5xx answer; Detail carries the server-supplied message
// verbatim.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Detail)
}

// ClientError is a 4xx answer, typically an unknown file or node id, or an
// operation conflict.
type ClientError struct {
	Status int
	Detail string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("request rejected (%d): %s", e.Status, e.Detail)
}

// PartialDataError records which halves of a parallel fetch failed while the
// rest succeeded. The view continues with defaults for the failed parts.
type PartialDataError struct {
	Parts map[string]error
}

func (e *PartialDataError) Error() string {
	names := make([]string, 0, len(e.Parts))
	for name := range e.Parts {
		names = append(names, name)
	}
	return fmt.Sprintf("partial data: %d of the parallel fetches failed (%v)", len(e.Parts), names)
}
