package client

import (
	"fmt"
)

// TransportError is returned when a query could not be delivered: the
// connection was refused, reset or timed out before a response arrived.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("post %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RequestError is returned when the HTTP exchange itself failed after the
// request was built: the request could not be created, the response carried
// a non-2xx status or its body could not be read.
type RequestError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("request to %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("request to %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("request to %s: unexpected status %d: %s", e.URL, e.StatusCode, e.Body)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// SerializationError is returned when a query could not be encoded, or when
// the response body is not a GraphQL JSON envelope.
type SerializationError struct {
	// Op is either "encode" or "decode".
	Op   string
	Body string
	Err  error
}

func (e *SerializationError) Error() string {
	if e.Op == opDecode && e.Body != "" {
		return fmt.Sprintf("%s: %v (body: %s)", e.Op, e.Err, e.Body)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

const (
	opEncode = "encode"
	opDecode = "decode"

	// maxErrorBody bounds how much of a response body is copied into errors.
	maxErrorBody = 512
)

func truncate(b []byte) string {
	if len(b) <= maxErrorBody {
		return string(b)
	}
	return string(b[:maxErrorBody]) + "..."
}
