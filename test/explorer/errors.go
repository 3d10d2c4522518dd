package explorer

import (
	"errors"
	"fmt"

	"github.com/tendermint/explorer-harness/internal/bootstrap"
	"github.com/tendermint/explorer-harness/rpc/graphql/client"
)

var (
	// ErrClient is the kind of errors raised while delivering a query:
	// connection refused, reset or timed out.
	ErrClient = errors.New("graph client error")
	// ErrSerialization is the kind of errors raised while encoding a query
	// or decoding its response.
	ErrSerialization = errors.New("json serialization error")
	// ErrRequest is the kind of errors raised by the HTTP exchange once a
	// response arrived: unexpected status or unreadable body.
	ErrRequest = errors.New("request error")

	// ErrNotReady matches client errors of an explorer that never answered
	// its bootstrap probes.
	ErrNotReady = bootstrap.ErrNotReady
)

// Error is returned by every query method. errors.Is matches it against its
// Kind, and against ErrNotReady when the explorer never became ready.
type Error struct {
	Kind     error
	Query    string
	NotReady bool
	Err      error
}

func (e *Error) Error() string {
	if e.NotReady {
		return fmt.Sprintf("%v (explorer never became ready): %s: %v", e.Kind, e.Query, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Query, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == e.Kind || (e.NotReady && target == ErrNotReady)
}

// classify maps an executor error onto an Error kind.
func classify(query string, err error, ready bool) *Error {
	var (
		requestErr       *client.RequestError
		serializationErr *client.SerializationError
	)
	kind := ErrClient
	switch {
	case errors.As(err, &serializationErr):
		kind = ErrSerialization
	case errors.As(err, &requestErr):
		kind = ErrRequest
	}
	return &Error{
		Kind:     kind,
		Query:    query,
		NotReady: kind == ErrClient && !ready,
		Err:      err,
	}
}
