package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/tendermint/explorer-harness/rpc/graphql/client"
)

// Document is the untyped view of a catalog query.
type Document interface {
	OperationName() string
	Text() string
}

// Query binds a GraphQL document to its variables type V and the type R its
// data member decodes into.
type Query[V any, R any] struct {
	Name     string
	Document string
}

var _ Document = Query[struct{}, struct{}]{}

func (q Query[V, R]) OperationName() string { return q.Name }

func (q Query[V, R]) Text() string { return q.Document }

// Body builds the request for vars.
func (q Query[V, R]) Body(vars V) client.QueryBody {
	return client.QueryBody{
		OperationName: q.Name,
		Query:         q.Document,
		Variables:     vars,
	}
}

// Response is a decoded GraphQL envelope. Errors are passed through exactly
// as the explorer sent them.
type Response[R any] struct {
	Data   *R                    `json:"data"`
	Errors []client.GraphQLError `json:"errors,omitempty"`
}

// Err joins the GraphQL errors of the response, or returns nil.
func (r *Response[R]) Err() error {
	env := client.Envelope{Errors: r.Errors}
	return env.Err()
}

func decodeResponse[R any](env *client.Envelope) (*Response[R], error) {
	resp := &Response[R]{Errors: env.Errors}
	if !env.HasData() {
		return resp, nil
	}
	var data R
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}
	resp.Data = &data
	return resp, nil
}

// Execute runs q against e: build the request, print it, send it, decode the
// data member into R and print the result.
func Execute[V any, R any](ctx context.Context, e *Explorer, q Query[V, R], vars V) (*Response[R], error) {
	body := q.Body(vars)
	e.printRequest(body)

	env, err := e.client.Run(ctx, body)
	if err != nil {
		return nil, classify(q.Name, err, e.ready)
	}

	resp, err := decodeResponse[R](env)
	if err != nil {
		return nil, &Error{Kind: ErrSerialization, Query: q.Name, Err: err}
	}
	printResponse(e, resp)
	return resp, nil
}

// ErrUnknownQuery is returned by Lookup for names missing from the catalog.
var ErrUnknownQuery = errors.New("unknown query")

// Catalog returns every known query document keyed by operation name.
func Catalog() map[string]string {
	out := make(map[string]string, len(catalog))
	for _, d := range catalog {
		out[d.OperationName()] = d.Text()
	}
	return out
}

// QueryNames returns the catalog operation names, sorted.
func QueryNames() []string {
	names := make([]string, 0, len(catalog))
	for _, d := range catalog {
		names = append(names, d.OperationName())
	}
	sort.Strings(names)
	return names
}

// Lookup returns the catalog query named name.
func Lookup(name string) (Document, error) {
	for _, d := range catalog {
		if d.OperationName() == name {
			return d, nil
		}
	}
	return nil, ErrUnknownQuery
}
