// Package mockexplorer serves canned GraphQL responses in place of a real
// explorer. It backs both in-process tests and the fake explorer binary used
// by process tests.
package mockexplorer

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
)

// GraphQLPath is the path queries are posted to.
const GraphQLPath = "/graphql"

// TB is the subset of testing.TB the server reports failures to.
type TB interface {
	Helper()
	Errorf(format string, args ...interface{})
	Cleanup(func())
}

// Request is a decoded GraphQL query document.
type Request struct {
	OperationName string                 `json:"operationName"`
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
}

// Server is a mock explorer. Responses are registered per operation name
// with On; unmatched operations answer with a GraphQL error.
type Server struct {
	t        TB
	guard    sync.Mutex
	calls    map[string][]*Call
	requests []Request
	probes   int
	url      string
	router   chi.Router
}

// NewServer returns a mock explorer that is not listening yet. t may be nil,
// in which case failures are logged.
func NewServer(t TB) *Server {
	s := &Server{
		t:     t,
		calls: make(map[string][]*Call),
	}
	r := chi.NewRouter()
	r.Head("/", s.serveProbe)
	r.Get("/", s.serveProbe)
	r.Post(GraphQLPath, s.serveQuery)
	s.router = r
	return s
}

// Start serves s on a local httptest listener that is closed when the test
// ends.
func Start(t TB) *Server {
	t.Helper()
	s := NewServer(t)
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	s.url = ts.URL
	return s
}

// URL returns the base URL of a server created with Start.
func (s *Server) URL() string { return s.url }

// On returns a call structure to setup afterwards. Calls registered for the
// same operation are consumed in order.
func (s *Server) On(operation string) *Call {
	s.guard.Lock()
	defer s.guard.Unlock()
	c := &Call{expectedCnt: 1}
	s.calls[operation] = append(s.calls[operation], c)
	return c
}

// Requests returns every query received so far.
func (s *Server) Requests() []Request {
	s.guard.Lock()
	defer s.guard.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Probes returns the number of reachability probes received on /.
func (s *Server) Probes() int {
	s.guard.Lock()
	defer s.guard.Unlock()
	return s.probes
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) serveProbe(w http.ResponseWriter, r *http.Request) {
	s.guard.Lock()
	s.probes++
	s.guard.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) serveQuery(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid query document: %v", err), http.StatusBadRequest)
		return
	}

	s.guard.Lock()
	defer s.guard.Unlock()
	s.requests = append(s.requests, req)

	c := s.findCall(req.OperationName)
	if c == nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(mustMarshal(envelope{
			Data:   json.RawMessage("null"),
			Errors: []gqlError{{Message: fmt.Sprintf("no mock for operation %q", req.OperationName)}},
		}))
		return
	}
	if err := c.execute(w, req); err != nil {
		s.fail("operation %s: %v", req.OperationName, err)
	}
}

func (s *Server) findCall(operation string) *Call {
	for _, c := range s.calls[operation] {
		if c.available() {
			return c
		}
	}
	return nil
}

func (s *Server) fail(format string, args ...interface{}) {
	if s.t == nil {
		log.Printf(format, args...)
		return
	}
	s.t.Errorf(format, args...)
}
