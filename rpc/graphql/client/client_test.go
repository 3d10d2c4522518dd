package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient starts a server answering every query with handler and
// returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	t.Cleanup(leaktest.Check(t))

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)

	opts = append([]Option{WithHTTPClient(&http.Client{Transport: transport})}, opts...)
	c, err := New(ts.URL, opts...)
	require.NoError(t, err)
	return c, ts
}

func writeJSON(w http.ResponseWriter, v string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(v))
}

func TestNewAddress(t *testing.T) {
	testCases := []struct {
		address string
		want    string
		wantErr bool
	}{
		{"127.0.0.1:8080", "http://127.0.0.1:8080", false},
		{"http://127.0.0.1:8080/", "http://127.0.0.1:8080", false},
		{"https://explorer.local", "https://explorer.local", false},
		{"  localhost:1  ", "http://localhost:1", false},
		{"", "", true},
		{"http://", "", true},
	}

	for _, tc := range testCases {
		c, err := New(tc.address)
		if tc.wantErr {
			assert.Error(t, err, tc.address)
			continue
		}
		require.NoError(t, err, tc.address)
		assert.Equal(t, tc.want, c.BaseURL())
		assert.Equal(t, tc.want+DefaultPath, c.Endpoint())
	}
}

func TestRunSendsQueryBody(t *testing.T) {
	var got map[string]interface{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, DefaultPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, `{"data":{"settings":{"epochStabilityDepth":"10"}}}`)
	})

	env, err := c.Run(context.Background(), QueryBody{
		OperationName: "Settings",
		Query:         "query Settings { settings { epochStabilityDepth } }",
		Variables:     map[string]interface{}{"first": 5},
	})
	require.NoError(t, err)
	require.True(t, env.HasData())
	require.NoError(t, env.Err())
	require.JSONEq(t, `{"settings":{"epochStabilityDepth":"10"}}`, string(env.Data))

	want := map[string]interface{}{
		"operationName": "Settings",
		"query":         "query Settings { settings { epochStabilityDepth } }",
		"variables":     map[string]interface{}{"first": float64(5)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected request body (-want +got):\n%s", diff)
	}
}

func TestRunGraphQLErrorsStayInEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":null,"errors":[{"message":"not found","path":["transaction"]}]}`)
	})

	env, err := c.Run(context.Background(), QueryBody{Query: "{ transaction }"})
	require.NoError(t, err)
	require.False(t, env.HasData())
	require.Len(t, env.Errors, 1)
	require.EqualError(t, env.Err(), "graphql: not found (at transaction)")
}

func TestRunTransportError(t *testing.T) {
	c, ts := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	ts.Close()

	_, err := c.Run(context.Background(), QueryBody{Query: "{ status }"})
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr), "got %T: %v", err, err)
	require.Equal(t, c.Endpoint(), transportErr.URL)
}

func TestRunRequestError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Run(context.Background(), QueryBody{Query: "{ status }"})
	var requestErr *RequestError
	require.True(t, errors.As(err, &requestErr), "got %T: %v", err, err)
	require.Equal(t, http.StatusInternalServerError, requestErr.StatusCode)
	require.Contains(t, requestErr.Body, "boom")
}

func TestRunSerializationError(t *testing.T) {
	testCases := map[string]string{
		"not json":        `<html>oops</html>`,
		"truncated":       `{"data":{"a":`,
		"wrong shape":     `[1,2,3]`,
		"empty envelope":  `{}`,
		"null everything": `{"data":null}`,
	}

	for name, body := range testCases {
		body := body
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, body)
			})

			_, err := c.Run(context.Background(), QueryBody{Query: "{ status }"})
			var serErr *SerializationError
			require.True(t, errors.As(err, &serErr), "got %T: %v", err, err)
			require.Equal(t, "decode", serErr.Op)
		})
	}
}

func TestRunEncodeError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("nothing must be sent")
	})

	_, err := c.Run(context.Background(), QueryBody{Query: "{ a }", Variables: map[string]interface{}{"ch": make(chan int)}})
	var serErr *SerializationError
	require.True(t, errors.As(err, &serErr), "got %T: %v", err, err)
	require.Equal(t, "encode", serErr.Op)
}

func TestVerboseDoesNotChangeResult(t *testing.T) {
	const response = `{"data":{"allStakePools":{"edges":[{"node":{"id":"a"}}],"totalCount":1}}}`
	var out bytes.Buffer
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, response)
	}, WithOutput(&out))

	body := QueryBody{OperationName: "AllStakePools", Query: "query AllStakePools { allStakePools }"}

	c.SetVerbose(false)
	quiet, err := c.Run(context.Background(), body)
	require.NoError(t, err)
	require.Zero(t, out.Len())

	c.SetVerbose(true)
	loud, err := c.Run(context.Background(), body)
	require.NoError(t, err)
	require.Contains(t, out.String(), "running query:")
	require.Contains(t, out.String(), "Response: "+response)

	if diff := cmp.Diff(quiet, loud); diff != "" {
		t.Fatalf("verbose changed the result (-quiet +loud):\n%s", diff)
	}
}

func TestCloneVerboseIsIndependent(t *testing.T) {
	c, err := New("127.0.0.1:1", WithVerbose(true))
	require.NoError(t, err)

	clone := c.Clone()
	require.True(t, clone.Verbose())

	clone.SetVerbose(false)
	require.True(t, c.Verbose())
	require.False(t, clone.Verbose())
	require.Equal(t, c.Endpoint(), clone.Endpoint())
}

func TestRunTimeout(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := c.Run(context.Background(), QueryBody{Query: "{ status }"})
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr), "got %T: %v", err, err)
}

func TestPrometheusMetrics(t *testing.T) {
	m := PrometheusMetrics("client_test", "chain_id", "test-chain")
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":{}}`)
	}, WithMetrics(m))

	require.NotPanics(t, func() {
		_, err := c.Run(context.Background(), QueryBody{OperationName: "Status", Query: "{ status }"})
		require.NoError(t, err)
	})
}
