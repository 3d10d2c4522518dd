package mockexplorer

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func post(t *testing.T, url string, req Request) map[string]interface{} {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(url+GraphQLPath, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServerConsumesCallsInOrder(t *testing.T) {
	s := Start(t)
	s.On("Settings").Respond(Data(`{"n":1}`))
	s.On("Settings").Respond(Data(`{"n":2}`))

	first := post(t, s.URL(), Request{OperationName: "Settings"})
	second := post(t, s.URL(), Request{OperationName: "Settings"})
	third := post(t, s.URL(), Request{OperationName: "Settings"})

	require.Equal(t, map[string]interface{}{"n": float64(1)}, first["data"])
	require.Equal(t, map[string]interface{}{"n": float64(2)}, second["data"])
	require.Nil(t, third["data"])
	require.NotEmpty(t, third["errors"])
	require.Len(t, s.Requests(), 3)
}

func TestServerProbe(t *testing.T) {
	s := Start(t)

	resp, err := http.Head(s.URL() + "/")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, s.Probes())
}

func TestServeFixtures(t *testing.T) {
	s := Start(t).ServeFixtures()

	for op := range Fixtures {
		out := post(t, s.URL(), Request{OperationName: op})
		require.NotNil(t, out["data"], op)
		require.Nil(t, out["errors"], op)
	}
}

func TestExpectVariable(t *testing.T) {
	check := ExpectVariable("first", 5)
	require.NoError(t, check(Request{Variables: map[string]interface{}{"first": float64(5)}}))
	require.Error(t, check(Request{Variables: map[string]interface{}{"first": float64(6)}}))
	require.Error(t, check(Request{Variables: map[string]interface{}{}}))
}

func TestServerRoutes(t *testing.T) {
	s := Start(t)

	resp, err := http.Get(s.URL() + GraphQLPath)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(s.URL() + "/missing")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(s.URL()+GraphQLPath, "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.Empty(t, s.Requests())
	require.Zero(t, s.Probes())
}
