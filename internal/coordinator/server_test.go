package coordinator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoordinatorServer(t *testing.T) *httptest.Server {
	c := New(10000, nil)
	srv := NewServer(c, nil)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func getQ(t *testing.T, ts *httptest.Server, path string, q url.Values) *http.Response {
	resp, err := http.Get(ts.URL + "/" + path + "?" + q.Encode())
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHTTPCreateShardsThenDoDBFS(t *testing.T) {
	ts := newTestCoordinatorServer(t)

	resp := getQ(t, ts, "create-shards", url.Values{
		"shards": {"4"}, "nodes": {"100"}, "edges": {"0.1"}, "farnodes": {"10"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = getQ(t, ts, "role", url.Values{})
	var roleBody struct {
		Role string `json:"role"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&roleBody))
	assert.Equal(t, "SERVER", roleBody.Role)

	resp = getQ(t, ts, "do-dbfs", url.Values{"shard": {"0"}, "verbose": {"false"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats struct {
		CrossCuts    int `json:"crossCuts"`
		NodesVisited int `json:"nodesVisited"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 400, stats.NodesVisited)
}

func TestHTTPCreateShardsRejectsNonSquare(t *testing.T) {
	ts := newTestCoordinatorServer(t)
	resp := getQ(t, ts, "create-shards", url.Values{
		"shards": {"3"}, "nodes": {"10"}, "edges": {"0.1"}, "farnodes": {"2"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPDoDDBFSBeforeCreationIsNotReady(t *testing.T) {
	ts := newTestCoordinatorServer(t)
	resp := getQ(t, ts, "do-ddbfs", url.Values{"shard": {"0"}, "verbose": {"false"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHTTPHealthAndMetrics(t *testing.T) {
	ts := newTestCoordinatorServer(t)

	resp := getQ(t, ts, "health", url.Values{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = getQ(t, ts, "metrics", url.Values{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = getQ(t, ts, "shard-health", url.Values{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body)
}
