package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dreamware/dbfs/internal/dbfserr"
	"github.com/dreamware/dbfs/internal/shardgraph"
	"github.com/dreamware/dbfs/internal/wire"
)

// httpClient is shared across every RemoteProxy the process creates,
// following the reference cluster's one-client-per-process convention
// rather than allocating a transport per call.
var httpClient = &http.Client{Timeout: 5 * time.Second}

// RemoteProxy holds the (host, port) of a shard service and speaks the
// query-string-encoded HTTP contract of §6.1. It caches CenterNode and
// MostDistantInternalNodes after their first successful retrieval, since
// both are immutable once topology wiring completes and re-fetching them
// on every wiring step would be a wasted round trip.
type RemoteProxy struct {
	baseURL string
	shardID int

	mu           sync.Mutex
	centerCached bool
	center       int
	farCached    bool
	farHowMany   int
	far          []FarNode
}

// NewRemoteProxy builds a proxy against a shard service at baseURL
// (e.g. "http://10.0.0.5:5001") for the named shard id.
func NewRemoteProxy(baseURL string, shardID int) *RemoteProxy {
	return &RemoteProxy{baseURL: strings.TrimRight(baseURL, "/"), shardID: shardID}
}

var _ ShardProxy = (*RemoteProxy)(nil)

func (p *RemoteProxy) get(ctx context.Context, path string, query url.Values, out any) error {
	query.Set("id", strconv.Itoa(p.shardID))
	u := fmt.Sprintf("%s/%s?%s", p.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return dbfserr.ShardRequest(err, "building request to shard %d", p.shardID)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return dbfserr.ShardRequest(err, "calling shard %d at %s", p.shardID, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var errBody wire.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return dbfserr.ShardRequest(fmt.Errorf("status %d: %s", resp.StatusCode, errBody.Error), "shard %d rejected %s", p.shardID, path)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dbfserr.ShardRequest(err, "decoding response from shard %d", p.shardID)
	}
	return nil
}

func (p *RemoteProxy) CenterNode(ctx context.Context) (int, error) {
	p.mu.Lock()
	if p.centerCached {
		defer p.mu.Unlock()
		return p.center, nil
	}
	p.mu.Unlock()

	var centerResp struct {
		CenterNode int `json:"centerNode"`
	}
	if err := p.get(ctx, "center-node", url.Values{}, &centerResp); err != nil {
		return 0, err
	}

	p.mu.Lock()
	p.center, p.centerCached = centerResp.CenterNode, true
	p.mu.Unlock()
	return centerResp.CenterNode, nil
}

func (p *RemoteProxy) MostDistantInternalNodes(ctx context.Context, n int) ([]FarNode, error) {
	p.mu.Lock()
	if p.farCached && p.farHowMany == n {
		defer p.mu.Unlock()
		return p.far, nil
	}
	p.mu.Unlock()

	q := url.Values{}
	q.Set("how-many", strconv.Itoa(n))
	var entries []wire.FarNodeEntry
	if err := p.get(ctx, "most-distant-internal-nodes", q, &entries); err != nil {
		return nil, err
	}
	out := make([]FarNode, len(entries))
	for i, e := range entries {
		out[i] = FarNode{NodeID: e.NodeID(), SquaredDist: e.SquaredDist()}
	}

	p.mu.Lock()
	p.far, p.farHowMany, p.farCached = out, n, true
	p.mu.Unlock()
	return out, nil
}

func (p *RemoteProxy) AddExternalEdge(ctx context.Context, ni int, x, y float64, foreignShard, foreignNodeID int, distanceHint float64) error {
	info := fmt.Sprintf("%d,%d,%g,%g,%d,%g", ni, foreignNodeID, x, y, foreignShard, distanceHint)
	q := url.Values{}
	q.Set("info", info)
	var status string
	return p.get(ctx, "add-edge-external", q, &status)
}

func (p *RemoteProxy) BFSTreesWithRemoteNodes(ctx context.Context, sources map[int]struct{}) (shardgraph.BFSResult, error) {
	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, strconv.Itoa(id))
	}
	q := url.Values{}
	q.Set("sources", strings.Join(ids, ","))

	var resp wire.BFSResponse
	if err := p.get(ctx, "bfs-trees-with-remote-nodes", q, &resp); err != nil {
		return shardgraph.BFSResult{}, err
	}

	result := shardgraph.BFSResult{
		InternalReached: make(map[int]struct{}, len(resp.Internal)),
		Remote:          make(shardgraph.RemoteFrontier, len(resp.Frontier)),
	}
	for _, id := range resp.Internal {
		result.InternalReached[id] = struct{}{}
	}
	for _, pair := range resp.Frontier {
		bucket := make(map[int]struct{}, len(pair.Nodes))
		for _, n := range pair.Nodes {
			bucket[n] = struct{}{}
		}
		result.Remote[pair.ForeignShard] = bucket
	}
	return result, nil
}
