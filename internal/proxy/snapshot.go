package proxy

import (
	"context"

	"github.com/dreamware/dbfs/internal/shardgraph"
)

// Snapshot is a point-in-time copy of a shard's nodes and adjacency, the
// unit a third-party backend hands back instead of serving BFS itself.
type Snapshot struct {
	GUID       int
	CenterNode int
	RealCount  int
	Nodes      []shardgraph.Node
	Adjacency  [][]int
}

// SubgraphSource supplies a Snapshot on demand. A real third-party-backend
// integration (neo4j, janusgraph) would implement this by querying the
// external store and translating its result into the node/edge model of
// §3; this module ships no such client (§1 Out of scope) but exercises the
// seam with an in-process source backed by a shardgraph.Shard in tests.
type SubgraphSource interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// SnapshotProxy implements the third-party-backend proxy variant (§4.2):
// it fetches a subgraph snapshot from source, rebuilds it as an in-process
// shardgraph.Shard, and runs the same local BFS the in-process shard uses,
// classifying by the same remote-descriptor rule. This is what lets the
// coordinator treat any backend uniformly.
type SnapshotProxy struct {
	source SubgraphSource
}

// NewSnapshotProxy wraps source for use as a shard proxy.
func NewSnapshotProxy(source SubgraphSource) *SnapshotProxy {
	return &SnapshotProxy{source: source}
}

var _ ShardProxy = (*SnapshotProxy)(nil)

func (p *SnapshotProxy) rebuild(ctx context.Context) (*shardgraph.Shard, error) {
	snap, err := p.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return shardgraph.FromSnapshot(snap.GUID, snap.Nodes, snap.Adjacency, snap.RealCount, snap.CenterNode), nil
}

func (p *SnapshotProxy) CenterNode(ctx context.Context) (int, error) {
	shard, err := p.rebuild(ctx)
	if err != nil {
		return 0, err
	}
	return shard.CenterNode(), nil
}

func (p *SnapshotProxy) MostDistantInternalNodes(ctx context.Context, n int) ([]FarNode, error) {
	shard, err := p.rebuild(ctx)
	if err != nil {
		return nil, err
	}
	far, err := shard.MostDistantInternalNodes(n)
	if err != nil {
		return nil, err
	}
	out := make([]FarNode, len(far))
	for i, f := range far {
		out[i] = FarNode{NodeID: f.NodeID, SquaredDist: f.SquaredDist}
	}
	return out, nil
}

// AddExternalEdge is not meaningful against a read-only snapshot source:
// topology wiring always targets the in-process or remote shard that owns
// the node, never a third-party-backend mirror of it.
func (p *SnapshotProxy) AddExternalEdge(ctx context.Context, ni int, x, y float64, foreignShard, foreignNodeID int, distanceHint float64) error {
	return errUnsupportedMutation
}

func (p *SnapshotProxy) BFSTreesWithRemoteNodes(ctx context.Context, sources map[int]struct{}) (shardgraph.BFSResult, error) {
	shard, err := p.rebuild(ctx)
	if err != nil {
		return shardgraph.BFSResult{}, err
	}
	return shard.BFSTreesWithRemoteNodes(sources)
}
