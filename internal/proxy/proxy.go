package proxy

import (
	"context"

	"github.com/dreamware/dbfs/internal/shardgraph"
)

// FarNode pairs a node id with its squared distance from the shard's
// geometric center, mirroring shardgraph's internal representation across
// the proxy boundary.
type FarNode struct {
	NodeID      int
	SquaredDist float64
}

// ShardProxy is the contract the coordinator drives, uniform across the
// local, remote, and snapshot-backed implementations (§4.2).
type ShardProxy interface {
	// CenterNode returns the shard's canonical BFS entry point.
	CenterNode(ctx context.Context) (int, error)
	// MostDistantInternalNodes returns the n real nodes farthest from the
	// shard's geometric center, ascending by squared distance.
	MostDistantInternalNodes(ctx context.Context, n int) ([]FarNode, error)
	// AddExternalEdge wires a mirror node standing in for
	// (foreignShard, foreignNodeID) onto local node ni.
	AddExternalEdge(ctx context.Context, ni int, x, y float64, foreignShard, foreignNodeID int, distanceHint float64) error
	// BFSTreesWithRemoteNodes runs the shard's local multi-source BFS and
	// returns the internal reach plus the remote frontier grouped by
	// foreign shard.
	BFSTreesWithRemoteNodes(ctx context.Context, sources map[int]struct{}) (shardgraph.BFSResult, error)
}
