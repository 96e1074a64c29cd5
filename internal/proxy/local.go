package proxy

import (
	"context"

	"github.com/dreamware/dbfs/internal/shardgraph"
)

// LocalProxy holds a direct handle to an in-process shard. Every operation
// is a synchronous method call with no serialization.
type LocalProxy struct {
	shard *shardgraph.Shard
}

// NewLocalProxy wraps shard for in-process use by the coordinator.
func NewLocalProxy(shard *shardgraph.Shard) *LocalProxy {
	return &LocalProxy{shard: shard}
}

var _ ShardProxy = (*LocalProxy)(nil)

func (p *LocalProxy) CenterNode(ctx context.Context) (int, error) {
	return p.shard.CenterNode(), nil
}

func (p *LocalProxy) MostDistantInternalNodes(ctx context.Context, n int) ([]FarNode, error) {
	far, err := p.shard.MostDistantInternalNodes(n)
	if err != nil {
		return nil, err
	}
	out := make([]FarNode, len(far))
	for i, f := range far {
		out[i] = FarNode{NodeID: f.NodeID, SquaredDist: f.SquaredDist}
	}
	return out, nil
}

func (p *LocalProxy) AddExternalEdge(ctx context.Context, ni int, x, y float64, foreignShard, foreignNodeID int, distanceHint float64) error {
	return p.shard.AddExternalEdge(ni, x, y, foreignShard, foreignNodeID, distanceHint)
}

func (p *LocalProxy) BFSTreesWithRemoteNodes(ctx context.Context, sources map[int]struct{}) (shardgraph.BFSResult, error) {
	return p.shard.BFSTreesWithRemoteNodes(sources)
}
