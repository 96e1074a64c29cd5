package coordinator

import (
	"context"
	"math/rand"

	"github.com/dreamware/dbfs/internal/proxy"
	"github.com/dreamware/dbfs/internal/shardgraph"
)

// mirrorPosition and mirrorDistanceHint are the constants the distilled
// source used for every mirror node's position and distance hint during
// topology wiring: neither is read by the coordinator, only carried
// through for a deployed shard's inspection endpoints.
const (
	mirrorPosition     = 1.0
	mirrorDistanceHint = 1.0
)

// wireTopology connects every toroidal neighbor pair of an in-process
// fleet with farNodes/2 mirror-edge pairs (§4.4), mutating each shard
// directly since CreateShards already holds the write path.
func wireTopology(shards []*shardgraph.Shard, farNodes int, rng *rand.Rand) error {
	side := squareSide(len(shards))
	farIDs := make([][]int, len(shards))
	for i, s := range shards {
		far, err := s.MostDistantInternalNodes(farNodes)
		if err != nil {
			return err
		}
		ids := make([]int, len(far))
		for k, f := range far {
			ids[k] = f.NodeID
		}
		farIDs[i] = ids
	}

	for _, pair := range neighborPairs(len(shards), side) {
		p, q := pair[0], pair[1]
		sampled, err := samplePairsWithoutReplacement(farIDs[p], farIDs[q], farNodes/2, rng.Intn)
		if err != nil {
			return err
		}
		for _, pq := range sampled {
			n0, n1 := pq[0], pq[1]
			if err := shards[p].AddExternalEdge(n0, mirrorPosition, mirrorPosition, q, n1, mirrorDistanceHint); err != nil {
				return err
			}
			if err := shards[q].AddExternalEdge(n1, mirrorPosition, mirrorPosition, p, n0, mirrorDistanceHint); err != nil {
				return err
			}
		}
	}
	return nil
}

// wireRemoteTopology is wireTopology's remote-fleet counterpart: the same
// neighbor pairing and sampling, but far nodes and external edges travel
// over the wire via each shard's RemoteProxy.
func wireRemoteTopology(ctx context.Context, proxies []proxy.ShardProxy, farNodes int, rng *rand.Rand) error {
	side := squareSide(len(proxies))
	farIDs := make([][]int, len(proxies))
	for i, p := range proxies {
		far, err := p.MostDistantInternalNodes(ctx, farNodes)
		if err != nil {
			return err
		}
		ids := make([]int, len(far))
		for k, f := range far {
			ids[k] = f.NodeID
		}
		farIDs[i] = ids
	}

	for _, pair := range neighborPairs(len(proxies), side) {
		p, q := pair[0], pair[1]
		sampled, err := samplePairsWithoutReplacement(farIDs[p], farIDs[q], farNodes/2, rng.Intn)
		if err != nil {
			return err
		}
		for _, pq := range sampled {
			n0, n1 := pq[0], pq[1]
			if err := proxies[p].AddExternalEdge(ctx, n0, mirrorPosition, mirrorPosition, q, n1, mirrorDistanceHint); err != nil {
				return err
			}
			if err := proxies[q].AddExternalEdge(ctx, n1, mirrorPosition, mirrorPosition, p, n0, mirrorDistanceHint); err != nil {
				return err
			}
		}
	}
	return nil
}
