// Package wire defines the JSON shapes exchanged over the shard HTTP
// contract (§6.1), shared by the shard service (which encodes them) and
// the remote shard proxy (which decodes them), so the two sides cannot
// drift apart.
package wire

import "encoding/json"

// CreateShardResponse is the output of create-graph-shard: `[edgeCount, centerNodeId]`.
type CreateShardResponse [2]int

// FarNodeEntry is one element of most-distant-internal-nodes' response:
// `[nodeId, d²]`.
type FarNodeEntry [2]float64

// NodeID returns the integer node id component of the entry.
func (e FarNodeEntry) NodeID() int { return int(e[0]) }

// SquaredDist returns the squared-distance component of the entry.
func (e FarNodeEntry) SquaredDist() float64 { return e[1] }

// NewFarNodeEntry builds a wire entry from a node id and squared distance.
func NewFarNodeEntry(nodeID int, squaredDist float64) FarNodeEntry {
	return FarNodeEntry{float64(nodeID), squaredDist}
}

// FrontierPair is one element of the remote frontier: `[foreignShard, [foreignNodeIds]]`.
type FrontierPair struct {
	ForeignShard int
	Nodes        []int
}

func (p *FrontierPair) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &p.ForeignShard); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &p.Nodes)
}

func (p FrontierPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.ForeignShard, p.Nodes})
}

// BFSResponse is the output of bfs-trees-with-remote-nodes:
// `[internalReachedList, [[foreignShard, [foreignNodeIds]], ...]]`.
type BFSResponse struct {
	Internal []int
	Frontier []FrontierPair
}

func (r *BFSResponse) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &r.Internal); err != nil {
		return err
	}
	if r.Internal == nil {
		r.Internal = []int{}
	}
	if err := json.Unmarshal(raw[1], &r.Frontier); err != nil {
		return err
	}
	return nil
}

func (r BFSResponse) MarshalJSON() ([]byte, error) {
	frontier := r.Frontier
	if frontier == nil {
		frontier = []FrontierPair{}
	}
	internal := r.Internal
	if internal == nil {
		internal = []int{}
	}
	return json.Marshal([2]any{internal, frontier})
}

// ErrorResponse is the body every failed handler in §7 returns.
type ErrorResponse struct {
	Error string `json:"error"`
}
