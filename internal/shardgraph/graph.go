package shardgraph

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/dreamware/dbfs/internal/dbfserr"
)

// RemoteDescriptor names the real node on another shard that a mirror node
// stands in for. DistanceHint carries whatever weight the topology wiring
// assigned the external edge; the coordinator never reads it, only the
// wiring step and inspection tooling do.
type RemoteDescriptor struct {
	ForeignShard   int
	ForeignNodeID  int
	DistanceHint   float64
}

// Node is one vertex of a shard's local graph. A Node with a non-nil
// Remote is a mirror node: it carries exactly one incident edge (the
// external edge) and is never returned in a BFS's internal reach.
type Node struct {
	ID     int
	X, Y   float64
	Remote *RemoteDescriptor
}

// IsMirror reports whether n stands in for a real node on another shard.
func (n Node) IsMirror() bool { return n.Remote != nil }

// Edge is an undirected, unweighted connection between two local node ids.
// It is internal if both endpoints are real nodes, external if one
// endpoint is a mirror.
type Edge struct {
	U, V int
}

// farNode pairs a node id with its squared distance from the shard's
// geometric center, the unit the topology wiring and §8 property 7 reason
// about.
type farNode struct {
	NodeID       int
	SquaredDist  float64
}

// Shard owns one partition of the global graph: its nodes, its adjacency,
// and the geometric bookkeeping (center, far nodes) topology wiring needs.
// Once constructed and wired, a Shard is read-only for the lifetime of the
// process except for the append-only growth of mirror nodes during wiring
// itself.
type Shard struct {
	mu adjacencyGuard

	guid       int
	nodes      []Node
	adjacency  [][]int
	centerNode int
	realCount  int // number of non-mirror nodes, fixed after construction
}

// adjacencyGuard is a thin alias so the doc comment on the zero value
// (ready to use, like sync.RWMutex) is visible on the Shard type itself.
type adjacencyGuard = sync.RWMutex

// NewShard builds a shard with the given id and n real nodes placed at
// uniform-random positions in the unit square, then connects each pair of
// nodes independently with probability edgeProb. This replaces the
// distilled source's random-geometric-graph generator (out of scope, §1):
// any generator satisfying the node/edge model is sufficient, and a
// uniform Erdos-Renyi graph is the simplest one that reliably produces a
// connected component for the property tests in §8.
func NewShard(guid, n int, edgeProb float64, rng *rand.Rand) *Shard {
	if rng == nil {
		rng = rand.New(rand.NewSource(int64(guid) + 1))
	}
	s := &Shard{
		guid:      guid,
		nodes:     make([]Node, n),
		adjacency: make([][]int, n),
		realCount: n,
	}
	for i := 0; i < n; i++ {
		s.nodes[i] = Node{ID: i, X: rng.Float64(), Y: rng.Float64()}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() < edgeProb {
				s.connect(i, j)
			}
		}
	}
	s.centerNode = s.computeCenterNode()
	return s
}

// FromSnapshot reconstructs a Shard from a previously captured snapshot of
// its nodes and adjacency, without re-running construction. It backs the
// third-party-backend proxy variant (§4.2): fetch a subgraph snapshot from
// an external store, rebuild it in-process, and run the same BFS the
// in-process shard uses.
func FromSnapshot(guid int, nodes []Node, adjacency [][]int, realCount, centerNode int) *Shard {
	return &Shard{
		guid:       guid,
		nodes:      nodes,
		adjacency:  adjacency,
		realCount:  realCount,
		centerNode: centerNode,
	}
}

func (s *Shard) connect(u, v int) {
	s.adjacency[u] = append(s.adjacency[u], v)
	s.adjacency[v] = append(s.adjacency[v], u)
}

// computeCenterNode returns the real node closest to (0.5, 0.5), ties
// broken by lowest node id. Called once at construction; the result is
// cached for the shard's lifetime (§3 invariant: centerNode is stable).
func (s *Shard) computeCenterNode() int {
	best := 0
	bestDist := squaredDist(s.nodes[0], 0.5, 0.5)
	for i := 1; i < s.realCount; i++ {
		d := squaredDist(s.nodes[i], 0.5, 0.5)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func squaredDist(n Node, cx, cy float64) float64 {
	dx, dy := n.X-cx, n.Y-cy
	return dx*dx + dy*dy
}

// GUID returns the shard's fleet-wide identity.
func (s *Shard) GUID() int { return s.guid }

// CenterNode returns the shard's canonical BFS entry point, the real node
// closest to the geometric center.
func (s *Shard) CenterNode() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.centerNode
}

// Nodes returns every node id currently on the shard, including mirror
// nodes added by AddExternalEdge, supporting the supplementary `nodes`
// listing endpoint (§6.1). This matches the ground-truth original, whose
// add_edge_external inserts the mirror directly into the same graph
// object its nodes() listing walks — so a mirror id returned by `edges`
// always also appears in `nodes`.
func (s *Shard) Nodes() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.ID
	}
	return out
}

// Edges returns every local edge as (u, v) pairs with u < v, supporting
// the supplementary `edges` listing endpoint (§6.1). External edges
// (incident on a mirror node) are included too, named by the mirror's id.
func (s *Shard) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Edge
	for u, neighbors := range s.adjacency {
		for _, v := range neighbors {
			if u < v {
				out = append(out, Edge{U: u, V: v})
			}
		}
	}
	return out
}

// MostDistantInternalNodes returns the n real nodes with the largest
// squared distance from the geometric center, sorted ascending by squared
// distance (farthest last), ties broken by node id. Only real nodes are
// eligible. Used only during topology construction (§4.4) and exposed for
// inspection via the shard HTTP surface (§6.1).
func (s *Shard) MostDistantInternalNodes(n int) ([]struct {
	NodeID      int
	SquaredDist float64
}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > s.realCount {
		return nil, dbfserr.Configuration("requested %d far nodes but shard %d only has %d real nodes", n, s.guid, s.realCount)
	}
	all := make([]farNode, s.realCount)
	for i := 0; i < s.realCount; i++ {
		all[i] = farNode{NodeID: i, SquaredDist: squaredDist(s.nodes[i], 0.5, 0.5)}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].SquaredDist != all[j].SquaredDist {
			return all[i].SquaredDist < all[j].SquaredDist
		}
		return all[i].NodeID < all[j].NodeID
	})
	tail := all[len(all)-n:]
	out := make([]struct {
		NodeID      int
		SquaredDist float64
	}, n)
	for i, f := range tail {
		out[i] = struct {
			NodeID      int
			SquaredDist float64
		}{NodeID: f.NodeID, SquaredDist: f.SquaredDist}
	}
	return out, nil
}

// AddExternalEdge appends a new mirror node whose id is the next unused
// integer, pointing at (foreignShard, foreignNodeID) with the given
// distance hint and position, and connects it to ni with an internal
// edge. Fails with a NotFoundError if ni does not name a real node on
// this shard.
func (s *Shard) AddExternalEdge(ni int, x, y float64, foreignShard, foreignNodeID int, distanceHint float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ni < 0 || ni >= s.realCount {
		return dbfserr.NotFound("shard %d has no real node %d", s.guid, ni)
	}
	mirrorID := len(s.nodes)
	s.nodes = append(s.nodes, Node{
		ID: mirrorID,
		X:  x, Y: y,
		Remote: &RemoteDescriptor{
			ForeignShard:  foreignShard,
			ForeignNodeID: foreignNodeID,
			DistanceHint:  distanceHint,
		},
	})
	s.adjacency = append(s.adjacency, nil)
	s.connect(ni, mirrorID)
	return nil
}

// isMirror reports whether id names a mirror node, used by BFS
// classification without re-acquiring the lock (caller already holds it).
func (s *Shard) isMirror(id int) bool {
	return s.nodes[id].Remote != nil
}
