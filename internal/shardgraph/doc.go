// Package shardgraph implements one partition of the global sharded graph:
// the node/edge model, the geometric bookkeeping (center node, far nodes)
// used during topology construction, and the multi-source local BFS the
// coordinator drives.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│               Shard                 │
//	├─────────────────────────────────────┤
//	│  nodes: []Node (real + mirror)      │
//	│  adjacency: [][]int                 │
//	│  centerNode: cached on construction  │
//	│  farNodes: computed on demand        │
//	├─────────────────────────────────────┤
//	│  BFSTreesWithRemoteNodes(sources)    │
//	│    → (internalReached, remote)      │
//	└─────────────────────────────────────┘
//
// A Node carries an optional RemoteDescriptor; a non-nil descriptor marks
// the node a mirror — a local stub standing in for a real node on another
// shard. Mirror nodes carry exactly one incident edge, the external edge
// that lets a traversal escape the shard.
//
// Concurrency: a Shard serializes mutation (AddExternalEdge, construction)
// against traversal (BFSTreesWithRemoteNodes) with a sync.RWMutex. Distinct
// shards carry distinct mutexes and can be driven concurrently by the
// coordinator's proxies.
package shardgraph
