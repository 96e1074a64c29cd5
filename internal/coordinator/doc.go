// Package coordinator drives the distributed BFS: it holds a fleet of
// shard proxies, wires their topology once at construction, and runs the
// insertion-ordered-queue algorithm of DBFS against whichever shard an
// operator names as the start.
//
// # Architecture
//
//	┌──────────────────────────────────────┐
//	│             Coordinator              │
//	├──────────────────────────────────────┤
//	│  role: Undecided/Server/MasterServer  │
//	│  proxies: map[shardID]ShardProxy      │
//	│  topology: neighbor pairs, far nodes  │
//	├──────────────────────────────────────┤
//	│  CreateShards / CreateRemoteShards    │
//	│    → wire topology once               │
//	│  DBFS(beginShard, beginNode)           │
//	│    → (crossCuts, nodesVisited, ...)    │
//	└──────────────────────────────────────┘
//
// A Coordinator is created once per service process and owns the fleet
// for that process's lifetime; switching role (by calling CreateShards or
// CreateRemoteShards again) discards the prior fleet and rebuilds it, the
// explicit create → wire → serve → discard lifecycle named in the design
// notes this package implements.
package coordinator
