// Package proxy implements the uniform client handle the coordinator
// drives: ShardProxy exposes the same operations as a shardgraph.Shard,
// regardless of whether the shard lives in-process, behind an HTTP
// endpoint, or behind a third-party backend reached through a subgraph
// snapshot.
//
// # Variants
//
//	LocalProxy    — direct method calls onto an in-process *shardgraph.Shard
//	RemoteProxy   — HTTP requests against the shard service (§6.1)
//	SnapshotProxy — fetches a subgraph snapshot, rebuilds it, runs local BFS
//
// All three satisfy ShardProxy and are interchangeable from the
// coordinator's perspective: the coordinator is wired to the interface
// only, which is what makes benchmarking heterogeneous backends with one
// coordinator possible.
package proxy
