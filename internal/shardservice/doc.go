// Package shardservice exposes one shardgraph.Shard over the
// query-string-encoded HTTP contract of §6.1, the wire format a
// proxy.RemoteProxy speaks against.
//
// # Endpoints
//
//	create-graph-shard                              → [edgeCount, centerNodeId]
//	nodes                                           → [nodeId, ...]
//	edges                                           → [[u,v], ...]
//	most-distant-internal-nodes                     → [[nodeId, d²], ...]
//	add-edge-external                               → status string
//	bfs-trees-with-remote-nodes                     → [internal, frontier]
//	bfs-trees-with-remote-nodes-from-center-node    → [internal, frontier]
//	center-node                                     → {"centerNode": id}  (supplementary)
//	health                                          → {"status":"ok",...} (supplementary)
//
// Every handler maps a dbfserr.Error to the status code named in §7 and
// responds with wire.ErrorResponse; no exception trace ever reaches the
// client.
package shardservice
