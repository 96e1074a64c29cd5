package shardgraph

// RemoteFrontier maps a foreign shard id to the set of foreign node ids
// discovered on it during one BFS call.
type RemoteFrontier map[int]map[int]struct{}

// BFSResult is the output of a single multi-source local BFS: the real
// nodes reached, and the remote frontier grouped by foreign shard. Every
// node touched by the traversal is accounted for in exactly one of the
// two (§4.1).
type BFSResult struct {
	InternalReached map[int]struct{}
	Remote          RemoteFrontier
}

// BFSTreesWithRemoteNodes runs a single multi-source, unweighted BFS
// seeded with sources, classifying every newly visited node by whether it
// carries a remote descriptor.
//
// A source that names a mirror node contributes nothing: this module
// resolves the open question in the distilled source (§9) by treating
// mirror sources as no-op rather than resolving them to their foreign
// shard, matching the documented option (a).
func (s *Shard) BFSTreesWithRemoteNodes(sources map[int]struct{}) (BFSResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := BFSResult{
		InternalReached: make(map[int]struct{}),
		Remote:          make(RemoteFrontier),
	}

	visited := make(map[int]bool, len(s.nodes))
	queue := make([]int, 0, len(sources))
	for src := range sources {
		if src < 0 || src >= len(s.nodes) {
			continue
		}
		if s.isMirror(src) {
			// Open question resolved as option (a): no-op source.
			continue
		}
		if visited[src] {
			continue
		}
		visited[src] = true
		queue = append(queue, src)
		result.InternalReached[src] = struct{}{}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range s.adjacency[id] {
			if visited[next] {
				continue
			}
			visited[next] = true
			if s.isMirror(next) {
				desc := s.nodes[next].Remote
				bucket, ok := result.Remote[desc.ForeignShard]
				if !ok {
					bucket = make(map[int]struct{})
					result.Remote[desc.ForeignShard] = bucket
				}
				bucket[desc.ForeignNodeID] = struct{}{}
				// Mirror nodes have exactly one incident edge (§3), so
				// there is nothing further to expand from here; the
				// mirror is not enqueued.
				continue
			}
			result.InternalReached[next] = struct{}{}
			queue = append(queue, next)
		}
	}

	return result, nil
}

// BFSTreesWithRemoteNodesFromCenter is a convenience wrapper seeding the
// traversal with only the shard's center node, matching the
// bfs-trees-with-remote-nodes-from-center-node endpoint (§6.1).
func (s *Shard) BFSTreesWithRemoteNodesFromCenter() (BFSResult, error) {
	center := s.CenterNode()
	return s.BFSTreesWithRemoteNodes(map[int]struct{}{center: {}})
}
