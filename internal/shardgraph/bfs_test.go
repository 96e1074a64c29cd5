package shardgraph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBFSNoMirrorInInternalReached(t *testing.T) {
	s := NewShard(0, 20, 0.3, rand.New(rand.NewSource(10)))
	require.NoError(t, s.AddExternalEdge(0, 0.1, 0.1, 1, 5, 1))

	res, err := s.BFSTreesWithRemoteNodes(map[int]struct{}{0: {}})
	require.NoError(t, err)

	mirrorID := 20 // first id after the 20 real nodes
	_, present := res.InternalReached[mirrorID]
	assert.False(t, present)
}

func TestBFSRemoteFrontierPopulated(t *testing.T) {
	s := NewShard(0, 20, 0.3, rand.New(rand.NewSource(11)))
	require.NoError(t, s.AddExternalEdge(5, 0.5, 0.5, 2, 7, 1))

	res, err := s.BFSTreesWithRemoteNodes(map[int]struct{}{5: {}})
	require.NoError(t, err)

	bucket, ok := res.Remote[2]
	require.True(t, ok)
	_, found := bucket[7]
	assert.True(t, found)
}

func TestBFSMirrorSourceIsNoOp(t *testing.T) {
	s := NewShard(0, 10, 0.3, rand.New(rand.NewSource(12)))
	require.NoError(t, s.AddExternalEdge(0, 0.2, 0.2, 3, 9, 1))

	mirrorID := 10
	res, err := s.BFSTreesWithRemoteNodes(map[int]struct{}{mirrorID: {}})
	require.NoError(t, err)

	assert.Empty(t, res.InternalReached)
	assert.Empty(t, res.Remote)
}

func TestBFSEveryReachedNodeClassifiedOnce(t *testing.T) {
	s := NewShard(0, 15, 0.4, rand.New(rand.NewSource(13)))
	require.NoError(t, s.AddExternalEdge(1, 0, 0, 4, 1, 1))
	require.NoError(t, s.AddExternalEdge(2, 0, 0, 4, 2, 1))

	res, err := s.BFSTreesWithRemoteNodes(map[int]struct{}{s.CenterNode(): {}})
	require.NoError(t, err)

	// Foreign node ids name nodes on shard 4, not local ids; the local
	// stand-ins are the mirrors appended after the 15 real nodes.
	mirrorFor := map[[2]int]int{{4, 1}: 15, {4, 2}: 16}
	for shard, nodes := range res.Remote {
		for n := range nodes {
			mirror := mirrorFor[[2]int{shard, n}]
			_, alsoInternal := res.InternalReached[mirror]
			assert.False(t, alsoInternal, "mirror %d for foreign node %d on shard %d must not double-count as internal", mirror, n, shard)
		}
	}
}
