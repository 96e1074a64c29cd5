package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBFSResponseRoundTrip(t *testing.T) {
	resp := BFSResponse{
		Internal: []int{1, 2, 3},
		Frontier: []FrontierPair{
			{ForeignShard: 2, Nodes: []int{7, 8}},
			{ForeignShard: 5, Nodes: []int{9}},
		},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded BFSResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, resp, decoded)
}

func TestBFSResponseEmptyFrontierRoundTrip(t *testing.T) {
	resp := BFSResponse{Internal: []int{1}}
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded BFSResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []int{1}, decoded.Internal)
	assert.Empty(t, decoded.Frontier)
}

func TestFarNodeEntry(t *testing.T) {
	e := NewFarNodeEntry(42, 0.37)
	assert.Equal(t, 42, e.NodeID())
	assert.InDelta(t, 0.37, e.SquaredDist(), 1e-9)
}
