package dbfserr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ShardRequest(cause, "shard %d unreachable", 3)

	var asErr *Error
	require.True(t, errors.As(err, &asErr))
	assert.Equal(t, KindShardRequest, asErr.Kind)
	assert.True(t, errors.Is(err, cause))
}

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindConfiguration: 400,
		KindNotReady:      409,
		KindNotFound:      404,
		KindShardRequest:  502,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.HTTPStatus())
	}
}

func TestErrorMessage(t *testing.T) {
	err := Configuration("shards=%d is not a perfect square", 3)
	assert.Contains(t, err.Error(), "ConfigurationError")
	assert.Contains(t, err.Error(), "not a perfect square")
}
