package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_AcceptsURLAndAddr(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	for _, addr := range []string{mr.Addr(), "redis://" + mr.Addr() + "/0"} {
		rdb, err := NewClient(addr)
		require.NoError(t, err)
		assert.NoError(t, rdb.Ping(context.Background()).Err())
		_ = rdb.Close()
	}
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("redis://:bad:port/x")
	assert.Error(t, err)
}

func TestInitRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	InitRedis(mr.Addr())
	require.NotNil(t, GetClient())
	_ = GetClient().Close()

	mr.Close()
	InitRedis(mr.Addr())
	assert.Nil(t, GetClient())
}
