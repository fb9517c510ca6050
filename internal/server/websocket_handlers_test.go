package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"vidtube/internal/notifications"
	"vidtube/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityStream_DeliversLikeToVideoOwner(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ts := newTestServer(t, rdb)
	require.NotNil(t, ts.srv.hub)

	alice := testutil.CreateUser(t, ts.db, "alice")
	bob := testutil.CreateUser(t, ts.db, "bob")
	video := testutil.CreateVideo(t, ts.db, alice.ID, "clip", true)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, ts.srv.hub.StartWiring(ctx, ts.srv.notifier))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = ts.app.Listener(ln) }()
	t.Cleanup(func() { _ = ts.app.Shutdown() })

	header := http.Header{}
	header.Set("Authorization", "Bearer "+ts.token(t, alice))
	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/api/v1/ws", header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		return ts.srv.hub.ConnectionCount(alice.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	likeResp, _ := ts.do(t, http.MethodPost, "/api/v1/likes/toggle/v/"+itoa(video.ID), ts.token(t, bob), nil)
	require.Equal(t, http.StatusOK, likeResp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event notifications.Event
	require.NoError(t, json.Unmarshal(message, &event))
	assert.Equal(t, notifications.EventVideoLiked, event.Type)
	assert.Equal(t, bob.ID, event.ActorID)
}

func TestActivityStream_RejectsAnonymousDial(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	ts := newTestServer(t, rdb)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = ts.app.Listener(ln) }()
	t.Cleanup(func() { _ = ts.app.Shutdown() })

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/api/v1/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
