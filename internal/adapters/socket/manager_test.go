package socket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

// wsServer runs handler for every websocket connection and counts dials.
type wsServer struct {
	*httptest.Server
	dials atomic.Int64
}

func newWSServer(t *testing.T, handler func(dial int64, conn *websocket.Conn, r *http.Request)) *wsServer {
	t.Helper()
	server := &wsServer{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		handler(server.dials.Add(1), conn, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func holdOpen(dial int64, conn *websocket.Conn, r *http.Request) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestOpenDialsRoomEndpointWithClientKey(t *testing.T) {
	requests := make(chan *http.Request, 1)
	server := newWSServer(t, func(dial int64, conn *websocket.Conn, r *http.Request) {
		requests <- r
		holdOpen(dial, conn, r)
	})

	manager := NewManager(Config{BaseURL: server.URL})
	require.NoError(t, manager.Open(context.Background(), "room-9"))
	defer manager.Close()

	select {
	case r := <-requests:
		assert.Equal(t, "/ws/room-9", r.URL.Path)
		assert.Equal(t, manager.ClientKey(), r.URL.Query().Get("_pk"))
		assert.NotEmpty(t, manager.ClientKey())
	case <-time.After(time.Second):
		t.Fatal("no upgrade request arrived")
	}
	assert.True(t, manager.IsConnected())
}

func TestEndpointURLSchemes(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://game.example", "ws://game.example/ws/r1?_pk=k"},
		{"https://game.example", "wss://game.example/ws/r1?_pk=k"},
		{"https://game.example/app", "wss://game.example/app/ws/r1?_pk=k"},
	}
	for _, tt := range tests {
		got, err := endpointURL(tt.base, "r1", "k")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := endpointURL("ftp://game.example", "r1", "k")
	require.Error(t, err)
}

func TestInboundFramesReachHandlerInOrder(t *testing.T) {
	server := newWSServer(t, func(dial int64, conn *websocket.Conn, r *http.Request) {
		conn.WriteMessage(websocket.TextMessage, []byte("one"))
		conn.WriteMessage(websocket.TextMessage, []byte("two"))
		holdOpen(dial, conn, r)
	})

	frames := make(chan string, 2)
	manager := NewManager(Config{
		BaseURL: server.URL,
		Handler: func(data []byte) { frames <- string(data) },
	})
	require.NoError(t, manager.Open(context.Background(), "room-9"))
	defer manager.Close()

	assert.Equal(t, "one", <-frames)
	assert.Equal(t, "two", <-frames)
}

func TestKeepaliveSendsTextPing(t *testing.T) {
	pings := make(chan string, 1)
	server := newWSServer(t, func(dial int64, conn *websocket.Conn, r *http.Request) {
		_, data, err := conn.ReadMessage()
		if err == nil {
			pings <- string(data)
		}
		holdOpen(dial, conn, r)
	})

	manager := NewManager(Config{BaseURL: server.URL, PingInterval: 20 * time.Millisecond})
	require.NoError(t, manager.Open(context.Background(), "room-9"))
	defer manager.Close()

	select {
	case ping := <-pings:
		assert.Equal(t, "ping", ping)
	case <-time.After(time.Second):
		t.Fatal("no keepalive arrived")
	}
}

func TestNormalClosureDoesNotRedial(t *testing.T) {
	server := newWSServer(t, func(dial int64, conn *websocket.Conn, r *http.Request) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
			time.Now().Add(time.Second))
		conn.Close()
	})

	manager := NewManager(Config{BaseURL: server.URL, ReconnectDelay: 20 * time.Millisecond})
	require.NoError(t, manager.Open(context.Background(), "room-9"))
	defer manager.Close()

	require.Eventually(t, func() bool { return !manager.IsConnected() }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), server.dials.Load())
}

func TestAbnormalClosureRedialsAfterDelay(t *testing.T) {
	server := newWSServer(t, func(dial int64, conn *websocket.Conn, r *http.Request) {
		if dial == 1 {
			// Drop the TCP connection without a close handshake.
			conn.UnderlyingConn().Close()
			return
		}
		holdOpen(dial, conn, r)
	})

	manager := NewManager(Config{BaseURL: server.URL, ReconnectDelay: 20 * time.Millisecond})
	require.NoError(t, manager.Open(context.Background(), "room-9"))
	defer manager.Close()

	require.Eventually(t, func() bool { return server.dials.Load() == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return manager.IsConnected() }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(2), server.dials.Load(), "one unexpected close schedules one redial")
}

func TestCloseSuppressesPendingRedial(t *testing.T) {
	server := newWSServer(t, func(dial int64, conn *websocket.Conn, r *http.Request) {
		if dial == 1 {
			conn.UnderlyingConn().Close()
			return
		}
		holdOpen(dial, conn, r)
	})

	manager := NewManager(Config{BaseURL: server.URL, ReconnectDelay: 50 * time.Millisecond})
	require.NoError(t, manager.Open(context.Background(), "room-9"))

	require.Eventually(t, func() bool { return !manager.IsConnected() }, time.Second, 5*time.Millisecond)
	require.NoError(t, manager.Close())

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int64(1), server.dials.Load())
}

func TestCloseIsIdempotent(t *testing.T) {
	server := newWSServer(t, holdOpen)

	manager := NewManager(Config{BaseURL: server.URL})
	require.NoError(t, manager.Open(context.Background(), "room-9"))

	require.NoError(t, manager.Close())
	require.NoError(t, manager.Close())
	assert.False(t, manager.IsConnected())
}

func TestReopenReplacesConnection(t *testing.T) {
	server := newWSServer(t, holdOpen)

	manager := NewManager(Config{BaseURL: server.URL})
	require.NoError(t, manager.Open(context.Background(), "room-9"))
	require.NoError(t, manager.Open(context.Background(), "room-9"))
	defer manager.Close()

	require.Eventually(t, func() bool { return server.dials.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(2), server.dials.Load())
	assert.True(t, manager.IsConnected())
}
