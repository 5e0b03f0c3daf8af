package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsURL(httpURL, path string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + path
}

func serveStream(t *testing.T, upstreamURL string) *httptest.Server {
	t.Helper()
	router := gin.New()
	router.GET("/ws/orders", NewOrderStream(upstreamURL, "stream-test").Handle)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestOrderStream_IdleWithoutUpstream(t *testing.T) {
	srv := serveStream(t, "")

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, "/ws/orders"), nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	// nothing is pushed to an idle client
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	var netErr interface{ Timeout() bool }
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestOrderStream_UnreachableUpstreamFallsBackToIdle(t *testing.T) {
	srv := serveStream(t, "ws://127.0.0.1:1/ws/orders")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, "/ws/orders"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
}

func TestOrderStream_RelaysUpstream(t *testing.T) {
	frame := `{"type":"new_order","data":{"id":"o1","store_id":"s1"}}`

	upstreamUpgrader := websocket.Upgrader{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upstreamUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(frame))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(upstream.Close)

	srv := serveStream(t, wsURL(upstream.URL, "/ws/orders"))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, "/ws/orders"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	messageType, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, messageType)
	assert.JSONEq(t, frame, string(payload))
}
