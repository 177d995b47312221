package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horizonx-sampler/internal/domain"
	"horizonx-sampler/internal/logger"
)

func startHub(t *testing.T, secret string, origins ...string) (*Hub, *httptest.Server) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(logger.Discard())
	go hub.Run(ctx)

	srv := httptest.NewServer(NewHandler(hub, logger.Discard(), secret, origins))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestHub_BroadcastsSnapshots(t *testing.T) {
	hub, srv := startHub(t, "")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	s := domain.Snapshot{CPU: domain.CPUStats{Idle: 42}, Disk: []domain.DiskStats{{DeviceName: "sda"}}}
	require.NoError(t, hub.Write(context.Background(), s))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev struct {
		Event string          `json:"event"`
		Data  domain.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, EventSnapshot, ev.Event)
	assert.Equal(t, uint64(42), ev.Data.CPU.Idle)
	assert.Equal(t, "sda", ev.Data.Disk[0].DeviceName)
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub, srv := startHub(t, "")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHub_WriteWithoutClients(t *testing.T) {
	hub := NewHub(logger.Discard())
	assert.NoError(t, hub.Write(context.Background(), domain.Snapshot{}))
}

func TestHandler_Origin(t *testing.T) {
	_, srv := startHub(t, "", "https://dash.example.com")

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "https://dash.example.com")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)
	conn.Close()

	// the dashboard served from this host needs no allowlist entry
	header.Set("Origin", srv.URL)
	conn, _, err = websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)
	conn.Close()
}

func TestHandler_Token(t *testing.T) {
	_, srv := startHub(t, "s3cret")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := domain.IssueToken("dashboard", "s3cret", time.Minute)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?token="+token, nil)
	require.NoError(t, err)
	conn.Close()

	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, _, err = websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)
	conn.Close()
}
