package stream

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
)

func TestHubBroadcastsSummaries(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// registration races the broadcast; retry until the subscriber is in
	want := BatchSummary{Model: "black-scholes", Mode: "chunked", Rows: 1000, Timestamp: time.Now().UTC()}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				hub.BroadcastSummary(want)
			}
		}
	}()
	defer close(done)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got BatchSummary
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want.Model, got.Model)
	assert.Equal(t, want.Mode, got.Mode)
	assert.Equal(t, want.Rows, got.Rows)
}

func TestBroadcastSummaryNeverBlocks(t *testing.T) {
	// no Run loop draining the queue; the broadcast must still return
	hub := NewHub()
	for i := 0; i < 1000; i++ {
		hub.BroadcastSummary(BatchSummary{Model: "merton", Rows: i})
	}
}
