package analytics

import (
	"bufio"
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

func TestViewStreamSendsSnapshotThenChanges(t *testing.T) {
	view := newTestView(t, &staticSource{})
	ctx, cancel := context.WithCancel(context.Background())

	payloads := make(chan EventPayload, 4)
	done := make(chan error, 1)
	go func() {
		done <- view.Stream(ctx, func(p EventPayload) error {
			payloads <- p
			return nil
		})
	}()

	first := <-payloads
	assert.Equal(t, ChangeSnapshot, first.Change)
	assert.Equal(t, "view-1", first.ViewID)
	assert.Equal(t, SlotAbsent, first.Exploratory)

	view.Store().SetBedroomFilter(FilterValue(1))
	second := <-payloads
	assert.Equal(t, ChangeFilters, second.Change)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop on cancel")
	}
}

func TestViewStreamStopsWhenViewCloses(t *testing.T) {
	view := newTestView(t, &staticSource{})
	done := make(chan error, 1)
	ready := make(chan struct{})
	go func() {
		done <- view.Stream(context.Background(), func(p EventPayload) error {
			if p.Change == ChangeSnapshot {
				close(ready)
			}
			return nil
		})
	}()
	<-ready
	view.Close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop on close")
	}
}

func TestViewServeSSE(t *testing.T) {
	view := newTestView(t, &staticSource{})
	srv := httptest.NewServer(http.HandlerFunc(view.ServeSSE))
	defer srv.Close()
	defer view.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	next := func() EventPayload {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				var payload EventPayload
				require.NoError(t, json.Unmarshal([]byte(data), &payload))
				return payload
			}
		}
	}

	assert.Equal(t, ChangeSnapshot, next().Change)
	require.NoError(t, view.Store().SetChartMode(ChartModeBar))
	payload := next()
	assert.Equal(t, ChangeMode, payload.Change)
	assert.Equal(t, ChartModeBar, payload.Mode)
}

func TestViewServeWebSocket(t *testing.T) {
	view := newTestView(t, &staticSource{})
	srv := httptest.NewServer(http.HandlerFunc(view.ServeWebSocket))
	defer srv.Close()
	defer view.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var payload EventPayload
	require.NoError(t, conn.ReadJSON(&payload))
	assert.Equal(t, ChangeSnapshot, payload.Change)

	view.Store().SetBathroomFilter(FilterValue(2))
	require.NoError(t, conn.ReadJSON(&payload))
	assert.Equal(t, ChangeFilters, payload.Change)
}
