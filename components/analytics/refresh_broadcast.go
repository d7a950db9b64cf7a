package analytics

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
)

// ChangeSnapshot marks the first payload of a stream.
const ChangeSnapshot StateChange = "snapshot"

// EventPayload is the summary pushed to browsers after a state change. Clients
// re-fetch the panels fragment when they see it.
type EventPayload struct {
	ViewID      string      `json:"view_id"`
	Change      StateChange `json:"change"`
	Generation  int         `json:"generation"`
	Exploratory SlotState   `json:"exploratory"`
	Performance SlotState   `json:"performance"`
	Mode        ChartMode   `json:"mode"`
	Error       string      `json:"error,omitempty"`
}

// NewEventPayload summarizes a state event.
func NewEventPayload(viewID string, event StateEvent) EventPayload {
	return EventPayload{
		ViewID:      viewID,
		Change:      event.Change,
		Generation:  event.State.Generation,
		Exploratory: event.State.Exploratory.State,
		Performance: event.State.Performance.State,
		Mode:        event.State.Mode,
		Error:       event.State.Error,
	}
}

// Stream calls send with a snapshot payload and then one payload per state
// change until ctx is done, the view closes or send fails.
func (v *View) Stream(ctx context.Context, send func(EventPayload) error) error {
	events, cancel := v.store.Subscribe()
	defer cancel()

	snapshot := StateEvent{Change: ChangeSnapshot, State: v.store.Snapshot()}
	if err := send(NewEventPayload(v.id, snapshot)); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := send(NewEventPayload(v.id, event)); err != nil {
				return err
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams view events as JSON.
func (v *View) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		v.logger.Warn("analytics: websocket upgrade failed", "view_id", v.id, "error", err)
		return
	}
	defer conn.Close()

	_ = v.Stream(r.Context(), func(payload EventPayload) error {
		return conn.WriteJSON(payload)
	})
}

// ServeSSE provides a Server-Sent Events endpoint for view events.
func (v *View) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)

	_ = v.Stream(r.Context(), func(payload EventPayload) error {
		if _, err := w.Write([]byte("data: ")); err != nil {
			return err
		}
		if err := encoder.Encode(payload); err != nil {
			return err
		}
		if _, err := w.Write([]byte("\n")); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
}
