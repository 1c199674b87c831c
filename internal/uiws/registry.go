package uiws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	ws "nhooyr.io/websocket"
)

// Envelope is the outbound UI message shape. One-directional, best-effort,
// no acknowledgment.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// writeTimeout bounds every outbound websocket write.
const writeTimeout = 2 * time.Second

// Registry fans envelopes out to every connected frontend.
type Registry struct {
	mu    sync.Mutex
	conns map[string]*ws.Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*ws.Conn)}
}

func (r *Registry) Add(id string, c *ws.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.conns[id]; ok && old != nil {
		_ = old.Close(ws.StatusNormalClosure, "replaced")
	}
	r.conns[id] = c
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.conns, id)
	r.mu.Unlock()
}

// Count returns the number of connected subscribers.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Broadcast sends a {type, data} envelope to every subscriber. Failed sends
// are dropped and counted; a slow or dead frontend must never stall a tool
// call.
func (r *Registry) Broadcast(ctx context.Context, typ string, data any) {
	payload := mustJSON(Envelope{Type: typ, Data: data})

	r.mu.Lock()
	targets := make(map[string]*ws.Conn, len(r.conns))
	for id, c := range r.conns {
		targets[id] = c
	}
	r.mu.Unlock()

	for id, c := range targets {
		sendCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := c.Write(sendCtx, ws.MessageText, payload)
		cancel()
		if err != nil {
			metricBroadcastDrops.Inc()
			r.Remove(id)
			continue
		}
		metricBroadcasts.Inc()
	}
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
