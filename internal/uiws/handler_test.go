package uiws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ws "nhooyr.io/websocket"
)

func dialTestServer(t *testing.T, s *Server) (*ws.Conn, context.Context) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(s.HandleUI))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	c, _, err := ws.Dial(ctx, "ws"+srv.URL[len("http"):], nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close(ws.StatusNormalClosure, "test done") })
	return c, ctx
}

func TestBroadcastReachesSubscriber(t *testing.T) {
	reg := NewRegistry()
	s := NewServer(reg)
	c, ctx := dialTestServer(t, s)

	// Wait for the subscriber to land in the registry.
	waitFor(t, func() bool { return reg.Count() == 1 })

	reg.Broadcast(ctx, "cart_updated", map[string]any{"mug": 2})

	_, data, err := c.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Type != "cart_updated" {
		t.Fatalf("expected cart_updated, got %q", env.Type)
	}
	payload, ok := env.Data.(map[string]any)
	if !ok || payload["mug"] != float64(2) {
		t.Fatalf("unexpected payload: %#v", env.Data)
	}
}

func TestSaveReqGetsReplyOnSameConnection(t *testing.T) {
	reg := NewRegistry()
	s := NewServer(reg)
	s.OnControl = func(msg ControlMessage) *Envelope {
		if msg.Type != TypeSaveReq {
			return nil
		}
		return &Envelope{Type: TypeSaveResp, Data: map[string]any{"location": "cave"}}
	}
	c, ctx := dialTestServer(t, s)
	waitFor(t, func() bool { return reg.Count() == 1 })

	req := mustJSON(ControlMessage{Type: TypeSaveReq})
	if err := c.Write(ctx, ws.MessageText, req); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, data, err := c.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Type != TypeSaveResp {
		t.Fatalf("expected %s, got %q", TypeSaveResp, env.Type)
	}
}

func TestDisconnectRemovesSubscriber(t *testing.T) {
	reg := NewRegistry()
	s := NewServer(reg)
	c, _ := dialTestServer(t, s)
	waitFor(t, func() bool { return reg.Count() == 1 })

	c.Close(ws.StatusNormalClosure, "bye")
	waitFor(t, func() bool { return reg.Count() == 0 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
