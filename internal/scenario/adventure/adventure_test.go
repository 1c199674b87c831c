package adventure

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"parley/agent/internal/game"
	"parley/agent/internal/tools"
	"parley/agent/internal/uiws"
)

func invoke(t *testing.T, f *Facade, name string, args map[string]any) tools.Result {
	t.Helper()
	reg := tools.NewRegistry()
	if err := reg.RegisterAll(f.Tools()); err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg.Invoke(context.Background(), name, args)
}

func TestMoveThroughExits(t *testing.T) {
	f := New(nil)

	res := invoke(t, f, "move", map[string]any{"direction": "north"})
	if res.Status != tools.StatusOK || !strings.Contains(res.Text(), "forest") {
		t.Fatalf("move north: %#v", res)
	}

	res = invoke(t, f, "move", map[string]any{"direction": "north"})
	if res.Status != tools.StatusNotFound {
		t.Fatalf("expected no exit north from the forest: %#v", res)
	}
}

func TestTakeAndDropItems(t *testing.T) {
	f := New(nil)

	res := invoke(t, f, "take_item", map[string]any{"item": "torch"})
	if res.Status != tools.StatusNotFound {
		t.Fatalf("torch should not be in the village: %#v", res)
	}

	invoke(t, f, "take_item", map[string]any{"item": "rope"})
	res = invoke(t, f, "look", nil)
	if strings.Contains(res.Text(), "rope") {
		t.Fatalf("taken item still on the ground: %q", res.Text())
	}

	res = invoke(t, f, "status", nil)
	if !strings.Contains(res.Text(), "rope") {
		t.Fatalf("rope not in inventory: %q", res.Text())
	}

	invoke(t, f, "drop_item", map[string]any{"item": "rope"})
	res = invoke(t, f, "look", nil)
	if !strings.Contains(res.Text(), "rope") {
		t.Fatalf("dropped item not on the ground: %q", res.Text())
	}
}

func TestSaveReqReturnsRestorableSnapshot(t *testing.T) {
	f := New(nil)

	invoke(t, f, "move", map[string]any{"direction": "north"})
	invoke(t, f, "take_item", map[string]any{"item": "torch"})

	reply := f.OnControl(uiws.ControlMessage{Type: uiws.TypeSaveReq})
	if reply == nil || reply.Type != uiws.TypeSaveResp {
		t.Fatalf("unexpected reply: %#v", reply)
	}
	snap, ok := reply.Data.(game.Snapshot)
	if !ok || snap.Location != "forest" {
		t.Fatalf("unexpected snapshot: %#v", reply.Data)
	}

	// Wander off, then restore the snapshot verbatim.
	invoke(t, f, "move", map[string]any{"direction": "east"})

	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	reply = f.OnControl(uiws.ControlMessage{Type: uiws.TypeLoadReq, State: raw})
	if reply == nil || reply.Type != uiws.TypeLoadResp {
		t.Fatalf("unexpected reply: %#v", reply)
	}

	res := invoke(t, f, "status", nil)
	if !strings.Contains(res.Text(), "forest") || !strings.Contains(res.Text(), "torch") {
		t.Fatalf("state not restored: %q", res.Text())
	}
}

func TestLoadReqRejectsGarbageState(t *testing.T) {
	f := New(nil)
	reply := f.OnControl(uiws.ControlMessage{Type: uiws.TypeLoadReq, State: []byte(`{"health":`)})
	if reply == nil || reply.Type != uiws.TypeLoadResp {
		t.Fatalf("unexpected reply: %#v", reply)
	}
	data, ok := reply.Data.(map[string]any)
	if !ok || data["ok"] != false {
		t.Fatalf("garbage state accepted: %#v", reply.Data)
	}
}

func TestBroadcastOnStateChange(t *testing.T) {
	var types []string
	f := New(notifierFunc(func(typ string) { types = append(types, typ) }))

	invoke(t, f, "move", map[string]any{"direction": "east"})
	invoke(t, f, "take_item", map[string]any{"item": "key"})

	if len(types) != 2 || types[0] != "game_state" {
		t.Fatalf("expected two game_state broadcasts, got %v", types)
	}
}

type notifierFunc func(typ string)

func (fn notifierFunc) Broadcast(_ context.Context, typ string, _ any) { fn(typ) }
