// Package adventure is the text-adventure demo: a small static world, a
// mutable game state, and full-state save/restore over the UI channel.
package adventure

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"parley/agent/internal/game"
	"parley/agent/internal/tools"
	"parley/agent/internal/uiws"
)

// place is one room of the static world.
type place struct {
	Description string
	Exits       map[string]string // direction -> location id
	Items       []string
}

func defaultWorld() map[string]place {
	return map[string]place{
		"village": {
			Description: "A quiet village square with a well.",
			Exits:       map[string]string{"north": "forest", "east": "tower"},
			Items:       []string{"rope"},
		},
		"forest": {
			Description: "Dark pines crowd a narrow path.",
			Exits:       map[string]string{"south": "village", "east": "cave"},
			Items:       []string{"torch"},
		},
		"cave": {
			Description: "A damp cave. Something glitters deeper in.",
			Exits:       map[string]string{"west": "forest"},
			Items:       []string{"gem"},
		},
		"tower": {
			Description: "A ruined watchtower overlooking the valley.",
			Exits:       map[string]string{"west": "village"},
			Items:       []string{"key"},
		},
	}
}

type Facade struct {
	state *game.State
	ui    tools.Notifier

	mu    sync.Mutex
	world map[string]place
	// items still lying around per location; picked-up items leave the floor
	floor map[string][]string
}

func New(ui tools.Notifier) *Facade {
	if ui == nil {
		ui = tools.NopNotifier{}
	}
	world := defaultWorld()
	floor := make(map[string][]string, len(world))
	for id, p := range world {
		floor[id] = append([]string(nil), p.Items...)
	}
	return &Facade{state: game.New("village"), ui: ui, world: world, floor: floor}
}

func (f *Facade) Tools() []tools.Tool {
	return []tools.Tool{
		{
			Name:        "look",
			Description: "Describe the current location, its exits, and items on the ground.",
			Handler:     f.look,
		},
		{
			Name:        "move",
			Description: "Move through an exit. Args: direction (north/south/east/west).",
			Handler:     f.move,
		},
		{
			Name:        "take_item",
			Description: "Pick up an item lying in the current location. Args: item.",
			Handler:     f.takeItem,
		},
		{
			Name:        "drop_item",
			Description: "Drop a held item in the current location. Args: item.",
			Handler:     f.dropItem,
		},
		{
			Name:        "status",
			Description: "Report health and inventory.",
			Handler:     f.status,
		},
	}
}

// OnControl wires SAVE_REQ/LOAD_REQ from the UI channel to the game state.
func (f *Facade) OnControl(msg uiws.ControlMessage) *uiws.Envelope {
	switch msg.Type {
	case uiws.TypeSaveReq:
		return &uiws.Envelope{Type: uiws.TypeSaveResp, Data: f.state.Save()}
	case uiws.TypeLoadReq:
		if err := f.state.RestoreJSON(msg.State); err != nil {
			return &uiws.Envelope{Type: uiws.TypeLoadResp, Data: map[string]any{"ok": false, "error": err.Error()}}
		}
		f.broadcastState(context.Background())
		return &uiws.Envelope{Type: uiws.TypeLoadResp, Data: map[string]any{"ok": true}}
	}
	return nil
}

func (f *Facade) look(ctx context.Context, args map[string]any) tools.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	loc := f.state.Location()
	p, ok := f.world[loc]
	if !ok {
		// A restored snapshot may point at a location this world lacks.
		return tools.Failed("You are somewhere unmapped (%s). Move to recover.", loc)
	}
	exits := make([]string, 0, len(p.Exits))
	for dir := range p.Exits {
		exits = append(exits, dir)
	}
	sort.Strings(exits)
	desc := p.Description + " Exits: " + strings.Join(exits, ", ") + "."
	if items := f.floor[loc]; len(items) > 0 {
		desc += " You see: " + strings.Join(items, ", ") + "."
	}
	return tools.OK("%s", desc)
}

func (f *Facade) move(ctx context.Context, args map[string]any) tools.Result {
	dir, ok := tools.String(args, "direction")
	if !ok {
		return tools.Incomplete("Which direction?")
	}
	dir = strings.ToLower(strings.TrimSpace(dir))

	f.mu.Lock()
	loc := f.state.Location()
	p, known := f.world[loc]
	var dest string
	if known {
		dest = p.Exits[dir]
	}
	if dest == "" && !known {
		// Unmapped location: any move returns to the start.
		dest = "village"
	}
	f.mu.Unlock()

	if dest == "" {
		return tools.NotFound("There is no exit %s from the %s.", dir, loc)
	}
	f.state.MoveTo(dest)
	f.broadcastState(ctx)
	return tools.OK("You head %s and reach the %s.", dir, dest)
}

func (f *Facade) takeItem(ctx context.Context, args map[string]any) tools.Result {
	item, ok := tools.String(args, "item")
	if !ok {
		return tools.Incomplete("Take what?")
	}
	item = strings.ToLower(strings.TrimSpace(item))

	f.mu.Lock()
	loc := f.state.Location()
	found := false
	items := f.floor[loc]
	for i, ground := range items {
		if ground == item {
			f.floor[loc] = append(items[:i], items[i+1:]...)
			found = true
			break
		}
	}
	f.mu.Unlock()

	if !found {
		return tools.NotFound("There is no %s here.", item)
	}
	f.state.Take(item)
	f.broadcastState(ctx)
	return tools.OK("You pick up the %s.", item)
}

func (f *Facade) dropItem(ctx context.Context, args map[string]any) tools.Result {
	item, ok := tools.String(args, "item")
	if !ok {
		return tools.Incomplete("Drop what?")
	}
	item = strings.ToLower(strings.TrimSpace(item))

	if !f.state.Drop(item) {
		return tools.NotFound("You are not carrying a %s.", item)
	}
	f.mu.Lock()
	loc := f.state.Location()
	f.floor[loc] = append(f.floor[loc], item)
	f.mu.Unlock()

	f.broadcastState(ctx)
	return tools.OK("You drop the %s.", item)
}

func (f *Facade) status(ctx context.Context, args map[string]any) tools.Result {
	inv := f.state.Inventory()
	carrying := "nothing"
	if len(inv) > 0 {
		carrying = strings.Join(inv, ", ")
	}
	return tools.OK("Health %d. Carrying: %s. Location: %s.",
		f.state.Health(), carrying, f.state.Location()).
		WithData(snapshotData(f.state.Save()))
}

func (f *Facade) broadcastState(ctx context.Context) {
	f.ui.Broadcast(ctx, "game_state", f.state.Save())
}

func snapshotData(s game.Snapshot) map[string]any {
	raw, _ := json.Marshal(s)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return out
}
