package coffee

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"parley/agent/internal/ledger"
	"parley/agent/internal/tools"
)

type recordingNotifier struct {
	mu    sync.Mutex
	types []string
}

func (n *recordingNotifier) Broadcast(_ context.Context, typ string, _ any) {
	n.mu.Lock()
	n.types = append(n.types, typ)
	n.mu.Unlock()
}

func newTestFacade(t *testing.T) (*Facade, *ledger.Log, *recordingNotifier) {
	t.Helper()
	led, err := ledger.Open(filepath.Join(t.TempDir(), "orders.json"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	ui := &recordingNotifier{}
	return New(led, ui), led, ui
}

func invoke(t *testing.T, f *Facade, name string, args map[string]any) tools.Result {
	t.Helper()
	reg := tools.NewRegistry()
	if err := reg.RegisterAll(f.Tools()); err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg.Invoke(context.Background(), name, args)
}

func TestFinalizeIncompleteOrderLeavesLedgerUntouched(t *testing.T) {
	f, led, _ := newTestFacade(t)

	invoke(t, f, "update_order", map[string]any{"drink": "Latte", "size": "Medium", "milk": "Oat"})
	res := invoke(t, f, "finalize_order", nil)
	if res.Status != tools.StatusIncomplete {
		t.Fatalf("expected incomplete, got %#v", res)
	}

	entries, err := led.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("incomplete finalize appended to ledger: %v", entries)
	}
}

func TestFinalizeCompleteOrderAppendsAndClears(t *testing.T) {
	f, led, ui := newTestFacade(t)

	invoke(t, f, "update_order", map[string]any{
		"drink": "Latte", "size": "Medium", "milk": "Oat", "name": "Sam",
		"extras": []any{"Vanilla Syrup"},
	})
	res := invoke(t, f, "finalize_order", nil)
	if res.Status != tools.StatusOK {
		t.Fatalf("expected ok, got %#v", res)
	}

	entries, err := led.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 || entries[0]["name"] != "Sam" {
		t.Fatalf("unexpected ledger: %v", entries)
	}

	// Finalization clears the working order: a second finalize is incomplete.
	res = invoke(t, f, "finalize_order", nil)
	if res.Status != tools.StatusIncomplete {
		t.Fatalf("order survived finalization: %#v", res)
	}

	found := false
	for _, typ := range ui.types {
		if typ == "order_placed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("order_placed was not broadcast: %v", ui.types)
	}
}

func TestFinalizeReportsWriteFailureAndRetainsOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.json")
	led, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	f := New(led, nil)

	invoke(t, f, "update_order", map[string]any{
		"drink": "Latte", "size": "Medium", "milk": "Oat", "name": "Sam",
	})

	// A directory at the ledger path makes every read/write fail.
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	res := invoke(t, f, "finalize_order", nil)
	if res.Status != tools.StatusFailed {
		t.Fatalf("expected failed, got %#v", res)
	}

	// The order survives the failed save and finalizes once the ledger is
	// writable again.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	res = invoke(t, f, "finalize_order", nil)
	if res.Status != tools.StatusOK {
		t.Fatalf("retry after write failure: %#v", res)
	}
	entries, err := led.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 || entries[0]["name"] != "Sam" {
		t.Fatalf("unexpected ledger: %v", entries)
	}
}

func TestUpdateMergesAcrossCalls(t *testing.T) {
	f, _, _ := newTestFacade(t)

	invoke(t, f, "update_order", map[string]any{"drink": "Mocha"})
	invoke(t, f, "update_order", map[string]any{"drink": "Latte", "size": "Small"})
	res := invoke(t, f, "update_order", map[string]any{"milk": "Whole", "name": "Ada"})

	if res.Status != tools.StatusOK {
		t.Fatalf("expected ok, got %#v", res)
	}
	if res.Data["drink"] != "Latte" || res.Data["size"] != "Small" {
		t.Fatalf("merge mismatch: %#v", res.Data)
	}
}

func TestCancelDiscardsWithoutSaving(t *testing.T) {
	f, led, _ := newTestFacade(t)

	invoke(t, f, "update_order", map[string]any{
		"drink": "Latte", "size": "Medium", "milk": "Oat", "name": "Sam",
	})
	invoke(t, f, "cancel_order", nil)

	res := invoke(t, f, "finalize_order", nil)
	if res.Status != tools.StatusIncomplete {
		t.Fatalf("cancelled order still finalizable: %#v", res)
	}
	entries, _ := led.Load()
	if len(entries) != 0 {
		t.Fatalf("cancel persisted an order: %v", entries)
	}
}
