package sales

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"parley/agent/internal/ledger"
	"parley/agent/internal/tools"
)

func newTestFacade(t *testing.T) (*Facade, *ledger.Log) {
	t.Helper()
	led, err := ledger.Open(filepath.Join(t.TempDir(), "leads.json"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	return New(led, nil), led
}

func invoke(t *testing.T, f *Facade, name string, args map[string]any) tools.Result {
	t.Helper()
	reg := tools.NewRegistry()
	if err := reg.RegisterAll(f.Tools()); err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg.Invoke(context.Background(), name, args)
}

func TestUpdateReportsMissingFields(t *testing.T) {
	f, _ := newTestFacade(t)

	res := invoke(t, f, "update_lead", map[string]any{"name": "Ada Lovelace"})
	if res.Status != tools.StatusOK {
		t.Fatalf("update: %#v", res)
	}
	if !strings.Contains(res.Text(), "company") || !strings.Contains(res.Text(), "email") {
		t.Fatalf("missing fields not reported: %q", res.Text())
	}
}

func TestQualifyIncompleteLeadRejected(t *testing.T) {
	f, led := newTestFacade(t)
	invoke(t, f, "update_lead", map[string]any{"name": "Ada", "company": "Analytical Engines"})

	res := invoke(t, f, "qualify_lead", nil)
	if res.Status != tools.StatusIncomplete {
		t.Fatalf("expected incomplete, got %#v", res)
	}
	entries, _ := led.Load()
	if len(entries) != 0 {
		t.Fatalf("incomplete lead persisted: %v", entries)
	}
}

func TestQualifyCompleteLeadAppendsAndClears(t *testing.T) {
	f, led := newTestFacade(t)

	invoke(t, f, "update_lead", map[string]any{
		"name": "Ada", "company": "Analytical Engines", "email": "ada@example.com",
		"budget": "$50k", "timeline": "Q4",
	})
	res := invoke(t, f, "qualify_lead", nil)
	if res.Status != tools.StatusOK {
		t.Fatalf("qualify: %#v", res)
	}
	if !strings.Contains(res.Text(), "budget $50k") {
		t.Fatalf("summary missing budget: %q", res.Text())
	}

	entries, err := led.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 || entries[0]["email"] != "ada@example.com" {
		t.Fatalf("unexpected ledger: %v", entries)
	}

	// Working lead cleared after qualification.
	res = invoke(t, f, "qualify_lead", nil)
	if res.Status != tools.StatusIncomplete {
		t.Fatalf("lead survived qualification: %#v", res)
	}
}
