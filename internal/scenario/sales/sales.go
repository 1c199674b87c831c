// Package sales is the lead-qualification demo: build up a lead form over
// the call, then qualify it into the leads ledger.
package sales

import (
	"context"
	"log"
	"strings"

	"parley/agent/internal/ledger"
	"parley/agent/internal/record"
	"parley/agent/internal/tools"
)

const leadID = "lead"

var schema = record.Schema{
	Required: []string{"name", "company", "email"},
	Optional: []string{"budget", "timeline"},
}

type Facade struct {
	leads *record.Store
	led   *ledger.Log
	ui    tools.Notifier
}

func New(led *ledger.Log, ui tools.Notifier) *Facade {
	if ui == nil {
		ui = tools.NopNotifier{}
	}
	return &Facade{leads: record.New(schema), led: led, ui: ui}
}

func (f *Facade) Tools() []tools.Tool {
	return []tools.Tool{
		{
			Name:        "update_lead",
			Description: "Record lead details as the prospect states them. Args: name, company, email, budget, timeline.",
			Handler:     f.updateLead,
		},
		{
			Name:        "qualify_lead",
			Description: "Qualify and save the lead. Requires name, company, and email to be filled.",
			Handler:     f.qualifyLead,
		},
	}
}

func (f *Facade) updateLead(ctx context.Context, args map[string]any) tools.Result {
	partial := record.Fields{}
	for _, field := range []string{"name", "company", "email", "budget", "timeline"} {
		if v, ok := tools.String(args, field); ok {
			partial[field] = v
		}
	}
	rec, err := f.leads.Update(leadID, partial)
	if err != nil {
		return tools.Failed("Could not update the lead: %v.", err)
	}
	f.ui.Broadcast(ctx, "lead_updated", rec)

	if missing := f.leads.Missing(leadID); len(missing) > 0 {
		return tools.OK("Lead updated. Still needed: %s.", strings.Join(missing, ", ")).
			WithData(rec)
	}
	return tools.OK("Lead updated and complete. Confirm and qualify when ready.").
		WithData(rec)
}

func (f *Facade) qualifyLead(ctx context.Context, args map[string]any) tools.Result {
	if !f.leads.Complete(leadID) {
		return tools.Incomplete("The lead is missing %s. Ask before qualifying.",
			strings.Join(f.leads.Missing(leadID), ", "))
	}

	rec, _ := f.leads.Get(leadID)
	id, err := f.led.Append(rec)
	if err != nil {
		log.Printf("sales: save lead: %v", err)
		return tools.Failed("The lead could not be saved. Apologize and retry.")
	}
	f.leads.Clear(leadID)
	f.ui.Broadcast(ctx, "lead_qualified", map[string]any{"lead_id": id})

	summary := "no budget or timeline stated"
	if b, ok := rec["budget"].(string); ok {
		summary = "budget " + b
		if tl, ok := rec["timeline"].(string); ok {
			summary += ", timeline " + tl
		}
	} else if tl, ok := rec["timeline"].(string); ok {
		summary = "timeline " + tl
	}
	return tools.OK("Lead %s saved (%s). Thank the prospect and close.", id, summary).
		WithData(map[string]any{"lead_id": id})
}
