// Package coffee is the barista demo: collect a drink order field by field,
// then finalize it into the orders ledger.
package coffee

import (
	"context"
	"fmt"
	"log"
	"strings"

	"parley/agent/internal/ledger"
	"parley/agent/internal/record"
	"parley/agent/internal/tools"
)

// The single implicit order of one conversation session.
const orderID = "order"

// Required fields for a finalizable order; extras stay optional.
var schema = record.Schema{
	Required: []string{"drink", "size", "milk", "name"},
	Optional: []string{"extras"},
}

type Facade struct {
	orders *record.Store
	led    *ledger.Log
	ui     tools.Notifier
}

func New(led *ledger.Log, ui tools.Notifier) *Facade {
	if ui == nil {
		ui = tools.NopNotifier{}
	}
	return &Facade{orders: record.New(schema), led: led, ui: ui}
}

func (f *Facade) Tools() []tools.Tool {
	return []tools.Tool{
		{
			Name:        "update_order",
			Description: "Update the customer's order. Call whenever the user states a drink, size, milk preference, extras, or their name.",
			Handler:     f.updateOrder,
		},
		{
			Name:        "finalize_order",
			Description: "Finalize the order. Call only after drink, size, milk, and name are confirmed with the customer.",
			Handler:     f.finalizeOrder,
		},
		{
			Name:        "cancel_order",
			Description: "Discard the current order without saving it.",
			Handler:     f.cancelOrder,
		},
	}
}

func (f *Facade) updateOrder(ctx context.Context, args map[string]any) tools.Result {
	partial := record.Fields{}
	for _, field := range []string{"drink", "size", "milk", "name"} {
		if v, ok := tools.String(args, field); ok {
			partial[field] = v
		}
	}
	if extras, ok := tools.Strings(args, "extras"); ok {
		partial["extras"] = extras
	}

	rec, err := f.orders.Update(orderID, partial)
	if err != nil {
		return tools.Failed("Could not update the order: %v.", err)
	}
	log.Printf("coffee: order updated: %v", rec)
	f.ui.Broadcast(ctx, "order_updated", rec)
	return tools.OK("Order updated. Current state: %s.", describe(rec)).
		WithData(rec)
}

func (f *Facade) finalizeOrder(ctx context.Context, args map[string]any) tools.Result {
	if !f.orders.Complete(orderID) {
		missing := f.orders.Missing(orderID)
		return tools.Incomplete("The order is missing %s. Ask for the missing details before finalizing.",
			strings.Join(missing, ", "))
	}

	rec, _ := f.orders.Get(orderID)
	id, err := f.led.Append(rec)
	if err != nil {
		log.Printf("coffee: save order: %v", err)
		return tools.Failed("I could not save the order just now. Apologize and try once more.")
	}
	f.orders.Clear(orderID)
	f.ui.Broadcast(ctx, "order_placed", map[string]any{"order_id": id})
	return tools.OK("Order %s saved. Thank the customer and close the conversation.", id).
		WithData(map[string]any{"order_id": id})
}

func (f *Facade) cancelOrder(ctx context.Context, args map[string]any) tools.Result {
	f.orders.Clear(orderID)
	f.ui.Broadcast(ctx, "order_cancelled", nil)
	return tools.OK("Order discarded. Nothing was saved.")
}

func describe(rec record.Fields) string {
	parts := make([]string, 0, len(schema.Required)+1)
	for _, field := range schema.Required {
		if v, ok := rec[field].(string); ok && v != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", field, v))
		}
	}
	if extras, ok := rec["extras"].([]string); ok && len(extras) > 0 {
		parts = append(parts, "extras="+strings.Join(extras, "+"))
	}
	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, ", ")
}
