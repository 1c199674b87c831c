// Package grocery is the grocery-ordering demo: an unpriced catalog, a
// running shopping list, and order placement into the grocery ledger.
package grocery

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"parley/agent/internal/cart"
	"parley/agent/internal/ledger"
	"parley/agent/internal/tools"
)

func DefaultCatalog() *cart.Catalog {
	return cart.NewCatalog([]cart.Item{
		{ID: "milk", Name: "Whole Milk"},
		{ID: "eggs", Name: "Eggs"},
		{ID: "bread", Name: "Sourdough Bread"},
		{ID: "apples", Name: "Apples"},
		{ID: "rice", Name: "Basmati Rice"},
		{ID: "coffee", Name: "Ground Coffee"},
		{ID: "butter", Name: "Butter"},
	})
}

type Facade struct {
	catalog *cart.Catalog
	list    *cart.Cart
	led     *ledger.Log
	ui      tools.Notifier
}

func New(catalog *cart.Catalog, led *ledger.Log, ui tools.Notifier) *Facade {
	if ui == nil {
		ui = tools.NopNotifier{}
	}
	return &Facade{catalog: catalog, list: cart.New(), led: led, ui: ui}
}

func (f *Facade) Tools() []tools.Tool {
	return []tools.Tool{
		{
			Name:        "add_item",
			Description: "Add a quantity of a grocery item to the shopping list. Args: item, quantity (default 1).",
			Handler:     f.addItem,
		},
		{
			Name:        "remove_item",
			Description: "Remove a quantity of an item from the list; quantity 0 removes it entirely.",
			Handler:     f.removeItem,
		},
		{
			Name:        "show_list",
			Description: "Read the current shopping list back to the customer.",
			Handler:     f.showList,
		},
		{
			Name:        "place_order",
			Description: "Place the grocery order. Requires a non-empty list and a delivery name.",
			Handler:     f.placeOrder,
		},
	}
}

func (f *Facade) addItem(ctx context.Context, args map[string]any) tools.Result {
	ident, ok := tools.String(args, "item")
	if !ok {
		return tools.Incomplete("Which item should I add?")
	}
	item, ok := f.catalog.Lookup(ident)
	if !ok {
		return tools.NotFound("%q is not something we stock.", ident)
	}
	qty, ok := tools.Int(args, "quantity")
	if !ok || qty <= 0 {
		qty = 1
	}
	total := f.list.Add(item.ID, qty)
	f.ui.Broadcast(ctx, "cart_updated", f.list.Items())
	return tools.OK("Added %d %s, %d on the list now.", qty, item.Name, total)
}

func (f *Facade) removeItem(ctx context.Context, args map[string]any) tools.Result {
	ident, ok := tools.String(args, "item")
	if !ok {
		return tools.Incomplete("Which item should I remove?")
	}
	item, ok := f.catalog.Lookup(ident)
	if !ok {
		return tools.NotFound("%q is not something we stock.", ident)
	}
	qty, _ := tools.Int(args, "quantity")
	if !f.list.Remove(item.ID, qty) {
		return tools.NotFound("%s is not on the list.", item.Name)
	}
	f.ui.Broadcast(ctx, "cart_updated", f.list.Items())
	return tools.OK("Removed %s from the list.", item.Name)
}

func (f *Facade) showList(ctx context.Context, args map[string]any) tools.Result {
	items := f.list.Items()
	if len(items) == 0 {
		return tools.OK("The list is empty so far.")
	}
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		item, _ := f.catalog.Lookup(id)
		parts = append(parts, fmt.Sprintf("%d %s", items[id], item.Name))
	}
	return tools.OK("On the list: %s.", strings.Join(parts, ", ")).
		WithData(map[string]any{"items": items})
}

func (f *Facade) placeOrder(ctx context.Context, args map[string]any) tools.Result {
	if f.list.Empty() {
		return tools.Incomplete("The list is empty. Add items before ordering.")
	}
	name, ok := tools.String(args, "name")
	if !ok {
		return tools.Incomplete("I need a delivery name to place the order.")
	}

	id, err := f.led.Append(map[string]any{
		"customer": name,
		"items":    f.list.Items(),
	})
	if err != nil {
		log.Printf("grocery: save order: %v", err)
		return tools.Failed("The order could not be saved right now. Apologize and retry.")
	}
	f.list.Clear()
	f.ui.Broadcast(ctx, "order_placed", map[string]any{"order_id": id})
	return tools.OK("Grocery order %s placed for %s.", id, name).
		WithData(map[string]any{"order_id": id})
}
