// Package shop is the e-commerce demo: a priced catalog, a session cart,
// and checkout into the shop orders ledger.
package shop

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

// DefaultCatalog is the demo store front.
func DefaultCatalog() *cart.Catalog {
	return cart.NewCatalog([]cart.Item{
		{ID: "mug", Name: "Coffee Mug", Price: 12.50},
		{ID: "tshirt", Name: "Logo T-Shirt", Price: 24.00},
		{ID: "beans", Name: "Espresso Beans 1kg", Price: 18.75},
		{ID: "grinder", Name: "Hand Grinder", Price: 49.90},
		{ID: "tumbler", Name: "Travel Tumbler", Price: 21.00},
	})
}

type Facade struct {
	catalog *cart.Catalog
	basket  *cart.Cart
	led     *ledger.Log
	ui      tools.Notifier
}

func New(catalog *cart.Catalog, led *ledger.Log, ui tools.Notifier) *Facade {
	if ui == nil {
		ui = tools.NopNotifier{}
	}
	return &Facade{catalog: catalog, basket: cart.New(), led: led, ui: ui}
}

func (f *Facade) Tools() []tools.Tool {
	return []tools.Tool{
		{
			Name:        "add_to_cart",
			Description: "Add a quantity of a catalog product to the cart. Args: item, quantity (default 1).",
			Handler:     f.addToCart,
		},
		{
			Name:        "remove_from_cart",
			Description: "Remove a quantity of a product from the cart; quantity 0 removes the whole line.",
			Handler:     f.removeFromCart,
		},
		{
			Name:        "view_cart",
			Description: "Read the cart back to the customer with line and order totals.",
			Handler:     f.viewCart,
		},
		{
			Name:        "checkout",
			Description: "Place the order. Requires a non-empty cart and the customer's name.",
			Handler:     f.checkout,
		},
	}
}

func (f *Facade) addToCart(ctx context.Context, args map[string]any) tools.Result {
	ident, ok := tools.String(args, "item")
	if !ok {
		return tools.Incomplete("Which product should I add?")
	}
	item, ok := f.catalog.Lookup(ident)
	if !ok {
		return tools.NotFound("We do not carry %q. Offer the catalog items instead.", ident)
	}
	qty, ok := tools.Int(args, "quantity")
	if !ok || qty <= 0 {
		qty = 1
	}
	total := f.basket.Add(item.ID, qty)
	f.ui.Broadcast(ctx, "cart_updated", f.basket.Items())
	return tools.OK("Added %d x %s. The cart now holds %d.", qty, item.Name, total)
}

func (f *Facade) removeFromCart(ctx context.Context, args map[string]any) tools.Result {
	ident, ok := tools.String(args, "item")
	if !ok {
		return tools.Incomplete("Which product should I remove?")
	}
	item, ok := f.catalog.Lookup(ident)
	if !ok {
		return tools.NotFound("We do not carry %q.", ident)
	}
	qty, _ := tools.Int(args, "quantity") // absent or 0 means remove all
	if !f.basket.Remove(item.ID, qty) {
		return tools.NotFound("There is no %s in the cart.", item.Name)
	}
	f.ui.Broadcast(ctx, "cart_updated", f.basket.Items())
	return tools.OK("Removed %s. %s", item.Name, f.summary())
}

func (f *Facade) viewCart(ctx context.Context, args map[string]any) tools.Result {
	if f.basket.Empty() {
		return tools.OK("The cart is empty.")
	}
	return tools.OK("%s", f.summary()).WithData(map[string]any{
		"items": f.basket.Items(),
		"total": f.total(),
	})
}

func (f *Facade) checkout(ctx context.Context, args map[string]any) tools.Result {
	if f.basket.Empty() {
		return tools.Incomplete("The cart is empty. Add something before checking out.")
	}
	name, ok := tools.String(args, "name")
	if !ok {
		return tools.Incomplete("I need a name for the order.")
	}

	items := f.basket.Items()
	lines := make([]map[string]any, 0, len(items))
	for _, id := range sortedIDs(items) {
		item, _ := f.catalog.Lookup(id)
		lines = append(lines, map[string]any{
			"item":     item.ID,
			"name":     item.Name,
			"quantity": items[id],
			"subtotal": item.Price * float64(items[id]),
		})
	}

	id, err := f.led.Append(map[string]any{
		"customer": name,
		"lines":    lines,
		"total":    f.total(),
	})
	if err != nil {
		log.Printf("shop: save order: %v", err)
		return tools.Failed("The order could not be saved. Apologize and offer to retry.")
	}
	f.basket.Clear()
	f.ui.Broadcast(ctx, "order_placed", map[string]any{"order_id": id, "customer": name})
	return tools.OK("Order %s placed for %s. Thank the customer.", id, name).
		WithData(map[string]any{"order_id": id})
}

func (f *Facade) total() float64 {
	var sum float64
	for id, qty := range f.basket.Items() {
		item, _ := f.catalog.Lookup(id)
		sum += item.Price * float64(qty)
	}
	return sum
}

func (f *Facade) summary() string {
	items := f.basket.Items()
	if len(items) == 0 {
		return "The cart is now empty."
	}
	parts := make([]string, 0, len(items))
	for _, id := range sortedIDs(items) {
		item, _ := f.catalog.Lookup(id)
		parts = append(parts, fmt.Sprintf("%d x %s ($%.2f)", items[id], item.Name, item.Price*float64(items[id])))
	}
	return fmt.Sprintf("Cart: %s. Total $%.2f.", strings.Join(parts, ", "), f.total())
}

func sortedIDs(items map[string]int) []string {
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
