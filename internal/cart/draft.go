// Package cart holds the in-progress order a customer or cashier is building.
//
// A Draft is a plain value passed through application state; it is priced with
// the pricing package and becomes an order only when placed.
package cart

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/kiwari-pos/cafe/internal/pricing"
)

var (
	ErrInvalidQuantity           = errors.New("quantity must be > 0")
	ErrDuplicateModifierCategory = errors.New("only one modifier per modifier category")
	ErrLineNotFound              = errors.New("cart line not found")
)

// Key identifies a line by menu item and modifier selection. Two lines in a
// draft never share a key.
type Key string

// LineKey builds the key for an item with the given modifiers. The modifier
// order does not matter.
func LineKey(menuItemID uuid.UUID, modifiers []pricing.Modifier) Key {
	ids := make([]string, len(modifiers))
	for i, m := range modifiers {
		ids[i] = m.ID.String()
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString(menuItemID.String())
	for _, id := range ids {
		b.WriteByte('+')
		b.WriteString(id)
	}
	return Key(b.String())
}

// Line is one draft line.
type Line struct {
	Key       Key
	Item      pricing.MenuItem
	Quantity  int32
	Notes     string
	Modifiers []pricing.Modifier
}

// Draft is an order that has not been placed yet.
type Draft struct {
	CustomerName string
	TableNumber  string
	Notes        string

	discount *pricing.Discount
	lines    []Line
}

// Add puts qty of item into the draft. Adding an item with a modifier selection
// already present increases that line's quantity instead of creating a second
// line. Returns the key of the affected line.
func (d *Draft) Add(item pricing.MenuItem, qty int32, notes string, modifiers []pricing.Modifier) (Key, error) {
	if qty <= 0 {
		return "", ErrInvalidQuantity
	}
	if err := checkCategories(modifiers); err != nil {
		return "", err
	}

	key := LineKey(item.ID, modifiers)
	if i := d.index(key); i >= 0 {
		d.lines[i].Quantity += qty
		d.lines[i].Notes = joinNotes(d.lines[i].Notes, notes)
		return key, nil
	}

	d.lines = append(d.lines, Line{
		Key:       key,
		Item:      item,
		Quantity:  qty,
		Notes:     notes,
		Modifiers: append([]pricing.Modifier(nil), modifiers...),
	})
	return key, nil
}

// SelectModifier sets mod on the line, replacing any modifier of the same
// category. The line is re-keyed; if the new key matches another line exactly,
// the two lines are merged. Returns the line's new key.
func (d *Draft) SelectModifier(key Key, mod pricing.Modifier) (Key, error) {
	i := d.index(key)
	if i < 0 {
		return "", ErrLineNotFound
	}

	mods := make([]pricing.Modifier, 0, len(d.lines[i].Modifiers)+1)
	for _, m := range d.lines[i].Modifiers {
		if m.CategoryID != mod.CategoryID {
			mods = append(mods, m)
		}
	}
	mods = append(mods, mod)

	return d.rekey(i, mods), nil
}

// ClearModifier removes the modifier of the given category from the line.
func (d *Draft) ClearModifier(key Key, categoryID uuid.UUID) (Key, error) {
	i := d.index(key)
	if i < 0 {
		return "", ErrLineNotFound
	}

	mods := make([]pricing.Modifier, 0, len(d.lines[i].Modifiers))
	for _, m := range d.lines[i].Modifiers {
		if m.CategoryID != categoryID {
			mods = append(mods, m)
		}
	}

	return d.rekey(i, mods), nil
}

// SetQuantity changes a line's quantity. Zero or less removes the line.
func (d *Draft) SetQuantity(key Key, qty int32) error {
	i := d.index(key)
	if i < 0 {
		return ErrLineNotFound
	}
	if qty <= 0 {
		d.removeAt(i)
		return nil
	}
	d.lines[i].Quantity = qty
	return nil
}

// Remove drops a line. Removing a missing key is a no-op.
func (d *Draft) Remove(key Key) {
	if i := d.index(key); i >= 0 {
		d.removeAt(i)
	}
}

// SetDiscount selects the order-level discount. A new selection replaces the
// previous one; nil clears it.
func (d *Draft) SetDiscount(discount *pricing.Discount) {
	d.discount = discount
}

// Discount returns the selected order-level discount, if any.
func (d *Draft) Discount() *pricing.Discount {
	return d.discount
}

// Lines returns a copy of the draft lines in insertion order.
func (d *Draft) Lines() []Line {
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

// Len is the number of distinct lines.
func (d *Draft) Len() int {
	return len(d.lines)
}

// PricingLines converts the draft into pricing input.
func (d *Draft) PricingLines() []pricing.Line {
	out := make([]pricing.Line, len(d.lines))
	for i, l := range d.lines {
		out[i] = pricing.Line{Item: l.Item, Quantity: l.Quantity, Modifiers: l.Modifiers}
	}
	return out
}

// Totals prices the draft with its selected discount and the given rates.
func (d *Draft) Totals(rates pricing.Rates) pricing.Totals {
	return pricing.Compute(d.PricingLines(), d.discount, rates)
}

func (d *Draft) rekey(i int, mods []pricing.Modifier) Key {
	newKey := LineKey(d.lines[i].Item.ID, mods)
	if j := d.index(newKey); j >= 0 && j != i {
		d.lines[j].Quantity += d.lines[i].Quantity
		d.lines[j].Notes = joinNotes(d.lines[j].Notes, d.lines[i].Notes)
		d.removeAt(i)
		return newKey
	}
	d.lines[i].Key = newKey
	d.lines[i].Modifiers = mods
	return newKey
}

func (d *Draft) index(key Key) int {
	for i, l := range d.lines {
		if l.Key == key {
			return i
		}
	}
	return -1
}

func (d *Draft) removeAt(i int) {
	d.lines = append(d.lines[:i], d.lines[i+1:]...)
}

func checkCategories(modifiers []pricing.Modifier) error {
	seen := make(map[uuid.UUID]bool, len(modifiers))
	for _, m := range modifiers {
		if seen[m.CategoryID] {
			return ErrDuplicateModifierCategory
		}
		seen[m.CategoryID] = true
	}
	return nil
}

func joinNotes(a, b string) string {
	switch {
	case b == "" || a == b:
		return a
	case a == "":
		return b
	}
	return a + "; " + b
}
