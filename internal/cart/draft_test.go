package cart

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kiwari-pos/cafe/internal/enum"
	"github.com/kiwari-pos/cafe/internal/pricing"
	"github.com/shopspring/decimal"
)

var (
	sizeCategory  = uuid.New()
	sugarCategory = uuid.New()
)

func testItem(price int64) pricing.MenuItem {
	return pricing.MenuItem{ID: uuid.New(), Name: "Es Kopi", Price: decimal.NewFromInt(price)}
}

func testModifier(category uuid.UUID, price int64) pricing.Modifier {
	return pricing.Modifier{ID: uuid.New(), CategoryID: category, Price: decimal.NewFromInt(price)}
}

func TestLineKey_IgnoresModifierOrder(t *testing.T) {
	itemID := uuid.New()
	a := testModifier(sizeCategory, 5000)
	b := testModifier(sugarCategory, 0)

	if LineKey(itemID, []pricing.Modifier{a, b}) != LineKey(itemID, []pricing.Modifier{b, a}) {
		t.Fatal("keys differ for the same modifier selection")
	}
	if LineKey(itemID, []pricing.Modifier{a}) == LineKey(itemID, nil) {
		t.Fatal("key did not change with modifier selection")
	}
}

func TestAdd_MergesSameSelection(t *testing.T) {
	var d Draft
	item := testItem(20000)
	large := testModifier(sizeCategory, 5000)

	k1, err := d.Add(item, 1, "less ice", []pricing.Modifier{large})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	k2, err := d.Add(item, 2, "", []pricing.Modifier{large})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if k1 != k2 {
		t.Fatalf("keys differ: %s vs %s", k1, k2)
	}
	if d.Len() != 1 {
		t.Fatalf("lines: got %d, want 1", d.Len())
	}
	if got := d.Lines()[0].Quantity; got != 3 {
		t.Errorf("quantity: got %d, want 3", got)
	}
	if got := d.Lines()[0].Notes; got != "less ice" {
		t.Errorf("notes: got %q, want %q", got, "less ice")
	}
}

func TestAdd_DifferentSelectionIsSeparateLine(t *testing.T) {
	var d Draft
	item := testItem(20000)

	if _, err := d.Add(item, 1, "", nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := d.Add(item, 1, "", []pricing.Modifier{testModifier(sizeCategory, 5000)}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if d.Len() != 2 {
		t.Fatalf("lines: got %d, want 2", d.Len())
	}
}

func TestAdd_Validation(t *testing.T) {
	var d Draft
	item := testItem(20000)

	if _, err := d.Add(item, 0, "", nil); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero quantity: got %v, want ErrInvalidQuantity", err)
	}

	mods := []pricing.Modifier{testModifier(sizeCategory, 5000), testModifier(sizeCategory, 8000)}
	if _, err := d.Add(item, 1, "", mods); !errors.Is(err, ErrDuplicateModifierCategory) {
		t.Errorf("two modifiers in one category: got %v, want ErrDuplicateModifierCategory", err)
	}
	if d.Len() != 0 {
		t.Errorf("rejected adds left %d lines", d.Len())
	}
}

func TestSelectModifier_RekeysLine(t *testing.T) {
	var d Draft
	item := testItem(20000)
	regular := testModifier(sizeCategory, 0)
	large := testModifier(sizeCategory, 5000)

	key, _ := d.Add(item, 2, "", []pricing.Modifier{regular})
	other, _ := d.Add(testItem(15000), 1, "", nil)

	newKey, err := d.SelectModifier(key, large)
	if err != nil {
		t.Fatalf("select modifier: %v", err)
	}
	if newKey == key {
		t.Fatal("key unchanged after modifier change")
	}
	if d.Len() != 2 {
		t.Fatalf("lines: got %d, want 2", d.Len())
	}

	lines := d.Lines()
	if lines[0].Key != newKey || len(lines[0].Modifiers) != 1 || lines[0].Modifiers[0].ID != large.ID {
		t.Errorf("line not updated: %+v", lines[0])
	}
	if lines[1].Key != other || lines[1].Quantity != 1 {
		t.Errorf("unrelated line changed: %+v", lines[1])
	}
}

func TestSelectModifier_MergesOnExactMatch(t *testing.T) {
	var d Draft
	item := testItem(20000)
	regular := testModifier(sizeCategory, 0)
	large := testModifier(sizeCategory, 5000)

	regularKey, _ := d.Add(item, 2, "", []pricing.Modifier{regular})
	largeKey, _ := d.Add(item, 1, "", []pricing.Modifier{large})

	got, err := d.SelectModifier(regularKey, large)
	if err != nil {
		t.Fatalf("select modifier: %v", err)
	}
	if got != largeKey {
		t.Fatalf("key: got %s, want %s", got, largeKey)
	}
	if d.Len() != 1 {
		t.Fatalf("lines: got %d, want 1", d.Len())
	}
	if q := d.Lines()[0].Quantity; q != 3 {
		t.Errorf("quantity: got %d, want 3", q)
	}
}

func TestSelectModifier_KeepsOtherCategories(t *testing.T) {
	var d Draft
	item := testItem(20000)
	lessSugar := testModifier(sugarCategory, 0)

	key, _ := d.Add(item, 1, "", []pricing.Modifier{lessSugar})
	key, err := d.SelectModifier(key, testModifier(sizeCategory, 5000))
	if err != nil {
		t.Fatalf("select modifier: %v", err)
	}

	if mods := d.Lines()[0].Modifiers; len(mods) != 2 {
		t.Fatalf("modifiers: got %d, want 2", len(mods))
	}

	key, err = d.ClearModifier(key, sizeCategory)
	if err != nil {
		t.Fatalf("clear modifier: %v", err)
	}
	if key != LineKey(item.ID, []pricing.Modifier{lessSugar}) {
		t.Errorf("key after clear: got %s", key)
	}
}

func TestSelectModifier_UnknownLine(t *testing.T) {
	var d Draft
	if _, err := d.SelectModifier("missing", testModifier(sizeCategory, 0)); !errors.Is(err, ErrLineNotFound) {
		t.Errorf("got %v, want ErrLineNotFound", err)
	}
}

func TestSetQuantity(t *testing.T) {
	var d Draft
	key, _ := d.Add(testItem(20000), 1, "", nil)

	if err := d.SetQuantity(key, 4); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if q := d.Lines()[0].Quantity; q != 4 {
		t.Errorf("quantity: got %d, want 4", q)
	}

	if err := d.SetQuantity(key, 0); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if d.Len() != 0 {
		t.Errorf("line not removed at zero quantity")
	}
	if err := d.SetQuantity(key, 1); !errors.Is(err, ErrLineNotFound) {
		t.Errorf("got %v, want ErrLineNotFound", err)
	}
}

func TestSetDiscount_ReplacesSelection(t *testing.T) {
	var d Draft
	if _, err := d.Add(testItem(50000), 1, "", nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	first := &pricing.Discount{ID: uuid.New(), Kind: enum.DiscountKindFixed, Scope: enum.DiscountScopeTotal, Value: decimal.NewFromInt(5000), Active: true}
	second := &pricing.Discount{ID: uuid.New(), Kind: enum.DiscountKindPercentage, Scope: enum.DiscountScopeTotal, Value: decimal.NewFromInt(10), Active: true}

	d.SetDiscount(first)
	d.SetDiscount(second)

	tot := d.Totals(pricing.Rates{})
	if !tot.TotalDiscount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("total discount: got %s, want 5000 (10%% only, not stacked)", tot.TotalDiscount)
	}
	if d.Discount() != second {
		t.Error("selected discount not replaced")
	}

	d.SetDiscount(nil)
	if tot := d.Totals(pricing.Rates{}); !tot.TotalDiscount.IsZero() {
		t.Errorf("discount not cleared: %s", tot.TotalDiscount)
	}
}

func TestTotals_RepricesAfterModifierChange(t *testing.T) {
	var d Draft
	item := testItem(20000)

	key, _ := d.Add(item, 2, "", []pricing.Modifier{testModifier(sizeCategory, 0)})
	before := d.Totals(pricing.Rates{})

	if _, err := d.SelectModifier(key, testModifier(sizeCategory, 5000)); err != nil {
		t.Fatalf("select modifier: %v", err)
	}
	after := d.Totals(pricing.Rates{})

	if !before.FinalTotal.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("before: got %s, want 40000", before.FinalTotal)
	}
	if !after.FinalTotal.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("after: got %s, want 50000", after.FinalTotal)
	}
}
