package catalog

import (
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cat.Len() != 244 {
		t.Fatalf("expected 244 items, got %d", cat.Len())
	}
	item, ok := cat.ByID("J58")
	if !ok || item.Name != "General Ledger" {
		t.Fatalf("J58 lookup failed: %+v", item)
	}
}

func TestFilterCategory(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	finance := cat.FilterCategory("finance")
	if len(finance) == 0 {
		t.Fatalf("case-insensitive filter returned nothing")
	}
	for _, it := range finance {
		if !strings.EqualFold(it.Category, "Finance") {
			t.Fatalf("wrong category in result: %+v", it)
		}
	}
	if len(cat.FilterCategory("")) != cat.Len() {
		t.Fatalf("empty filter must return everything")
	}
	if got := cat.FilterCategory("fin"); got != nil {
		t.Fatalf("prefix must not match: %v", got)
	}
}

func TestPromptText(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	item, _ := cat.ByID("J58")
	text := PromptText([]Item{item})
	if !strings.Contains(text, "[J58] General Ledger (Finance > Accounting and Financial Close)") {
		t.Fatalf("header missing: %q", text)
	}
	if !strings.Contains(text, "Migration Objects: G/L account balance") {
		t.Fatalf("migration objects missing: %q", text)
	}
}
