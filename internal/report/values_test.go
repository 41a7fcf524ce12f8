package report

import (
	"encoding/json"
	"testing"
)

func TestNumberFromMapAliasOrder(t *testing.T) {
	payload := map[string]any{
		"kcal":     float64(250),
		"calories": "310.5",
	}
	if got := numberFromMap(payload, "calories", "kcal"); got != 310.5 {
		t.Fatalf("expected first alias to win, got %v", got)
	}
	if got := numberFromMap(payload, "energy_kcal", "kcal"); got != 250 {
		t.Fatalf("expected fallback alias, got %v", got)
	}
}

func TestNumberFromMapCoercions(t *testing.T) {
	payload := map[string]any{
		"int":    42,
		"number": json.Number("12.3"),
		"string": " 7.5 ",
		"junk":   "not a number",
	}
	if got := numberFromMap(payload, "int"); got != 42 {
		t.Fatalf("expected int coercion, got %v", got)
	}
	if got := numberFromMap(payload, "number"); got != 12.3 {
		t.Fatalf("expected json.Number coercion, got %v", got)
	}
	if got := numberFromMap(payload, "string"); got != 7.5 {
		t.Fatalf("expected string coercion, got %v", got)
	}
	if got := numberFromMap(payload, "junk"); got != 0 {
		t.Fatalf("expected non-numeric to coerce to 0, got %v", got)
	}
	if got := numberFromMap(nil, "anything"); got != 0 {
		t.Fatalf("expected nil map to yield 0, got %v", got)
	}
}

func TestCounterTop(t *testing.T) {
	c := newCounter()
	for _, name := range []string{"Oatmeal", "coffee", "oatmeal", "Eggs", "Coffee", "coffee"} {
		c.add(name)
	}
	c.add("  ")

	top := c.top(2)
	if len(top) != 2 {
		t.Fatalf("expected 2 items, got %d", len(top))
	}
	if top[0].Name != "coffee" || top[0].Count != 3 {
		t.Fatalf("unexpected leader: %+v", top[0])
	}
	if top[1].Name != "Oatmeal" || top[1].Count != 2 {
		t.Fatalf("expected first-seen spelling preserved, got %+v", top[1])
	}
}

func TestCounterTopTiesByInsertionOrder(t *testing.T) {
	c := newCounter()
	c.add("banana")
	c.add("apple")

	top := c.top(5)
	if len(top) != 2 || top[0].Name != "banana" {
		t.Fatalf("expected insertion order on ties, got %+v", top)
	}
}

func TestParseJSONMapDefensive(t *testing.T) {
	if m := parseJSONMap(nil); m == nil || len(m) != 0 {
		t.Fatalf("expected empty map for nil input, got %v", m)
	}
	if m := parseJSONMap([]byte("not json")); len(m) != 0 {
		t.Fatalf("expected empty map for garbage, got %v", m)
	}
	m := parseJSONMap([]byte(`{"a": 1}`))
	if m["a"] != float64(1) {
		t.Fatalf("expected parsed map, got %v", m)
	}
}
