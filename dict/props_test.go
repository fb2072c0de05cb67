package dict

import (
	"strings"
	"testing"

	"github.com/opd-ai/wirekit/abi"
)

// TestNewAndInsertionOrder verifies construction and that materialized
// tables keep insertion order.
func TestNewAndInsertionOrder(t *testing.T) {
	p := New("b", "2", "a", "1", "c", "3")
	if p.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", p.Len())
	}
	raw := p.Dict()
	wantKeys := []string{"b", "a", "c"}
	for i, item := range raw.Items {
		if !abi.StrEq(item.Key, wantKeys[i]) {
			t.Errorf("item %d key = %q, want %q", i, item.Key, wantKeys[i])
		}
	}
}

// TestSetUpdatesInPlace verifies updating a key keeps its original position.
func TestSetUpdatesInPlace(t *testing.T) {
	p := New("first", "1", "second", "2")
	p.Set("first", "updated")
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
	var keys []string
	for k := range p.All() {
		keys = append(keys, k)
	}
	if keys[0] != "first" || keys[1] != "second" {
		t.Errorf("order after update = %v, want [first second]", keys)
	}
	if v, _ := p.Get("first"); v != "updated" {
		t.Errorf("Get(first) = %q, want updated", v)
	}
}

// TestDeleteAndClear verifies removal bookkeeping.
func TestDeleteAndClear(t *testing.T) {
	p := New("a", "1", "b", "2")
	if !p.Delete("a") {
		t.Error("Delete(a) = false, want true")
	}
	if p.Delete("a") {
		t.Error("second Delete(a) = true, want false")
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}
	p.Clear()
	if p.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", p.Len())
	}
	if p.Dict() != nil {
		t.Error("Dict() after Clear != nil, want nil")
	}
}

// TestSetRejectsUnrepresentablePairs verifies the producer-edge contract.
func TestSetRejectsUnrepresentablePairs(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*Props)
	}{
		{"empty key", func(p *Props) { p.Set("", "v") }},
		{"NUL in key", func(p *Props) { p.Set("k\x00k", "v") }},
		{"NUL in value", func(p *Props) { p.Set("k", "v\x00v") }},
		{"oversized key", func(p *Props) { p.Set(strings.Repeat("k", 2000), "v") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			defer func() {
				if recover() == nil {
					t.Errorf("%s: Set did not panic", tt.name)
				}
			}()
			tt.fn(p)
		})
	}
}

// TestFromMapIsDeterministic verifies map construction orders by key.
func TestFromMapIsDeterministic(t *testing.T) {
	m := map[string]string{"z": "26", "a": "1", "m": "13"}
	p := FromMap(m)
	var keys []string
	for k := range p.All() {
		keys = append(keys, k)
	}
	want := []string{"a", "m", "z"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}

// TestCopyIndependence verifies a copy does not share state.
func TestCopyIndependence(t *testing.T) {
	p := New("k", "original")
	c := p.Copy()
	p.Set("k", "changed")
	p.Set("extra", "1")
	if v, _ := c.Get("k"); v != "original" {
		t.Errorf("copy value = %q, want original", v)
	}
	if c.Len() != 1 {
		t.Errorf("copy Len() = %d, want 1", c.Len())
	}
}

// TestNilPropsBehaveEmpty verifies nil receivers act as empty tables,
// which boundary calls rely on when no properties are passed.
func TestNilPropsBehaveEmpty(t *testing.T) {
	var p *Props
	if p.Len() != 0 {
		t.Errorf("nil Len() = %d, want 0", p.Len())
	}
	if _, ok := p.Get("k"); ok {
		t.Error("nil Get hit")
	}
	if p.Dict() != nil {
		t.Error("nil Dict() != nil")
	}
	if c := p.Copy(); c.Len() != 0 {
		t.Errorf("nil Copy().Len() = %d, want 0", c.Len())
	}
}

// TestPropsString verifies diagnostic rendering matches the view format.
func TestPropsString(t *testing.T) {
	p := New("K0", "V0")
	if got := p.String(); got != `{"K0": "V0"}` {
		t.Errorf("String() = %q, want %q", got, `{"K0": "V0"}`)
	}
}
