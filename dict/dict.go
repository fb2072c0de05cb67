package dict

import (
	"iter"
	"strings"

	"github.com/opd-ai/wirekit/abi"
)

// Foreign is a read-only view of a raw dictionary someone else owns,
// typically one that arrived on a boundary call. The view is only as
// durable as its backing table: a Foreign received in a callback is valid
// for that callback and must be copied out (see Props and Copy) to be
// retained. A Foreign over a nil table is a valid empty view.
type Foreign struct {
	raw *abi.RawDict
}

// View wraps a raw dictionary without copying it.
func View(raw *abi.RawDict) Foreign {
	return Foreign{raw: raw}
}

// Len returns the number of entries in the table, counting entries the
// UTF-8 filtered iterators would skip.
func (d Foreign) Len() int {
	if d.raw == nil {
		return 0
	}
	return len(d.raw.Items)
}

// IsEmpty reports whether the table has no entries.
func (d Foreign) IsEmpty() bool {
	return d.Len() == 0
}

// Flags returns the advertised flag bits of the table. Flags describe what
// the producer claims, abi.DictSorted included; nothing validates the claim.
func (d Foreign) Flags() uint32 {
	if d.raw == nil {
		return 0
	}
	return d.raw.Flags
}

// Raw iterates the entries as raw bytes with terminators trimmed, in table
// order, one yield per entry. Every range over it restarts from the first
// entry. An entry without a NUL terminator is malformed and panics.
func (d Foreign) Raw() iter.Seq2[[]byte, []byte] {
	return func(yield func([]byte, []byte) bool) {
		if d.raw == nil {
			return
		}
		for _, item := range d.raw.Items {
			if !yield(abi.GoBytes(item.Key), abi.GoBytes(item.Value)) {
				return
			}
		}
	}
}

// All iterates the entries whose key and value are both valid UTF-8, in
// table order, lazily decoding as it goes. Entries that fail the filter
// are skipped, not reported. Every range over it restarts from the first
// entry.
func (d Foreign) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if d.raw == nil {
			return
		}
		for _, item := range d.raw.Items {
			k, ok := abi.GoStr(item.Key)
			if !ok {
				continue
			}
			v, ok := abi.GoStr(item.Value)
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// Keys iterates the keys of the UTF-8 valid entries.
func (d Foreign) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for k := range d.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values iterates the values of the UTF-8 valid entries.
func (d Foreign) Values() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, v := range d.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Get returns the value of the first UTF-8 valid entry whose key equals
// key. Duplicate keys are legal in raw tables; the first match wins.
func (d Foreign) Get(key string) (string, bool) {
	for k, v := range d.All() {
		if k == key {
			return v, true
		}
	}
	return "", false
}

// Copy materializes the UTF-8 valid entries into an owned Props, detaching
// them from the backing table's lifetime. Duplicate keys collapse to the
// first occurrence, matching what Get would have returned.
func (d Foreign) Copy() *Props {
	p := &Props{vals: make(map[string]string)}
	for k, v := range d.All() {
		if _, dup := p.vals[k]; dup {
			continue
		}
		p.set(k, v)
	}
	return p
}

// String renders the UTF-8 valid entries for diagnostics, in table order.
func (d Foreign) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for k, v := range d.All() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteByte('"')
		b.WriteString(k)
		b.WriteString(`": "`)
		b.WriteString(v)
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}
