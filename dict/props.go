package dict

import (
	"iter"
	"sort"
	"strings"

	"github.com/opd-ai/wirekit/abi"
)

// Props is an owned, writable dictionary: what callers build to describe
// the objects they create and what Foreign views copy into when their
// backing table is about to go away. Entries keep insertion order; setting
// an existing key updates it in place.
type Props struct {
	keys []string
	vals map[string]string
}

// New builds a Props from alternating key/value strings.
// It panics on an odd count or on entries the boundary cannot represent.
func New(pairs ...string) *Props {
	if len(pairs)%2 != 0 {
		panic("dict: New requires an even number of strings")
	}
	p := &Props{vals: make(map[string]string, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		p.Set(pairs[i], pairs[i+1])
	}
	return p
}

// FromMap builds a Props from a map, ordering entries by key so two builds
// from equal maps produce identical tables.
func FromMap(m map[string]string) *Props {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	p := &Props{vals: make(map[string]string, len(m))}
	for _, k := range keys {
		p.Set(k, m[k])
	}
	return p
}

// Set stores key=value, updating in place when key exists. It panics when
// the pair cannot cross the boundary: empty or oversized key, oversized
// value, or interior NUL in either. Producing such a pair is a caller bug;
// validation errors name the offending limit.
func (p *Props) Set(key, value string) {
	if err := abi.ValidateName(key); err != nil {
		panic("dict: invalid key: " + err.Error())
	}
	if err := abi.ValidateValue(value); err != nil {
		panic("dict: invalid value: " + err.Error())
	}
	p.set(key, value)
}

func (p *Props) set(key, value string) {
	if p.vals == nil {
		p.vals = make(map[string]string)
	}
	if _, exists := p.vals[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = value
}

// Get returns the value stored under key.
func (p *Props) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.vals[key]
	return v, ok
}

// Delete removes key and reports whether it was present.
func (p *Props) Delete(key string) bool {
	if p == nil {
		return false
	}
	if _, ok := p.vals[key]; !ok {
		return false
	}
	delete(p.vals, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes all entries.
func (p *Props) Clear() {
	if p == nil {
		return
	}
	p.keys = p.keys[:0]
	p.vals = make(map[string]string)
}

// Len returns the number of entries. A nil Props is empty.
func (p *Props) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Copy returns an independent Props with the same entries in the same
// order. A nil receiver copies to an empty Props.
func (p *Props) Copy() *Props {
	c := &Props{vals: make(map[string]string, p.Len())}
	if p == nil {
		return c
	}
	for _, k := range p.keys {
		c.set(k, p.vals[k])
	}
	return c
}

// All iterates the entries in insertion order.
func (p *Props) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if p == nil {
			return
		}
		for _, k := range p.keys {
			if !yield(k, p.vals[k]) {
				return
			}
		}
	}
}

// Dict materializes the entries as a raw boundary table in insertion
// order. The result shares nothing with p; mutating p afterwards does not
// change it. A nil or empty Props materializes to nil, the boundary's
// spelling of "no properties".
func (p *Props) Dict() *abi.RawDict {
	if p.Len() == 0 {
		return nil
	}
	d := &abi.RawDict{Items: make([]abi.DictItem, 0, len(p.keys))}
	for _, k := range p.keys {
		d.Items = append(d.Items, abi.Item(k, p.vals[k]))
	}
	return d
}

// String renders the entries for diagnostics, matching Foreign.String.
func (p *Props) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for k, v := range p.All() {
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
