package abi

// Dictionary flag bits. Flags advertise properties of the table; nothing in
// this module enforces them, and consumers must not rely on an advertised
// ordering they did not verify.
const (
	// DictSorted advertises that the items are sorted by key.
	DictSorted uint32 = 1 << 0
)

// DictItem is one key/value pair of a raw dictionary. Both sides are
// NUL-terminated boundary strings; neither is required to be valid UTF-8.
type DictItem struct {
	Key   []byte
	Value []byte
}

// RawDict is the borrowed string table that rides along boundary calls:
// object properties, factory info, instantiation arguments. The producer
// owns the backing storage; receivers view it through dict.Foreign and must
// copy out anything they keep past the call that delivered it.
type RawDict struct {
	Flags uint32
	Items []DictItem
}

// Item constructs a DictItem from Go strings.
func Item(key, value string) DictItem {
	return DictItem{Key: Str(key), Value: Str(value)}
}

// Dict constructs a RawDict from alternating key/value Go strings.
// It panics on an odd count; pairs are the unit of this table.
func Dict(pairs ...string) *RawDict {
	if len(pairs)%2 != 0 {
		panic("abi: Dict requires an even number of strings")
	}
	d := &RawDict{Items: make([]DictItem, 0, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		d.Items = append(d.Items, Item(pairs[i], pairs[i+1]))
	}
	return d
}
