package abi

import (
	"errors"
	"fmt"
	"strings"
)

// Size limits applied where boundary data is produced or first received.
// They bound what a misbehaving peer or module can make the host hold.
const (
	// MaxNameLen is the maximum length of a boundary name: interface
	// types, factory names, dictionary keys.
	MaxNameLen = 1024

	// MaxValueLen is the maximum length of a dictionary value.
	MaxValueLen = 64 * 1024

	// MaxDictItems is the maximum number of entries in one dictionary.
	MaxDictItems = 4096
)

var (
	// ErrNameEmpty indicates an empty name was provided
	ErrNameEmpty = errors.New("empty name")

	// ErrNameTooLarge indicates a name exceeds MaxNameLen
	ErrNameTooLarge = errors.New("name too large")

	// ErrNameInvalid indicates a name contains an interior NUL
	ErrNameInvalid = errors.New("name contains NUL")

	// ErrValueTooLarge indicates a dictionary value exceeds MaxValueLen
	ErrValueTooLarge = errors.New("value too large")

	// ErrValueInvalid indicates a value contains an interior NUL
	ErrValueInvalid = errors.New("value contains NUL")

	// ErrDictTooLarge indicates a dictionary exceeds MaxDictItems
	ErrDictTooLarge = errors.New("dictionary too large")
)

// ValidateName validates a boundary name held as a Go string.
// Returns an error with context if the name is empty, oversized, or cannot
// be represented as a NUL-terminated string.
func ValidateName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("%w: length %d exceeds limit %d", ErrNameTooLarge, len(name), MaxNameLen)
	}
	if i := strings.IndexByte(name, 0); i >= 0 {
		return fmt.Errorf("%w: NUL at byte %d", ErrNameInvalid, i)
	}
	return nil
}

// ValidateValue validates a dictionary value held as a Go string.
// Values may be empty; only size and representability are checked.
func ValidateValue(value string) error {
	if len(value) > MaxValueLen {
		return fmt.Errorf("%w: length %d exceeds limit %d", ErrValueTooLarge, len(value), MaxValueLen)
	}
	if i := strings.IndexByte(value, 0); i >= 0 {
		return fmt.Errorf("%w: NUL at byte %d", ErrValueInvalid, i)
	}
	return nil
}

// ValidateDict validates a received raw dictionary against the table
// limits. Entry contents are not decoded here; consumers that need UTF-8
// apply their own filtering during iteration.
func ValidateDict(d *RawDict) error {
	if d == nil {
		return nil
	}
	if len(d.Items) > MaxDictItems {
		return fmt.Errorf("%w: %d entries exceed limit %d", ErrDictTooLarge, len(d.Items), MaxDictItems)
	}
	return nil
}
