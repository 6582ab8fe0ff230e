package cache

import (
	"encoding/json"
	"fmt"
)

// Key is an ordered cache key of strings and integers. Keys serialize to
// their canonical JSON array representation, which is the string form used
// by both the hot LRU and the cold store.
type Key []any

// K builds a key from its parts. Parts must be strings or integers;
// anything else panics, since key shapes are fixed at compile time.
func K(parts ...any) Key {
	for _, p := range parts {
		switch p.(type) {
		case string, int, int64:
		default:
			panic(fmt.Sprintf("cache: invalid key part %T", p))
		}
	}
	return Key(parts)
}

// String returns the canonical JSON array form of the key.
func (k Key) String() string {
	data, err := json.Marshal([]any(k))
	if err != nil {
		// Strings and integers always marshal.
		panic(fmt.Sprintf("cache: key marshal: %v", err))
	}
	return string(data)
}
