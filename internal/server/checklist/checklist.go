// Package checklist is the serialization boundary for task checklists. Items
// are opaque JSON values kept byte-for-byte (after compaction), so arbitrary
// nested structures survive a store round trip.
package checklist

import (
	"bytes"
	"encoding/json"
)

// Checklist is an ordered sequence of opaque checklist items.
type Checklist []json.RawMessage

// MarshalJSON renders an empty or nil checklist as [] rather than null.
func (c Checklist) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal([]json.RawMessage(c))
}

// Encode serializes c for storage in a text column.
func Encode(c Checklist) (string, error) {
	b, err := c.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses a stored blob. An empty or null blob is an empty checklist.
// A blob that is not a JSON array yields an empty checklist and ok == false;
// it is never an error, so one corrupt row cannot fail a whole listing.
func Decode(blob string) (items Checklist, ok bool) {
	trimmed := bytes.TrimSpace([]byte(blob))
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Checklist{}, true
	}

	if err := json.Unmarshal(trimmed, &items); err != nil {
		return Checklist{}, false
	}
	if items == nil {
		items = Checklist{}
	}
	return items, true
}
