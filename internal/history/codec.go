// Package history encodes the per-peer message history blob.
//
// The stored form is a JSON object mapping message id to the last known
// text, e.g. {"41":"hi","42":"brb"}. Message ids are numeric but JSON
// object keys are strings; encoding/json handles the int64-keyed map
// transparently and sorts keys, so Encode is deterministic.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed marks a blob that cannot be decoded into a message mapping.
// Callers are expected to treat the peer as having no usable history and
// surface the condition, never to salvage partial entries.
var ErrMalformed = errors.New("malformed history blob")

// Encode serializes the mapping. A nil map encodes as the empty mapping.
func Encode(messages map[int64]string) (string, error) {
	if messages == nil {
		messages = map[int64]string{}
	}
	b, err := json.Marshal(messages)
	if err != nil {
		return "", fmt.Errorf("encode history: %w", err)
	}
	return string(b), nil
}

// Decode parses a stored blob back into the mapping.
// Anything that is not a JSON object of message-id -> text fails with
// ErrMalformed; an empty blob is malformed too (the empty mapping is "{}").
func Decode(blob string) (map[int64]string, error) {
	if strings.TrimSpace(blob) == "" {
		return nil, fmt.Errorf("%w: empty blob", ErrMalformed)
	}
	var m map[int64]string
	if err := json.Unmarshal([]byte(blob), &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if m == nil {
		// JSON "null" unmarshals into a nil map.
		return nil, fmt.Errorf("%w: null mapping", ErrMalformed)
	}
	return m, nil
}
