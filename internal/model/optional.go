package model

import (
	"bytes"
	"encoding/json"
)

// Optional holds a value that may be absent from a JSON payload.  Set is
// true whenever the key was present, Null when it was present as `null`.
// This keeps "field omitted" apart from "field explicitly cleared".
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: v} }

// UnmarshalJSON implements json.Unmarshaler.  It is only invoked when the key
// exists in the payload, which is what marks the field as Set.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}
