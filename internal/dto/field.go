package dto

import (
	"bytes"
	"encoding/json"
)

// Field tracks whether a JSON key was sent and whether it was null, which a
// plain pointer cannot tell apart.
type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// ValidationValue exposes the sent value to validate tags. Absent and null
// fields report nil, so "omitempty" skips them.
func (f Field[T]) ValidationValue() interface{} {
	if !f.Set || f.Null {
		return nil
	}
	return f.Value
}
