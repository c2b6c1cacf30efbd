// Package patch models partial updates where a field can be absent,
// explicitly null, or set to a value.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field is one optional column of a patch. Set is false when the key was
// absent; Value is nil when the key was present with null.
type Field[T any] struct {
	Set   bool
	Value *T
}

func Value[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

func (f Field[T]) IsNull() bool {
	return f.Set && f.Value == nil
}

// Arg is the value to hand to the database driver: nil for null.
func (f Field[T]) Arg() any {
	if f.Value == nil {
		return nil
	}
	return *f.Value
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}
