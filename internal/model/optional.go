package model

import "encoding/json"

// Optional is a three-state JSON field for partial updates: absent from the
// payload, explicitly null, or a value. Plain pointers cannot distinguish
// absent from null, which makes PATCH semantics ambiguous.
type Optional[T any] struct {
	// Set is true when the field appeared in the payload at all.
	Set bool
	// Valid is true when the field carried a non-null value.
	Valid bool
	Value T
}

// UnmarshalJSON is only invoked for fields present in the payload, so Set
// is true whenever it runs.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// MarshalJSON round-trips the value; absent and null both encode as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
