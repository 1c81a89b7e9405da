package model

import "encoding/json"

// Optional wraps a JSON field whose absence, explicit null, and value
// must all be distinguishable. Set is true when the field appeared in
// the payload at all; Valid is true when it carried a non-null value.
type Optional[T any] struct {
	Value T
	Set   bool
	Valid bool
}

// UnmarshalJSON records presence before decoding. json.Unmarshal only
// calls this for fields present in the payload, so absent fields keep
// Set == false.
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

// MarshalJSON round-trips the value; null when unset or explicitly null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true, Valid: true}
}

// Null returns an Optional that was explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}
