package runtime

import "encoding/json"

// Optional wraps a value whose absence is meaningful on the wire. Unlike
// a plain pointer it survives JSON round-trips through enum payloads,
// where an absent payload and a null payload both decode as unset.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some builds a present Optional.
func Some[T any](v T) *Optional[T] {
	return &Optional[T]{Value: v, Set: true}
}

// None builds an absent Optional.
func None[T any]() *Optional[T] {
	return &Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Optional[T]{}
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Set = true
	return nil
}
