// Package tree models an already-decoded configuration document as a small
// tagged variant, independent of the serialization format it came from.
package tree

import (
	"fmt"
	"sort"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is one node of a generic configuration tree. The zero Value is null.
type Value struct {
	kind   Kind
	str    string
	items  []Value
	keys   []string
	fields map[string]Value
}

// Field is one key/value entry of a map Value.
type Field struct {
	Key   string
	Value Value
}

// Null returns the null Value.
func Null() Value { return Value{} }

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// List returns a list Value holding items in order.
func List(items ...Value) Value {
	return Value{kind: KindList, items: append([]Value(nil), items...)}
}

// Strings is shorthand for a list of string Values.
func Strings(ss ...string) Value {
	items := make([]Value, len(ss))
	for i, s := range ss {
		items[i] = String(s)
	}
	return Value{kind: KindList, items: items}
}

// Map returns a map Value. Key order is preserved; a repeated key keeps its
// first position and its last value.
func Map(fields ...Field) Value {
	v := Value{kind: KindMap, fields: make(map[string]Value, len(fields))}
	for _, f := range fields {
		if _, ok := v.fields[f.Key]; !ok {
			v.keys = append(v.keys, f.Key)
		}
		v.fields[f.Key] = f.Value
	}
	return v
}

// F builds a Field.
func F(key string, value Value) Field {
	return Field{Key: key, Value: value}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string held by v.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Items returns the elements of a list Value.
func (v Value) Items() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.items, true
}

// Get looks up key in a map Value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	f, ok := v.fields[key]
	return f, ok
}

// Keys returns map keys in insertion order.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	return append([]string(nil), v.keys...)
}

// Len is the number of list items or map entries, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.items)
	case KindMap:
		return len(v.keys)
	}
	return 0
}

// FromAny converts the output of a generic decoder (encoding/json, go-toml)
// into a Value. Scalars other than strings are rendered with fmt so that a
// keyword written as 2024 still reads as "2024". Go maps carry no order, so
// their keys are sorted.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return String(fmt.Sprint(t)), nil
	case fmt.Stringer:
		return String(t.String()), nil
	case []any:
		items := make([]Value, 0, len(t))
		for i, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, v)
		}
		return Value{kind: KindList, items: items}, nil
	case []map[string]any:
		items := make([]Value, 0, len(t))
		for i, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, v)
		}
		return Value{kind: KindList, items: items}, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, 0, len(keys))
		for _, k := range keys {
			v, err := FromAny(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			fields = append(fields, F(k, v))
		}
		return Map(fields...), nil
	}
	return Value{}, fmt.Errorf("unsupported value of type %T", x)
}
