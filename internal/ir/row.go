package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Row is an ordered mapping of column key to Value.
//
// Key order is insertion order; Set on an existing key keeps its position.
// The zero Row is empty and ready to use.
//
// Row is not safe for concurrent mutation.
type Row struct {
	keys []string
	vals map[string]Value
}

// Pair is a key/value pair for ordered Row construction.
type Pair struct {
	Key   string
	Value Value
}

// P is a shorthand Pair constructor that converts plain Go values.
// Example: NewRow(P("id", 1), P("name", "A"))
func P(key string, value any) Pair {
	return Pair{Key: key, Value: MustFromAny(value)}
}

// NewRow creates a Row from pairs in the given order.
func NewRow(pairs ...Pair) *Row {
	r := &Row{}
	for _, p := range pairs {
		r.Set(p.Key, p.Value)
	}
	return r
}

// RowFromMap builds a Row from a decoded map. Keys are sorted because Go maps
// carry no order.
func RowFromMap(m map[string]any) (*Row, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := &Row{}
	for _, k := range keys {
		v, err := FromAny(m[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		r.Set(k, v)
	}
	return r, nil
}

// Len returns the number of keys.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns a copy of the keys in order.
func (r *Row) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Has reports whether key is present (even if its value is Null).
func (r *Row) Has(key string) bool {
	if r == nil || r.vals == nil {
		return false
	}
	_, ok := r.vals[key]
	return ok
}

// Lookup returns the value for key and whether it was present.
func (r *Row) Lookup(key string) (Value, bool) {
	if r == nil || r.vals == nil {
		return Null{}, false
	}
	v, ok := r.vals[key]
	if !ok {
		return Null{}, false
	}
	return v, true
}

// Get returns the value for key, or Null if absent.
func (r *Row) Get(key string) Value {
	v, _ := r.Lookup(key)
	return v
}

// Set assigns a value, appending key if it is new.
func (r *Row) Set(key string, v Value) {
	if v == nil {
		v = Null{}
	}
	if r.vals == nil {
		r.vals = make(map[string]Value)
	}
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

// Delete removes key if present.
func (r *Row) Delete(key string) {
	if !r.Has(key) {
		return
	}
	delete(r.vals, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Merge copies every key of other into r, preserving other's order for new keys.
func (r *Row) Merge(other *Row) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		r.Set(k, other.vals[k])
	}
}

// Clone returns a deep copy.
func (r *Row) Clone() *Row {
	if r == nil {
		return nil
	}
	c := &Row{
		keys: make([]string, len(r.keys)),
		vals: make(map[string]Value, len(r.vals)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.vals {
		c.vals[k] = v
	}
	return c
}

// ReplaceWith overwrites r's contents with a copy of other, keeping r's identity.
func (r *Row) ReplaceWith(other *Row) {
	c := other.Clone()
	if c == nil {
		c = &Row{}
	}
	r.keys = c.keys
	r.vals = c.vals
}

// Equal reports whether both rows hold the same keys with strictly equal values.
// Key order is ignored.
func (r *Row) Equal(other *Row) bool {
	if r.Len() != other.Len() {
		return false
	}
	for _, k := range r.Keys() {
		ov, ok := other.Lookup(k)
		if !ok || !Equal(r.Get(k), ov) {
			return false
		}
	}
	return true
}

// ToMap converts the row to a plain map (key order is lost).
func (r *Row) ToMap() map[string]any {
	m := make(map[string]any, r.Len())
	for _, k := range r.Keys() {
		m[k] = ToAny(r.Get(k))
	}
	return m
}

// MarshalJSON writes the row as a JSON object in key order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(ToAny(r.Get(k)))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving key order.
// Nested arrays and objects are rejected: cells hold scalars only.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row must be a JSON object")
	}

	*r = Row{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("row key must be a string")
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		if _, nested := valTok.(json.Delim); nested {
			return fmt.Errorf("field %q: nested values are not supported", key)
		}
		v, err := FromAny(valTok)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		r.Set(key, v)
	}
	_, err = dec.Token()
	return err
}

// CloneRows deep-copies a row slice.
func CloneRows(rows []*Row) []*Row {
	out := make([]*Row, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out
}
