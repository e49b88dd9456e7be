package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Children is an insertion-ordered mapping from a unique, non-empty key to a
// child node. It encodes as a JSON object whose members keep their order, so
// a decoded document re-encodes with its keys where they were.
// The zero value is an empty mapping ready to use.
type Children[V any] struct {
	keys []string
	vals map[string]V
}

// Len returns the number of children.
func (c *Children[V]) Len() int { return len(c.keys) }

// Keys returns the child keys in insertion order. The slice is a copy.
func (c *Children[V]) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Get returns the child bound to key.
func (c *Children[V]) Get(key string) (V, bool) {
	v, ok := c.vals[key]
	return v, ok
}

// Has reports whether key is bound.
func (c *Children[V]) Has(key string) bool {
	_, ok := c.vals[key]
	return ok
}

// Set binds key to v. A new key is appended after the existing ones; an
// existing key keeps its position.
func (c *Children[V]) Set(key string, v V) {
	if c.vals == nil {
		c.vals = make(map[string]V)
	}
	if _, ok := c.vals[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.vals[key] = v
}

// Delete removes key and reports whether it was bound.
func (c *Children[V]) Delete(key string) bool {
	if _, ok := c.vals[key]; !ok {
		return false
	}
	delete(c.vals, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
	return true
}

// Clone copies the mapping, applying cloneValue to every child.
func (c *Children[V]) Clone(cloneValue func(V) V) Children[V] {
	out := Children[V]{keys: make([]string, 0, len(c.keys)), vals: make(map[string]V, len(c.keys))}
	for _, k := range c.keys {
		out.keys = append(out.keys, k)
		out.vals[k] = cloneValue(c.vals[k])
	}
	return out
}

func (c Children[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalRaw(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalRaw(c.vals[k])
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Children[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	out := Children[V]{vals: make(map[string]V)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		if key == "" {
			return errors.New("empty key")
		}
		if out.Has(key) {
			return fmt.Errorf("duplicate key %q", key)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		if bytes.Equal(raw, nullLiteral) {
			return fmt.Errorf("decode %q: null value", key)
		}
		var v V
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		out.Set(key, v)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}
	*c = out
	return nil
}

var nullLiteral = []byte("null")

// marshalRaw encodes v without HTML escaping so labels such as "A&B" are
// written as typed.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		if want == '{' {
			return fmt.Errorf("expected object, got %v", tok)
		}
		return fmt.Errorf("expected %v, got %v", want, tok)
	}
	return nil
}
