package beatmap

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Metadata is a string map that remembers insertion order.
// Setting an existing key overwrites the value in place.
type Metadata struct {
	keys   []string
	values map[string]string
}

func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]string)}
}

// MetadataFrom builds a Metadata from a plain map, inserting keys in sorted order.
func MetadataFrom(m map[string]string) *Metadata {
	md := NewMetadata()
	keys := maps.Keys(m)
	slices.Sort(keys)
	for _, k := range keys {
		md.Set(k, m[k])
	}
	return md
}

func (m *Metadata) init() {
	if m.values == nil {
		m.values = make(map[string]string)
	}
}

func (m *Metadata) Set(key, value string) {
	m.init()
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Metadata) Get(key string) (string, bool) {
	if m == nil || m.values == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

func (m *Metadata) Delete(key string) {
	if m == nil || m.values == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	if i := slices.Index(m.keys, key); i >= 0 {
		m.keys = slices.Delete(m.keys, i, i+1)
	}
}

func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

func (m *Metadata) SortedKeys() []string {
	keys := m.Keys()
	slices.Sort(keys)
	return keys
}

// Map returns a plain copy of the key/value pairs.
func (m *Metadata) Map() map[string]string {
	out := make(map[string]string, m.Len())
	if m != nil {
		for k, v := range m.values {
			out[k] = v
		}
	}
	return out
}

func (m *Metadata) Clone() *Metadata {
	c := NewMetadata()
	for _, k := range m.Keys() {
		c.Set(k, m.values[k])
	}
	return c
}

// Equal reports whether both hold the same pairs, ignoring order.
func (m *Metadata) Equal(o *Metadata) bool {
	return maps.Equal(m.Map(), o.Map())
}
