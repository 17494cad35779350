package params

import (
	"iter"
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Param is a single key/value pair.
type Param struct {
	Key   string
	Value Value
}

// P builds a Param, converting v with Of.
func P(key string, v any) Param {
	return Param{Key: key, Value: Of(v)}
}

// Bag is an ordered, immutable set of parameters.
// The zero Bag is empty and ready to use.
type Bag struct {
	entries []Param
}

// New builds a bag from params. A repeated key keeps its first position and
// takes the last value.
func New(ps ...Param) Bag {
	entries := make([]Param, 0, len(ps))
	for _, p := range ps {
		entries = set(entries, p.Key, p.Value)
	}
	return Bag{entries: entries}
}

// FromMap builds a bag from a map. Keys are ordered lexically because map
// iteration order is random.
func FromMap(m map[string]string) Bag {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Param, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Param{Key: k, Value: String(m[k])})
	}
	return Bag{entries: entries}
}

func set(entries []Param, key string, v Value) []Param {
	for i := range entries {
		if entries[i].Key == key {
			entries[i].Value = v
			return entries
		}
	}
	return append(entries, Param{Key: key, Value: v})
}

func (b Bag) clone(extra int) []Param {
	entries := make([]Param, len(b.entries), len(b.entries)+extra)
	copy(entries, b.entries)
	return entries
}

// Len returns the number of keys, absent values included.
func (b Bag) Len() int {
	return len(b.entries)
}

// Get returns the value stored for key.
func (b Bag) Get(key string) (Value, bool) {
	for _, e := range b.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Lookup returns the value for key, or an absent value when the key is missing.
func (b Bag) Lookup(key string) Value {
	v, _ := b.Get(key)
	return v
}

// Has reports whether key is present with a non-absent value.
func (b Bag) Has(key string) bool {
	v, ok := b.Get(key)
	return ok && !v.IsAbsent()
}

// Keys returns the keys in insertion order.
func (b Bag) Keys() []string {
	keys := make([]string, len(b.entries))
	for i, e := range b.entries {
		keys[i] = e.Key
	}
	return keys
}

// All iterates over the entries in insertion order.
func (b Bag) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, e := range b.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// With returns a copy of the bag with key set to v. An existing key keeps
// its position.
func (b Bag) With(key string, v any) Bag {
	return Bag{entries: set(b.clone(1), key, Of(v))}
}

// Without returns a copy of the bag with keys removed.
func (b Bag) Without(keys ...string) Bag {
	entries := make([]Param, 0, len(b.entries))
	for _, e := range b.entries {
		drop := false
		for _, k := range keys {
			if e.Key == k {
				drop = true
				break
			}
		}
		if !drop {
			entries = append(entries, e)
		}
	}
	return Bag{entries: entries}
}

// Merge returns a copy of the bag overlaid with other. Keys of other that
// already exist keep their position; new keys are appended.
func (b Bag) Merge(other Bag) Bag {
	entries := b.clone(len(other.entries))
	for _, e := range other.entries {
		entries = set(entries, e.Key, e.Value)
	}
	return Bag{entries: entries}
}

// Strings returns the non-absent values as strings.
func (b Bag) Strings() map[string]string {
	m := make(map[string]string, len(b.entries))
	for _, e := range b.entries {
		if !e.Value.IsAbsent() {
			m[e.Key] = e.Value.String()
		}
	}
	return m
}

// Encode form-encodes the bag into a query string. Absent values are
// dropped; the order of the remaining keys is preserved.
func (b Bag) Encode() string {
	var sb strings.Builder
	for _, e := range b.entries {
		if e.Value.IsAbsent() {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(formEscape(e.Key))
		sb.WriteByte('=')
		sb.WriteString(formEscape(e.Value.String()))
	}
	return sb.String()
}

// formReplacer adjusts url.QueryEscape output to the WHATWG
// application/x-www-form-urlencoded byte set, which escapes '~' and keeps '*'.
var formReplacer = strings.NewReplacer("~", "%7E", "%2A", "*")

func formEscape(s string) string {
	return formReplacer.Replace(url.QueryEscape(s))
}

// RedactedKeys lists parameters whose values are masked in logs.
var RedactedKeys = []string{"api_key"}

// MarshalZerologObject logs the transmitted parameters with credentials masked.
func (b Bag) MarshalZerologObject(e *zerolog.Event) {
	for _, p := range b.entries {
		if p.Value.IsAbsent() {
			continue
		}
		if isRedacted(p.Key) {
			e.Str(p.Key, "REDACTED")
			continue
		}
		e.Str(p.Key, p.Value.String())
	}
}

func isRedacted(key string) bool {
	for _, k := range RedactedKeys {
		if k == key {
			return true
		}
	}
	return false
}
