// Package style resolves button styles from layered sources (format default,
// named style, inline overrides) and deduplicates them again on export.
package style

import (
	"fmt"
	"sort"

	"dario.cat/mergo"

	"github.com/aretw0/lattice/pkg/domain"
)

// Merge layers styles in order: each non-zero field of a later layer overrides
// the same field of the earlier ones. Nil layers are skipped. It returns nil when
// the result carries no field at all.
func Merge(layers ...*domain.Style) (*domain.Style, error) {
	var out domain.Style
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		if err := mergo.Merge(&out, *layer, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge style: %w", err)
		}
	}
	if out.IsZero() {
		return nil, nil
	}
	return &out, nil
}

// Table is a named style table parsed from a format's style file.
type Table struct {
	Default *domain.Style
	styles  map[string]domain.Style
}

// NewTable creates an empty table with an optional format default.
func NewTable(def *domain.Style) *Table {
	return &Table{Default: def, styles: make(map[string]domain.Style)}
}

// Add registers a named style. Later definitions of the same key win.
func (t *Table) Add(key string, s domain.Style) {
	t.styles[key] = s
}

// Lookup returns the named style.
func (t *Table) Lookup(key string) (domain.Style, bool) {
	s, ok := t.styles[key]
	return s, ok
}

// Len returns the number of named styles.
func (t *Table) Len() int {
	return len(t.styles)
}

// Resolve applies default < named < inline. An unknown key is ignored: the
// reference stays unresolved and the remaining layers still apply.
func (t *Table) Resolve(key string, inline *domain.Style) (*domain.Style, bool, error) {
	var named *domain.Style
	found := key == ""
	if s, ok := t.styles[key]; ok && key != "" {
		named = &s
		found = true
	}
	merged, err := Merge(t.Default, named, inline)
	return merged, found, err
}

// Interner assigns stable generated keys to distinct styles, so that styles equal
// by content are written once.
type Interner struct {
	prefix string
	keys   map[domain.Style]string
}

// NewInterner creates an interner whose keys are prefix followed by a counter.
func NewInterner(prefix string) *Interner {
	return &Interner{prefix: prefix, keys: make(map[domain.Style]string)}
}

// Key returns the key for s, allocating one on first sight. Zero styles get "".
func (in *Interner) Key(s *domain.Style) string {
	if s == nil || s.IsZero() {
		return ""
	}
	if k, ok := in.keys[*s]; ok {
		return k
	}
	k := fmt.Sprintf("%s%d", in.prefix, len(in.keys)+1)
	in.keys[*s] = k
	return k
}

// Entry is one interned style.
type Entry struct {
	Key   string
	Style domain.Style
}

// Entries returns the interned styles ordered by key allocation.
func (in *Interner) Entries() []Entry {
	out := make([]Entry, 0, len(in.keys))
	for s, k := range in.keys {
		out = append(out, Entry{Key: k, Style: s})
	}
	sort.Slice(out, func(i, j int) bool {
		return keyIndex(in.prefix, out[i].Key) < keyIndex(in.prefix, out[j].Key)
	})
	return out
}

func keyIndex(prefix, key string) int {
	var n int
	_, _ = fmt.Sscanf(key[len(prefix):], "%d", &n)
	return n
}
