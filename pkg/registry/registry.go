// Package registry selects a converter for a board file by its extension.
package registry

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/lattice/pkg/ports"
)

// ErrNoConverter is returned when no registered converter handles a file.
var ErrNoConverter = errors.New("no converter for file")

// Registry maps file extensions and format names to converters.
type Registry struct {
	mu      sync.RWMutex
	byExt   map[string]ports.Converter
	byName  map[string]ports.Converter
	formats []string
}

// NewRegistry creates a registry holding the given converters.
func NewRegistry(converters ...ports.Converter) *Registry {
	r := &Registry{
		byExt:  make(map[string]ports.Converter),
		byName: make(map[string]ports.Converter),
	}
	for _, c := range converters {
		r.Register(c)
	}
	return r
}

// Register adds a converter under its format name and every extension it claims.
// A later registration for the same extension overwrites the earlier one.
func (r *Registry) Register(c ports.Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[c.Format()]; !exists {
		r.formats = append(r.formats, c.Format())
	}
	r.byName[c.Format()] = c
	for _, ext := range c.Extensions() {
		r.byExt[normalizeExt(ext)] = c
	}
}

// ForPath returns the converter handling path, judged by its extension.
func (r *Registry) ForPath(path string) (ports.Converter, error) {
	ext := normalizeExt(filepath.Ext(path))
	r.mu.RLock()
	c, ok := r.byExt[ext]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoConverter, path)
	}
	return c, nil
}

// ForFormat returns the converter registered under a format name.
func (r *Registry) ForFormat(format string) (ports.Converter, error) {
	r.mu.RLock()
	c, ok := r.byName[strings.ToLower(format)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: format %q", ErrNoConverter, format)
	}
	return c, nil
}

// CanProcess reports whether some converter handles path.
func (r *Registry) CanProcess(path string) bool {
	_, err := r.ForPath(path)
	return err == nil
}

// Formats returns the registered format names in registration order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.formats...)
}

// Extensions returns every handled extension, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
