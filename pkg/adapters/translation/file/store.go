package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/lattice/internal/archive"
	"github.com/aretw0/lattice/pkg/ports"
)

// Encoding of the table files.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Store implements ports.TranslationStore using the local filesystem.
// Each language is one flat "source: translation" file in BasePath.
type Store struct {
	BasePath string
	Format   string
}

var _ ports.TranslationStore = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithFormat selects FormatJSON (default) or FormatYAML.
func WithFormat(format string) Option {
	return func(s *Store) {
		s.Format = format
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".lattice/translations".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".lattice", "translations")
	}
	s := &Store{BasePath: basePath, Format: FormatJSON}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) ext() string {
	if s.Format == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

func (s *Store) path(lang string) (string, error) {
	if lang == "" || strings.ContainsAny(lang, `/\`) || lang == "." || lang == ".." {
		return "", fmt.Errorf("invalid language code %q", lang)
	}
	return filepath.Join(s.BasePath, lang+s.ext()), nil
}

// Load reads the table of a language.
func (s *Store) Load(ctx context.Context, lang string) (map[string]string, error) {
	p, err := s.path(lang)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ports.ErrTableNotFound, lang)
		}
		return nil, fmt.Errorf("failed to read translation table: %w", err)
	}
	return s.decode(data)
}

// Save merges entries into the table of a language and rewrites it atomically.
func (s *Store) Save(ctx context.Context, lang string, entries map[string]string) error {
	p, err := s.path(lang)
	if err != nil {
		return err
	}
	table, err := s.Load(ctx, lang)
	if err != nil {
		if !errors.Is(err, ports.ErrTableNotFound) {
			return err
		}
		table = make(map[string]string, len(entries))
	}
	for k, v := range entries {
		table[k] = v
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure translation directory: %w", err)
	}
	data, err := s.encode(table)
	if err != nil {
		return fmt.Errorf("failed to marshal translation table: %w", err)
	}
	if err := archive.Publish(p, data); err != nil {
		return fmt.Errorf("failed to write translation table: %w", err)
	}
	return nil
}

// Languages lists the languages with a table file.
func (s *Store) Languages(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list translation tables: %w", err)
	}
	langs := []string{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != s.ext() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		langs = append(langs, strings.TrimSuffix(e.Name(), s.ext()))
	}
	sort.Strings(langs)
	return langs, nil
}

// Delete removes the table of a language. Deleting a missing table is not an error.
func (s *Store) Delete(ctx context.Context, lang string) error {
	p, err := s.path(lang)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete translation table: %w", err)
	}
	return nil
}

func (s *Store) decode(data []byte) (map[string]string, error) {
	table := make(map[string]string)
	var err error
	if s.Format == FormatYAML {
		err = yaml.Unmarshal(data, &table)
	} else {
		err = json.Unmarshal(data, &table)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal translation table: %w", err)
	}
	return table, nil
}

func (s *Store) encode(table map[string]string) ([]byte, error) {
	if s.Format == FormatYAML {
		return yaml.Marshal(table)
	}
	return json.MarshalIndent(table, "", "  ")
}
