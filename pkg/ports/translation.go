package ports

import (
	"context"
	"errors"
)

// ErrTableNotFound is returned by TranslationStore.Load for unknown languages.
var ErrTableNotFound = errors.New("translation table not found")

// TranslationStore persists translation tables (source text -> translated text)
// keyed by target language code.
type TranslationStore interface {
	// Load returns the table for lang, or ErrTableNotFound.
	Load(ctx context.Context, lang string) (map[string]string, error)

	// Save merges entries into the table for lang. Existing keys are overwritten.
	Save(ctx context.Context, lang string, entries map[string]string) error

	// Languages lists the languages that have a table.
	Languages(ctx context.Context) ([]string, error)

	// Delete removes the table for lang. Deleting a missing table is not an error.
	Delete(ctx context.Context, lang string) error
}
