package ports

import (
	"context"

	"github.com/aretw0/lattice/pkg/domain"
)

// Converter translates between one board file format and the canonical tree.
// Implementations hold no per-call state, so a single value may serve sequential
// conversions; concurrent calls must not share a destination path.
type Converter interface {
	// Format returns the short format name (e.g. "gridset"). It also keys
	// Action.Platform entries produced by this converter.
	Format() string

	// Extensions returns the lower-case file extensions handled, with leading dot.
	Extensions() []string

	// ExtractTexts returns every label, message and page name in page then button
	// traversal order. Duplicates are kept.
	ExtractTexts(ctx context.Context, source string) ([]string, error)

	// LoadIntoTree performs a full import.
	LoadIntoTree(ctx context.Context, source string, opts domain.ImportOptions) (*domain.Tree, error)

	// ProcessTexts imports source, replaces every string found as a key of table,
	// exports to destination and returns the written bytes.
	ProcessTexts(ctx context.Context, source string, table map[string]string, destination string) ([]byte, error)

	// SaveFromTree performs a full export. The destination is only written once the
	// artifact is complete.
	SaveFromTree(ctx context.Context, tree *domain.Tree, destination string) error
}

// SymbolResolver resolves a symbol library reference to a concrete image.
// ok is false when the library or token is unknown; that is not an error.
type SymbolResolver interface {
	ResolveSymbol(ctx context.Context, library, token string) (img *domain.Image, ok bool, err error)
}

// SymbolResolverFunc adapts a plain function to SymbolResolver.
type SymbolResolverFunc func(ctx context.Context, library, token string) (*domain.Image, bool, error)

// ResolveSymbol calls f.
func (f SymbolResolverFunc) ResolveSymbol(ctx context.Context, library, token string) (*domain.Image, bool, error) {
	return f(ctx, library, token)
}
