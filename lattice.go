package lattice

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/adapters/gridset"
	"github.com/aretw0/lattice/pkg/adapters/snap"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/registry"
)

// Engine is the high-level entry point for the Lattice library.
// It picks a converter by file extension and exposes the four conversion operations.
type Engine struct {
	registry   *registry.Registry
	logger     *slog.Logger
	hooks      domain.Hooks
	symbols    ports.SymbolResolver
	scratchDir string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine and its default converters.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability hooks on the default converters.
func WithHooks(hooks domain.Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithRegistry replaces the default converter set.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithSymbolResolver sets the resolver for symbol-library image tokens.
func WithSymbolResolver(r ports.SymbolResolver) Option {
	return func(e *Engine) {
		e.symbols = r
	}
}

// WithScratchDir sets where converters that need a filesystem work area create it.
func WithScratchDir(dir string) Option {
	return func(e *Engine) {
		e.scratchDir = dir
	}
}

// New initializes an Engine. Without WithRegistry it handles gridset and Snap files.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.registry == nil {
		gridOpts := []gridset.Option{gridset.WithLogger(e.logger), gridset.WithHooks(e.hooks)}
		if e.symbols != nil {
			gridOpts = append(gridOpts, gridset.WithSymbolResolver(e.symbols))
		}
		e.registry = registry.NewRegistry(
			gridset.New(gridOpts...),
			snap.New(snap.WithLogger(e.logger), snap.WithHooks(e.hooks), snap.WithScratchDir(e.scratchDir)),
		)
	}
	return e
}

// Registry returns the converter registry used by the engine.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// CanProcess reports whether a converter handles path.
func (e *Engine) CanProcess(path string) bool {
	return e.registry.CanProcess(path)
}

// ExtractTexts returns the translatable strings of a board file.
func (e *Engine) ExtractTexts(ctx context.Context, source string) ([]string, error) {
	conv, err := e.registry.ForPath(source)
	if err != nil {
		return nil, err
	}
	return conv.ExtractTexts(ctx, source)
}

// LoadIntoTree imports a board file into the canonical tree.
func (e *Engine) LoadIntoTree(ctx context.Context, source string, opts domain.ImportOptions) (*domain.Tree, error) {
	conv, err := e.registry.ForPath(source)
	if err != nil {
		return nil, err
	}
	return conv.LoadIntoTree(ctx, source, opts)
}

// ProcessTexts writes a translated copy of source. An empty destination is
// derived from the table's target language with DefaultTranslatedPath. It
// returns the destination actually written and the produced bytes.
func (e *Engine) ProcessTexts(ctx context.Context, source string, table map[string]string, destination string) (string, []byte, error) {
	conv, err := e.registry.ForPath(source)
	if err != nil {
		return "", nil, err
	}
	if destination == "" {
		lang, _ := domain.TargetLanguage(table)
		destination = DefaultTranslatedPath(source, lang)
	}
	data, err := conv.ProcessTexts(ctx, source, table, destination)
	if err != nil {
		return "", nil, err
	}
	e.logger.Info("translated board", "source", source, "destination", destination, "format", conv.Format())
	return destination, data, nil
}

// SaveFromTree exports a tree in the format implied by destination's extension.
func (e *Engine) SaveFromTree(ctx context.Context, tree *domain.Tree, destination string) error {
	conv, err := e.registry.ForPath(destination)
	if err != nil {
		return err
	}
	return conv.SaveFromTree(ctx, tree, destination)
}

// Convert loads source with its converter and saves it with the converter of
// destination, which may be a different format.
func (e *Engine) Convert(ctx context.Context, source, destination string, opts domain.ImportOptions) (*domain.Tree, error) {
	from, err := e.registry.ForPath(source)
	if err != nil {
		return nil, err
	}
	to, err := e.registry.ForPath(destination)
	if err != nil {
		return nil, err
	}
	tree, err := from.LoadIntoTree(ctx, source, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}
	if err := to.SaveFromTree(ctx, tree, destination); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", destination, err)
	}
	e.logger.Info("converted board", "from", from.Format(), "to", to.Format(), "pages", len(tree.Pages))
	return tree, nil
}

// maxLanguageSuffix is the longest trailing "_xx" segment treated as a language code.
const maxLanguageSuffix = 5

// DefaultTranslatedPath names the translated copy of source: "<base>_<lang><ext>".
// An existing short suffix ("board_en.gridset") is replaced rather than stacked.
// An empty lang yields "unknown".
func DefaultTranslatedPath(source, lang string) string {
	if lang == "" {
		lang = "unknown"
	}
	dir, file := filepath.Split(source)
	ext := filepath.Ext(file)
	base := strings.TrimSuffix(file, ext)
	if i := strings.LastIndex(base, "_"); i > 0 && len(base)-i-1 <= maxLanguageSuffix {
		base = base[:i]
	}
	return filepath.Join(dir, base+"_"+lang+ext)
}
