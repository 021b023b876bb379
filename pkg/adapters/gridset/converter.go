package gridset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/aretw0/lattice/internal/archive"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// Format is the format name of gridset archives.
const Format = "gridset"

// Converter implements ports.Converter for Grid 3 gridsets.
type Converter struct {
	logger  *slog.Logger
	symbols ports.SymbolResolver
	hooks   domain.Hooks
}

var _ ports.Converter = (*Converter)(nil)

// Option configures the Converter.
type Option func(*Converter)

// WithLogger sets the logger used for recovered problems (skipped cells, pages
// and unresolved references).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithSymbolResolver sets the resolver consulted for "[library]token" images.
func WithSymbolResolver(r ports.SymbolResolver) Option {
	return func(c *Converter) {
		c.symbols = r
	}
}

// WithHooks registers observability callbacks.
func WithHooks(h domain.Hooks) Option {
	return func(c *Converter) {
		c.hooks = h
	}
}

// New creates a gridset converter.
func New(opts ...Option) *Converter {
	c := &Converter{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Format implements ports.Converter.
func (c *Converter) Format() string {
	return Format
}

// Extensions implements ports.Converter.
func (c *Converter) Extensions() []string {
	return []string{".gridset"}
}

// ExtractTexts implements ports.Converter.
func (c *Converter) ExtractTexts(ctx context.Context, source string) (texts []string, err error) {
	start := time.Now()
	var tree *domain.Tree
	defer func() { c.finish(ctx, domain.OpExtract, source, tree, start, err) }()

	tree, err = c.load(ctx, source, domain.ImportOptions{})
	if err != nil {
		return nil, err
	}
	return tree.Texts(), nil
}

// LoadIntoTree implements ports.Converter.
func (c *Converter) LoadIntoTree(ctx context.Context, source string, opts domain.ImportOptions) (tree *domain.Tree, err error) {
	start := time.Now()
	defer func() { c.finish(ctx, domain.OpLoad, source, tree, start, err) }()

	tree, err = c.load(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// ProcessTexts implements ports.Converter. A "target_lang" entry in table sets
// the board-set language to the matching Grid 3 locale.
func (c *Converter) ProcessTexts(ctx context.Context, source string, table map[string]string, destination string) (data []byte, err error) {
	start := time.Now()
	var tree *domain.Tree
	defer func() { c.finish(ctx, domain.OpProcess, destination, tree, start, err) }()

	tree, err = c.load(ctx, source, domain.DefaultImportOptions())
	if err != nil {
		return nil, err
	}
	n := tree.Translate(table)
	if lang, ok := domain.TargetLanguage(table); ok {
		tree.Language = MapLanguage(lang)
	}
	c.logger.Debug("translated gridset", "source", source, "replacements", n)

	data, err = c.save(ctx, tree)
	if err != nil {
		return nil, err
	}
	if err := archive.Publish(destination, data); err != nil {
		return nil, domain.NewError(domain.KindIO, "gridset.process", destination, err)
	}
	return data, nil
}

// SaveFromTree implements ports.Converter.
func (c *Converter) SaveFromTree(ctx context.Context, tree *domain.Tree, destination string) (err error) {
	start := time.Now()
	defer func() { c.finish(ctx, domain.OpSave, destination, tree, start, err) }()

	data, err := c.save(ctx, tree)
	if err != nil {
		return err
	}
	if err := archive.Publish(destination, data); err != nil {
		return domain.NewError(domain.KindIO, "gridset.save", destination, err)
	}
	return nil
}

func (c *Converter) finish(ctx context.Context, op, path string, tree *domain.Tree, start time.Time, err error) {
	pages := 0
	if tree != nil {
		pages = len(tree.Pages)
	}
	if err != nil {
		c.logger.Error("gridset conversion failed", "op", op, "path", path, "err", err)
	}
	c.hooks.EmitConversion(ctx, &domain.ConversionEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventConversion, Format: Format},
		Op:        op,
		Path:      path,
		Pages:     pages,
		Duration:  time.Since(start),
		Err:       err,
	})
}

// openArchive opens source and classifies failures.
func openArchive(source string) (*archive.Reader, error) {
	const op = "gridset.open"
	if _, err := os.Stat(source); err != nil {
		return nil, domain.NewError(domain.KindIO, op, source, err)
	}
	ar, err := archive.Open(source)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrAlgorithm) || errors.Is(err, zip.ErrChecksum) {
			return nil, domain.NewError(domain.KindCorruption, op, source, fmt.Errorf("not a gridset archive: %w", err))
		}
		return nil, domain.NewError(domain.KindIO, op, source, err)
	}
	return ar, nil
}
