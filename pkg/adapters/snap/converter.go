package snap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/lattice/internal/archive"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// Format is the format name of Snap page sets.
const Format = "snap"

// databaseEntry is the name of the database inside written containers.
const databaseEntry = "pageset.db"

// Converter implements ports.Converter for Snap page sets.
type Converter struct {
	logger     *slog.Logger
	hooks      domain.Hooks
	scratchDir string
}

var _ ports.Converter = (*Converter)(nil)

// Option configures the Converter.
type Option func(*Converter)

// WithLogger sets the logger used for recovered problems.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithHooks registers observability callbacks.
func WithHooks(h domain.Hooks) Option {
	return func(c *Converter) {
		c.hooks = h
	}
}

// WithScratchDir sets the parent of the per-call scratch areas. The system temp
// dir is used by default.
func WithScratchDir(dir string) Option {
	return func(c *Converter) {
		c.scratchDir = dir
	}
}

// New creates a Snap converter.
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
	return []string{".sps", ".spb"}
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

// ProcessTexts implements ports.Converter. A "target_lang" entry in table is
// stored as the page set language.
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
		tree.Language = lang
	}
	c.logger.Debug("translated page set", "source", source, "replacements", n)

	data, err = c.save(ctx, tree)
	if err != nil {
		return nil, err
	}
	if err := archive.Publish(destination, data); err != nil {
		return nil, domain.NewError(domain.KindIO, "snap.process", destination, err)
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
		return domain.NewError(domain.KindIO, "snap.save", destination, err)
	}
	return nil
}

func (c *Converter) finish(ctx context.Context, op, path string, tree *domain.Tree, start time.Time, err error) {
	pages := 0
	if tree != nil {
		pages = len(tree.Pages)
	}
	if err != nil {
		c.logger.Error("snap conversion failed", "op", op, "path", path, "err", err)
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

// source is an opened page set. Close releases the database and the scratch area.
type source struct {
	db      *sql.DB
	caps    capabilities
	scratch *archive.Scratch
}

func (s *source) Close() error {
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if rerr := s.scratch.Release(); err == nil {
		err = rerr
	}
	return err
}

// open locates the database of a page set, opens it read-only and probes its
// schema. Zip containers are extracted into a scratch area first.
func (c *Converter) open(ctx context.Context, src string) (*source, error) {
	const op = "snap.open"
	if _, err := os.Stat(src); err != nil {
		return nil, domain.NewError(domain.KindIO, op, src, err)
	}
	kind, mime, err := archive.Sniff(src)
	if err != nil {
		return nil, domain.NewError(domain.KindIO, op, src, err)
	}

	s := &source{}
	dbPath := src
	switch kind {
	case archive.KindSQLite:
	case archive.KindZip:
		s.scratch, err = archive.AcquireScratch(c.scratchDir, "lattice-snap")
		if err != nil {
			return nil, domain.NewError(domain.KindIO, op, src, err)
		}
		dbPath, err = extractDatabase(src, s.scratch)
		if err != nil {
			s.Close()
			return nil, err
		}
	default:
		return nil, domain.NewError(domain.KindCorruption, op, src, fmt.Errorf("not a page set (detected %s)", mime))
	}

	s.db, err = sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		s.Close()
		return nil, domain.NewError(domain.KindIO, op, src, err)
	}
	s.db.SetMaxOpenConns(1)

	s.caps, err = probe(ctx, s.db)
	if err != nil {
		s.Close()
		return nil, classify(op, src, err)
	}
	if missing := s.caps.missing(); len(missing) > 0 {
		s.Close()
		return nil, domain.NewError(domain.KindStructural, op, src,
			fmt.Errorf("missing tables: %s", strings.Join(missing, ", ")))
	}
	return s, nil
}

// extractDatabase copies the database entry of a zip container into scratch.
// A lone entry is taken as the database whatever its name; otherwise database
// extensions are preferred, then sniffed content.
func extractDatabase(src string, scratch *archive.Scratch) (string, error) {
	const op = "snap.open"
	ar, err := archive.Open(src)
	if err != nil {
		return "", domain.NewError(domain.KindCorruption, op, src, err)
	}
	defer ar.Close()

	var files []string
	for _, name := range ar.Names() {
		if !strings.HasSuffix(name, "/") {
			files = append(files, name)
		}
	}
	entry := pickDatabase(ar, files)
	if entry == "" {
		return "", domain.NewError(domain.KindStructural, op, src, fmt.Errorf("container holds no database"))
	}
	dest := scratch.Path(databaseEntry)
	if err := ar.Extract(entry, dest); err != nil {
		return "", domain.NewError(domain.KindIO, op, entry, err)
	}
	return dest, nil
}

func pickDatabase(ar *archive.Reader, files []string) string {
	if len(files) == 1 {
		return files[0]
	}
	for _, name := range files {
		switch strings.ToLower(path.Ext(name)) {
		case ".db", ".sqlite", ".sqlite3", ".sps", ".spb":
			return name
		}
	}
	for _, name := range files {
		data, err := ar.ReadFile(name)
		if err != nil {
			continue
		}
		if kind, _ := archive.SniffBytes(data); kind == archive.KindSQLite {
			return name
		}
	}
	return ""
}
