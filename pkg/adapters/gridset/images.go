package gridset

import (
	"context"
	"encoding/xml"
	"log/slog"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/aretw0/lattice/internal/archive"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".emf", ".wmf", ".bmp"}

var symbolToken = regexp.MustCompile(`^\[([^\]]+)\](.+)$`)

// imageResolver resolves cell images within one opened archive.
type imageResolver struct {
	ar      *archive.Reader
	symbols ports.SymbolResolver
	logger  *slog.Logger

	// dynamic maps a grid directory to the dynamic files the FileMap lists for it.
	dynamic map[string][]string
}

func newImageResolver(ar *archive.Reader, symbols ports.SymbolResolver, logger *slog.Logger) *imageResolver {
	r := &imageResolver{ar: ar, symbols: symbols, logger: logger, dynamic: make(map[string][]string)}
	data, err := ar.ReadFile(fileMapFile)
	if err != nil {
		return r
	}
	var fm fileMapXML
	if err := xml.Unmarshal(data, &fm); err != nil {
		logger.Warn("ignoring unreadable file map", "err", err)
		return r
	}
	for _, e := range fm.Entries {
		dir := path.Dir(archive.Normalize(e.StaticFile))
		for _, f := range e.DynamicFiles {
			r.dynamic[dir] = append(r.dynamic[dir], archive.Normalize(f))
		}
	}
	return r
}

// resolve finds the archive entry for a cell image. fileX/fileY are the cell
// coordinates as written in the grid file. The returned image is nil when the
// cell declares nothing and nothing was found; a declared but unresolved image
// keeps its name with an empty Path.
func (r *imageResolver) resolve(ctx context.Context, baseDir, declared string, fileX, fileY int) *domain.Image {
	declared = strings.TrimSpace(declared)

	if m := symbolToken.FindStringSubmatch(declared); m != nil && r.symbols != nil {
		img, ok, err := r.symbols.ResolveSymbol(ctx, m[1], m[2])
		if err != nil {
			r.logger.Warn("symbol resolver failed", "symbol", declared, "err", err)
		} else if ok && img != nil {
			if img.Name == "" {
				img.Name = declared
			}
			return img
		}
	}

	if name, ok := r.lookupDeclared(baseDir, declared); ok {
		return &domain.Image{Name: declared, Path: name}
	}

	prefix := strconv.Itoa(fileX) + "-" + strconv.Itoa(fileY) + "-"
	var candidates []string
	for _, f := range r.dynamic[baseDir] {
		if strings.HasPrefix(path.Base(f), prefix) && r.ar.Has(f) {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) > 0 {
		pick := candidates[0]
		for _, c := range candidates {
			if strings.Contains(strings.ToLower(path.Base(c)), "text") {
				pick = c
				break
			}
		}
		name, _ := r.ar.Lookup(pick)
		return &domain.Image{Name: nameOr(declared, path.Base(name)), Path: name}
	}

	exts := imageExtensions
	if ext := path.Ext(declared); ext != "" && !symbolToken.MatchString(declared) {
		exts = []string{ext}
	}
	stems := []string{
		strconv.Itoa(fileX) + "-" + strconv.Itoa(fileY),
		strconv.Itoa(fileX) + "-" + strconv.Itoa(fileY) + "-0-text-0",
	}
	for _, stem := range stems {
		for _, ext := range exts {
			if name, ok := r.ar.Lookup(path.Join(baseDir, stem+ext)); ok {
				return &domain.Image{Name: nameOr(declared, path.Base(name)), Path: name}
			}
		}
	}

	if declared != "" {
		r.logger.Debug("image unresolved", "image", declared, "dir", baseDir)
		return &domain.Image{Name: declared}
	}
	return nil
}

// resolveDeclared resolves a declared name against the grid directory only.
func (r *imageResolver) resolveDeclared(baseDir, declared string) *domain.Image {
	if name, ok := r.lookupDeclared(baseDir, declared); ok {
		return &domain.Image{Name: declared, Path: name}
	}
	return &domain.Image{Name: declared}
}

func (r *imageResolver) lookupDeclared(baseDir, declared string) (string, bool) {
	if declared == "" || symbolToken.MatchString(declared) {
		return "", false
	}
	for _, candidate := range []string{
		path.Join(baseDir, declared),
		path.Join(baseDir, "Images", declared),
	} {
		if name, ok := r.ar.Lookup(candidate); ok {
			return name, true
		}
	}
	return "", false
}

// load reads the bytes of a resolved image and sniffs its MIME type.
func (r *imageResolver) load(img *domain.Image) {
	if img == nil || img.Path == "" || len(img.Data) > 0 {
		return
	}
	data, err := r.ar.ReadFile(img.Path)
	if err != nil {
		r.logger.Warn("failed to read image", "image", img.Path, "err", err)
		return
	}
	img.Data = data
	if img.MIME == "" {
		img.MIME = mimetype.Detect(data).String()
	}
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
