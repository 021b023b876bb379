package gridset

import (
	"context"
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/aretw0/lattice/internal/archive"
	"github.com/aretw0/lattice/internal/style"
	"github.com/aretw0/lattice/pkg/domain"
)

// Metadata keys set on imported buttons.
const (
	MetaWordList       = "gridset.wordlist"
	MetaContentType    = "gridset.content_type"
	MetaContentSubType = "gridset.content_subtype"
)

const contentTypeAuto = "AutoContent"

// parsedGrid is the result of the first pass over one grid file.
type parsedGrid struct {
	dir  string // e.g. "Grids/Food"
	id   string
	name string
	doc  *gridXML
}

func (c *Converter) load(ctx context.Context, source string, opts domain.ImportOptions) (*domain.Tree, error) {
	ar, err := openArchive(source)
	if err != nil {
		return nil, err
	}
	defer ar.Close()

	entries := ar.Glob(gridsDir + "/*/" + gridFile)
	if len(entries) == 0 {
		return nil, domain.NewError(domain.KindStructural, "gridset.load", source,
			fmt.Errorf("no %s/<name>/%s entries", gridsDir, gridFile))
	}

	// Pass one: bind grid names to page ids.
	var grids []*parsedGrid
	byName := make(map[string]string)
	byDir := make(map[string]string)
	for _, entry := range entries {
		g, err := parseGrid(ar, entry)
		if err != nil {
			c.logger.Warn("skipping unreadable grid", "page", entry, "err", err)
			continue
		}
		if _, dup := byName[g.name]; dup {
			c.logger.Warn("duplicate grid name, navigation resolves to the first", "page", g.id, "name", g.name)
		} else {
			byName[g.name] = g.id
		}
		byDir[path.Base(g.dir)] = g.id
		grids = append(grids, g)
	}
	if len(grids) == 0 {
		return nil, domain.NewError(domain.KindStructural, "gridset.load", source,
			fmt.Errorf("none of %d grid files could be parsed", len(entries)))
	}

	codec := &Codec{
		PageID: func(name string) (string, bool) {
			if id, ok := byName[name]; ok {
				return id, true
			}
			id, ok := byDir[name]
			return id, ok
		},
	}
	styles := c.readStyles(ar)
	images := newImageResolver(ar, c.symbols, c.logger)

	// Pass two: build pages.
	tree := domain.NewTree()
	for _, g := range grids {
		page, skipped := c.buildPage(ctx, g, codec, styles, images, opts)
		if err := tree.AddPage(page); err != nil {
			c.logger.Warn("skipping page", "page", g.id, "err", err)
			continue
		}
		c.hooks.EmitPage(ctx, Format, domain.EventPageLoaded, page.ID, len(page.Buttons), skipped)
	}

	if settings, err := readSettings(ar); err != nil {
		c.logger.Warn("ignoring unreadable settings", "err", err)
	} else if settings != nil {
		tree.Description = strings.TrimSpace(settings.Description)
		tree.Language = strings.TrimSpace(settings.Language)
		if start := strings.TrimSpace(settings.StartGrid); start != "" {
			if id, ok := codec.PageID(start); ok {
				tree.RootPageID = id
			} else {
				c.logger.Warn("start grid unresolved", "grid", start)
			}
		}
	}
	tree.LinkParents()
	return tree, nil
}

func parseGrid(ar *archive.Reader, entry string) (*parsedGrid, error) {
	data, err := ar.ReadFile(entry)
	if err != nil {
		return nil, err
	}
	var doc gridXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", entry, err)
	}
	dir := path.Dir(entry)
	g := &parsedGrid{dir: dir, doc: &doc, id: strings.TrimSpace(doc.guid()), name: strings.TrimSpace(doc.name())}
	if g.id == "" {
		g.id = path.Base(dir)
	}
	if g.name == "" {
		g.name = path.Base(dir)
	}
	return g, nil
}

func (c *Converter) readStyles(ar *archive.Reader) *style.Table {
	table := style.NewTable(nil)
	data, err := ar.ReadFile(stylesEntry)
	if err != nil {
		return table
	}
	var doc stylesXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		c.logger.Warn("ignoring unreadable style table", "err", err)
		return table
	}
	for _, s := range doc.Styles {
		if s.Key == "" {
			continue
		}
		if v := s.toStyle(); v != nil {
			table.Add(s.Key, *v)
		}
	}
	return table
}

func readSettings(ar *archive.Reader) (*settingsXML, error) {
	if !ar.Has(settingsEntry) {
		return nil, nil
	}
	data, err := ar.ReadFile(settingsEntry)
	if err != nil {
		return nil, err
	}
	var s settingsXML
	if err := xml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Converter) buildPage(ctx context.Context, g *parsedGrid, codec *Codec, styles *style.Table, images *imageResolver, opts domain.ImportOptions) (*domain.Page, int) {
	page := domain.NewPage(g.id, g.name)
	page.Grid = domain.NewGrid(len(g.doc.Rows), len(g.doc.Columns))
	if bg := strings.TrimSpace(g.doc.BackgroundColour); bg != "" {
		page.Style = &domain.Style{BackgroundColor: style.NormalizeHex(bg)}
	}

	skipped := 0
	auto := make(map[string]int)
	for i := range g.doc.Cells {
		cell := &g.doc.Cells[i]
		b, pos, err := c.buildButton(ctx, g, cell, codec, styles, images, opts, auto)
		if err != nil {
			c.logger.Debug("skipping cell", "page", g.id, "cell", i, "err", err)
			skipped++
			continue
		}
		if b == nil {
			continue
		}
		if err := page.AddButton(b); err != nil {
			c.logger.Warn("skipping cell", "page", g.id, "cell", i, "err", err)
			skipped++
			continue
		}
		if err := page.Place(b, pos); err != nil {
			page.RemoveButton(b.ID)
			c.logger.Warn("skipping cell", "page", g.id, "cell", i, "err", err)
			skipped++
		}
	}

	if wl := g.doc.WordList; wl != nil {
		for n, item := range wl.Items {
			text := plainText(item.Text.Inner)
			if text == "" {
				continue
			}
			b := domain.NewButton(fmt.Sprintf("%s_word_%d", page.ID, n), text)
			b.SetMeta(MetaWordList, "true")
			if declared := strings.TrimSpace(item.Image); declared != "" {
				b.Image = images.resolveDeclared(g.dir, declared)
				if opts.LoadImages {
					images.load(b.Image)
				}
			}
			if err := page.AddButton(b); err != nil {
				c.logger.Warn("skipping word list item", "page", g.id, "err", err)
				skipped++
			}
		}
	}
	page.Grid.Trim()
	return page, skipped
}

// buildButton converts one cell. It returns a nil button, without error, for
// cells that carry no caption and no generated content.
func (c *Converter) buildButton(ctx context.Context, g *parsedGrid, cell *cellXML, codec *Codec, styles *style.Table, images *imageResolver, opts domain.ImportOptions, auto map[string]int) (*domain.Button, domain.Position, error) {
	fileX, err := attrInt(cell.X, 0)
	if err != nil {
		return nil, domain.Position{}, err
	}
	fileY, err := attrInt(cell.Y, 0)
	if err != nil {
		return nil, domain.Position{}, err
	}
	if fileX < 0 || fileY < 0 {
		return nil, domain.Position{}, fmt.Errorf("negative cell coordinate %d,%d", fileX, fileY)
	}
	colSpan, err := attrInt(cell.ColumnSpan, 1)
	if err != nil {
		return nil, domain.Position{}, err
	}
	rowSpan, err := attrInt(cell.RowSpan, 1)
	if err != nil {
		return nil, domain.Position{}, err
	}
	pos := domain.Position{
		X:          fileX,
		Y:          fileY,
		ColumnSpan: colSpan,
		RowSpan:    rowSpan,
	}.Normalize()

	content := cell.Content
	if content == nil {
		return nil, pos, nil
	}

	var label, declaredImage string
	if ci := content.CaptionAndImage; ci != nil {
		if ci.Caption != nil {
			label = strings.TrimSpace(*ci.Caption)
		}
		declaredImage = ci.Image
	}
	synthetic := false
	if label == "" {
		if content.ContentType != contentTypeAuto {
			return nil, pos, nil
		}
		kind := content.ContentSubType
		if kind == "" {
			kind = contentTypeAuto
		}
		auto[kind]++
		label = kind + " " + strconv.Itoa(auto[kind])
		synthetic = true
	}

	b := domain.NewButton(fmt.Sprintf("%s_button_%d_%d", g.id, pos.X, pos.Y), label)
	if synthetic {
		b.SetMeta(domain.MetaSyntheticLabel, "true")
	}
	if content.ContentType != "" {
		b.SetMeta(MetaContentType, content.ContentType)
	}
	if content.ContentSubType != "" {
		b.SetMeta(MetaContentSubType, content.ContentSubType)
	}

	if action := codec.Decode(toCommands(content.Commands)); action != nil {
		b.Action = action
		if (action.Intent == domain.IntentSpeak || action.Intent == domain.IntentInsertText) && action.Text != "" {
			b.Message = action.Text
		}
	}

	key, inline := cellStyle(cell)
	resolved, found, err := styles.Resolve(key, inline)
	if err != nil {
		return nil, pos, err
	}
	if !found {
		c.logger.Debug("style unresolved", "page", g.id, "style", key)
	}
	b.Style = resolved

	b.Image = images.resolve(ctx, g.dir, declaredImage, fileX, fileY)
	if opts.LoadImages {
		images.load(b.Image)
	}
	return b, pos, nil
}

// cellStyle returns the referenced style key and the inline overrides of a
// cell. Content-level declarations take precedence over cell-level ones.
func cellStyle(cell *cellXML) (string, *domain.Style) {
	var key string
	var layers []*domain.Style
	for _, s := range []*styleXML{cell.Style, contentStyle(cell)} {
		if s == nil {
			continue
		}
		if s.BasedOnStyle != "" {
			key = s.BasedOnStyle
		}
		layers = append(layers, s.toStyle())
	}
	inline, _ := style.Merge(layers...)
	return key, inline
}

func contentStyle(cell *cellXML) *styleXML {
	if cell.Content == nil {
		return nil
	}
	return cell.Content.Style
}

func (s *styleXML) toStyle() *domain.Style {
	out := &domain.Style{
		BackgroundColor: style.NormalizeHex(s.BackColour),
		BorderColor:     style.NormalizeHex(s.BorderColour),
		FontColor:       style.NormalizeHex(s.FontColour),
		FontFamily:      strings.TrimSpace(s.FontName),
		FontWeight:      strings.TrimSpace(s.FontWeight),
	}
	if size, err := strconv.ParseFloat(strings.TrimSpace(s.FontSize), 64); err == nil {
		out.FontSize = size
	}
	if out.IsZero() {
		return nil
	}
	return out
}

func attrInt(v string, def int) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid cell attribute %q: %w", v, err)
	}
	return n, nil
}
