package gridset

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gosimple/slug"

	"github.com/aretw0/lattice/internal/archive"
	"github.com/aretw0/lattice/internal/geometry"
	"github.com/aretw0/lattice/internal/style"
	"github.com/aretw0/lattice/pkg/domain"
)

// gridWriter holds the per-export state: grid directory and name assignments,
// interned styles and the archive being built.
type gridWriter struct {
	c      *Converter
	tree   *domain.Tree
	zw     *archive.Writer
	dirs   map[string]string // page id -> directory name
	names  map[string]string // page id -> grid name
	styles *style.Interner
	codec  *Codec

	fileMap []fileMapEntry
}

// save renders tree as a gridset archive in memory.
func (c *Converter) save(ctx context.Context, tree *domain.Tree) ([]byte, error) {
	const op = "gridset.save"
	if tree == nil || len(tree.Pages) == 0 {
		return nil, domain.NewError(domain.KindStructural, op, "", fmt.Errorf("tree has no pages"))
	}

	w := &gridWriter{
		c:      c,
		tree:   tree,
		zw:     archive.NewWriter(),
		dirs:   make(map[string]string),
		names:  make(map[string]string),
		styles: style.NewInterner("Style"),
	}
	w.assignNames()
	w.codec = &Codec{
		PageName: func(id string) (string, bool) {
			name, ok := w.names[id]
			return name, ok
		},
	}

	for _, page := range tree.OrderedPages() {
		if err := w.writePage(ctx, page); err != nil {
			return nil, domain.NewError(domain.KindStructural, op, page.ID, err)
		}
	}
	if err := w.writeSettings(); err != nil {
		return nil, domain.NewError(domain.KindStructural, op, settingsEntry, err)
	}
	if err := w.writeStyles(); err != nil {
		return nil, domain.NewError(domain.KindStructural, op, stylesEntry, err)
	}
	if err := w.writeFileMap(); err != nil {
		return nil, domain.NewError(domain.KindStructural, op, fileMapFile, err)
	}

	data, err := w.zw.Bytes()
	if err != nil {
		return nil, domain.NewError(domain.KindIO, op, "", err)
	}
	return data, nil
}

// assignNames gives every page a unique grid name and directory.
func (w *gridWriter) assignNames() {
	usedNames := make(map[string]bool)
	usedDirs := make(map[string]bool)
	for _, page := range w.tree.OrderedPages() {
		name := strings.TrimSpace(page.Name)
		if name == "" {
			name = page.ID
		}
		unique := name
		for i := 2; usedNames[unique]; i++ {
			unique = fmt.Sprintf("%s (%d)", name, i)
		}
		usedNames[unique] = true
		w.names[page.ID] = unique

		dir := slug.Make(unique)
		if dir == "" {
			dir = "grid"
		}
		base := dir
		for i := 2; usedDirs[dir]; i++ {
			dir = fmt.Sprintf("%s-%d", base, i)
		}
		usedDirs[dir] = true
		w.dirs[page.ID] = dir
	}
}

func isWordListItem(b *domain.Button) bool {
	return b.Meta(MetaWordList) == "true"
}

func (w *gridWriter) writePage(ctx context.Context, page *domain.Page) error {
	dir := gridsDir + "/" + w.dirs[page.ID]
	entry := fileMapEntry{StaticFile: strings.ReplaceAll(dir+"/"+gridFile, "/", `\`)}

	grid, err := geometry.Plan(page, func(b *domain.Button) bool { return !isWordListItem(b) })
	if err != nil {
		return err
	}
	rows, cols := grid.Extent()
	if rows == 0 || cols == 0 {
		rows, cols = geometry.DefaultDimensions(len(grid.ButtonIDs()))
	}

	doc := &gridXML{
		NameAttr: w.names[page.ID],
		GUIDAttr: page.ID,
		Columns:  make([]definitionXML, cols),
		Rows:     make([]definitionXML, rows),
	}
	if page.Style != nil && page.Style.BackgroundColor != "" {
		doc.BackgroundColour = style.HexWithAlpha(page.Style.BackgroundColor)
	}

	images := newImageNamer()
	var words []wordListItemXML
	written := 0
	for _, b := range page.Buttons {
		if isWordListItem(b) {
			item := wordListItemXML{Text: innerXML{Inner: buildRich(b.Label, nil)}}
			if b.Image != nil {
				item.Image = w.writeImage(dir, b.Image, "", images, &entry)
			}
			words = append(words, item)
			continue
		}
		pos, ok := grid.Locate(b.ID)
		if !ok {
			continue
		}
		doc.Cells = append(doc.Cells, w.cell(dir, b, pos, images, &entry))
		written++
	}
	if len(words) > 0 {
		doc.WordList = &wordListXML{Name: w.names[page.ID], Items: words}
	}

	data, err := marshalDocument(doc)
	if err != nil {
		return fmt.Errorf("failed to encode grid: %w", err)
	}
	if err := w.zw.Add(dir+"/"+gridFile, data); err != nil {
		return err
	}
	w.fileMap = append(w.fileMap, entry)
	w.c.hooks.EmitPage(ctx, Format, domain.EventPageWritten, page.ID, written+len(words), 0)
	return nil
}

func (w *gridWriter) cell(dir string, b *domain.Button, pos domain.Position, images *imageNamer, entry *fileMapEntry) cellXML {
	c := cellXML{
		X: strconv.Itoa(pos.X),
		Y: strconv.Itoa(pos.Y),
	}
	if pos.ColumnSpan > 1 {
		c.ColumnSpan = strconv.Itoa(pos.ColumnSpan)
	}
	if pos.RowSpan > 1 {
		c.RowSpan = strconv.Itoa(pos.RowSpan)
	}

	content := &contentXML{
		ContentType:    b.Meta(MetaContentType),
		ContentSubType: b.Meta(MetaContentSubType),
	}
	ci := &captionAndImageXML{}
	if b.HasSyntheticLabel() {
		if content.ContentType == "" {
			content.ContentType = contentTypeAuto
		}
	} else {
		label := b.Label
		ci.Caption = &label
	}
	if b.Image != nil {
		ci.Image = w.writeImage(dir, b.Image, fmt.Sprintf("%s-%s", c.X, c.Y), images, entry)
	}
	if ci.Caption != nil || ci.Image != "" {
		content.CaptionAndImage = ci
	}

	action := b.Action
	if action == nil && b.Message != "" && b.Message != b.Label {
		action = domain.Speak(b.Message)
	}
	content.Commands = fromCommands(w.codec.Encode(action))

	if key := w.styles.Key(b.Style); key != "" {
		content.Style = &styleXML{BasedOnStyle: key}
	}
	c.Content = content
	return c
}

// writeImage stores image bytes under the grid directory and returns the name
// to declare in the cell. Library symbols keep their token; their bytes, if
// any, are stored as the cell's dynamic file.
func (w *gridWriter) writeImage(dir string, img *domain.Image, coord string, names *imageNamer, entry *fileMapEntry) string {
	if len(img.Data) == 0 {
		return img.Name
	}
	ext := path.Ext(img.Path)
	if ext == "" {
		ext = mimetype.Detect(img.Data).Extension()
	}

	declared := img.Name
	var file string
	if symbolToken.MatchString(img.Name) {
		if coord == "" {
			return img.Name
		}
		file = names.unique(coord + "-0-text-0" + ext)
		entry.DynamicFiles = append(entry.DynamicFiles, strings.ReplaceAll(dir+"/"+file, "/", `\`))
	} else {
		base := path.Base(archive.Normalize(img.Path))
		if img.Path == "" || base == "." || base == "" {
			base = path.Base(archive.Normalize(img.Name))
		}
		if base == "" || base == "." {
			base = "image" + ext
		}
		file = names.unique(base)
		declared = file
	}
	if err := w.zw.Add(dir+"/"+file, img.Data); err != nil {
		w.c.logger.Warn("failed to store image", "image", file, "err", err)
		return img.Name
	}
	return declared
}

func (w *gridWriter) writeSettings() error {
	s := settingsXML{
		Description: w.tree.Description,
		Language:    w.tree.Language,
	}
	if root := w.tree.Root(); root != nil {
		s.StartGrid = w.names[root.ID]
	}
	data, err := marshalDocument(&s)
	if err != nil {
		return err
	}
	return w.zw.Add(settingsEntry, data)
}

func (w *gridWriter) writeStyles() error {
	entries := w.styles.Entries()
	if len(entries) == 0 {
		return nil
	}
	doc := stylesXML{}
	for _, e := range entries {
		s := styleXML{
			Key:          e.Key,
			BackColour:   hexOrEmpty(e.Style.BackgroundColor),
			BorderColour: hexOrEmpty(e.Style.BorderColor),
			FontColour:   hexOrEmpty(e.Style.FontColor),
			FontName:     e.Style.FontFamily,
			FontWeight:   e.Style.FontWeight,
		}
		if e.Style.FontSize > 0 {
			s.FontSize = strconv.FormatFloat(e.Style.FontSize, 'f', -1, 64)
		}
		doc.Styles = append(doc.Styles, s)
	}
	data, err := marshalDocument(&doc)
	if err != nil {
		return err
	}
	return w.zw.Add(stylesEntry, data)
}

func (w *gridWriter) writeFileMap() error {
	data, err := marshalDocument(&fileMapXML{Entries: w.fileMap})
	if err != nil {
		return err
	}
	return w.zw.Add(fileMapFile, data)
}

func hexOrEmpty(s string) string {
	if s == "" {
		return ""
	}
	return style.HexWithAlpha(s)
}

// imageNamer hands out unique file names within one grid directory.
type imageNamer struct {
	used map[string]bool
}

func newImageNamer() *imageNamer {
	return &imageNamer{used: map[string]bool{gridFile: true}}
}

func (n *imageNamer) unique(name string) string {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for i := 2; n.used[strings.ToLower(candidate)]; i++ {
		candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
	n.used[strings.ToLower(candidate)] = true
	return candidate
}
