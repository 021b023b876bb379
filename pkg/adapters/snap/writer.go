package snap

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/Masterminds/squirrel"

	"github.com/aretw0/lattice/internal/archive"
	"github.com/aretw0/lattice/internal/geometry"
	"github.com/aretw0/lattice/internal/style"
	"github.com/aretw0/lattice/pkg/domain"
)

// pageWriter carries the state of one export.
type pageWriter struct {
	c        *Converter
	tree     *domain.Tree
	tx       *sql.Tx
	codec    *Codec
	store    *contentStore
	pageRows map[string]int64
	elements int64
	buttons  int64
}

// save writes tree into a fresh database inside a scratch area and returns it
// packed in a zip container.
func (c *Converter) save(ctx context.Context, tree *domain.Tree) ([]byte, error) {
	const op = "snap.save"
	if tree == nil || len(tree.Pages) == 0 {
		return nil, domain.NewError(domain.KindStructural, op, "", fmt.Errorf("tree has no pages"))
	}

	scratch, err := archive.AcquireScratch(c.scratchDir, "lattice-snap")
	if err != nil {
		return nil, domain.NewError(domain.KindIO, op, "", err)
	}
	defer scratch.Release()

	dbPath := scratch.Path(databaseEntry)
	if err := c.writeDatabase(ctx, dbPath, tree); err != nil {
		return nil, classify(op, dbPath, err)
	}

	raw, err := os.ReadFile(dbPath)
	if err != nil {
		return nil, domain.NewError(domain.KindIO, op, dbPath, err)
	}
	zw := archive.NewWriter()
	if err := zw.Add(databaseEntry, raw); err != nil {
		return nil, domain.NewError(domain.KindIO, op, databaseEntry, err)
	}
	data, err := zw.Bytes()
	if err != nil {
		return nil, domain.NewError(domain.KindIO, op, "", err)
	}
	return data, nil
}

func (c *Converter) writeDatabase(ctx context.Context, dbPath string, tree *domain.Tree) (err error) {
	db, err := sql.Open("sqlite", "file:"+dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); err == nil {
			err = cerr
		}
	}()
	db.SetMaxOpenConns(1)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, ddl := range schemaDDL {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	w := &pageWriter{
		c:        c,
		tree:     tree,
		tx:       tx,
		store:    newContentStore(tx),
		pageRows: make(map[string]int64, len(tree.Pages)),
	}
	w.codec = &Codec{
		PageRef: func(id string) (string, bool) {
			row, ok := w.pageRows[id]
			if !ok {
				return "", false
			}
			return strconv.FormatInt(row, 10), true
		},
	}

	pages := tree.OrderedPages()
	for i, page := range pages {
		w.pageRows[page.ID] = int64(i + 1)
	}
	for _, page := range pages {
		if err := w.writePage(ctx, page); err != nil {
			return fmt.Errorf("page %s: %w", page.ID, err)
		}
	}
	if err := w.writeProperties(ctx); err != nil {
		return err
	}
	return tx.Commit()
}

func (w *pageWriter) exec(ctx context.Context, b squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return w.tx.ExecContext(ctx, query, args...)
}

func (w *pageWriter) writePage(ctx context.Context, page *domain.Page) error {
	var bg any
	if page.Style != nil {
		bg = argb(page.Style.BackgroundColor)
	}
	if _, err := w.exec(ctx, squirrel.Insert(tablePage).
		Columns("Id", "UniqueId", "Title", "BackgroundColor").
		Values(w.pageRows[page.ID], page.ID, page.Name, bg)); err != nil {
		return err
	}

	grid, err := geometry.Plan(page, nil)
	if err != nil {
		return err
	}
	for _, b := range page.Buttons {
		if err := w.writeButton(ctx, page, b, grid); err != nil {
			return fmt.Errorf("button %s: %w", b.ID, err)
		}
	}
	w.c.hooks.EmitPage(ctx, Format, domain.EventPageWritten, page.ID, len(page.Buttons), 0)
	return nil
}

func (w *pageWriter) writeButton(ctx context.Context, page *domain.Page, b *domain.Button, grid *domain.Grid) error {
	var imageID any
	if b.Image != nil && len(b.Image.Data) > 0 {
		id, _, err := w.store.put(ctx, ImageContentID(b.Image.Data), b.Image.Data)
		if err != nil {
			return err
		}
		imageID = id
	} else if b.Image != nil {
		w.c.logger.Debug("image without data not written", "page", page.ID, "button", b.ID, "image", b.Image.Name)
	}

	w.elements++
	elementID := w.elements
	var bg, fg, border, family, size any
	if s := b.Style; s != nil {
		bg, fg, border = argb(s.BackgroundColor), argb(s.FontColor), argb(s.BorderColor)
		if s.FontFamily != "" {
			family = s.FontFamily
		}
		if s.FontSize > 0 {
			size = s.FontSize
		}
	}
	if _, err := w.exec(ctx, squirrel.Insert(tableElementRef).
		Columns("Id", "PageId", "BackgroundColor", "ForegroundColor", "BorderColor", "FontFamily", "FontSize", "ImageId").
		Values(elementID, w.pageRows[page.ID], bg, fg, border, family, size, imageID)); err != nil {
		return err
	}

	if pos, ok := grid.Locate(b.ID); ok {
		if _, err := w.exec(ctx, squirrel.Insert(tablePlacement).
			Columns("ElementReferenceId", "GridPosition", "GridSpan").
			Values(elementID,
				geometry.FormatCoordinatePair(pos.X, pos.Y),
				geometry.FormatCoordinatePair(pos.ColumnSpan, pos.RowSpan))); err != nil {
			return err
		}
	}

	navigate, code, params, err := w.actionColumns(b.Action)
	if err != nil {
		return err
	}

	var recordingID, useRecording, soundMeta any
	if b.Audio != nil && len(b.Audio.Data) > 0 {
		contentID := domain.AudioContentID(b.Audio.Data)
		id, dedup, err := w.store.put(ctx, contentID, b.Audio.Data)
		if err != nil {
			return err
		}
		w.c.hooks.EmitAudio(ctx, Format, contentID, len(b.Audio.Data), dedup)
		recordingID, useRecording = id, 1
		if len(b.Audio.Metadata) > 0 {
			raw, err := json.Marshal(b.Audio.Metadata)
			if err != nil {
				return err
			}
			soundMeta = string(raw)
		}
	}

	w.buttons++
	_, err = w.exec(ctx, squirrel.Insert(tableButton).
		Columns("Id", "UniqueId", "Label", "Message", "ElementReferenceId", "NavigatePageId", "ActionCode",
			"ActionParameters", "MessageRecordingId", "UseMessageRecording", "SerializedMessageSoundMetadata").
		Values(w.buttons, b.ID, b.Label, b.Message, elementID, navigate, code, params,
			recordingID, useRecording, soundMeta))
	return err
}

// actionColumns spreads encoded commands over the Button columns. A resolving
// navigation goes to NavigatePageId; the first other command fills ActionCode.
// A dangling navigation keeps its raw target in ActionParameters under
// "target", apart from the Page row ids carried by "page".
func (w *pageWriter) actionColumns(a *domain.Action) (navigate, code, params any, err error) {
	for _, cmd := range w.codec.Encode(a) {
		if cmd.ID == codeNavigate && navigate == nil && a.IsNavigation() {
			if row, ok := w.pageRows[a.TargetPageID]; ok {
				navigate = row
				continue
			}
		}
		if code != nil {
			continue
		}
		code = cmd.ID
		raw, err := encodeParams(cmd.Params)
		if err != nil {
			return nil, nil, nil, err
		}
		if raw != "" {
			params = raw
		}
	}
	return navigate, code, params, nil
}

func (w *pageWriter) writeProperties(ctx context.Context) error {
	var home, lang any
	if root := w.tree.Root(); root != nil {
		home = root.ID
	}
	if w.tree.Language != "" {
		lang = w.tree.Language
	}
	_, err := w.exec(ctx, squirrel.Insert(tableProperties).
		Columns("DefaultHomePageUniqueId", "Language").
		Values(home, lang))
	return err
}

// argb returns the packed colour, or nil for unset and unparsable values.
func argb(hex string) any {
	if hex == "" {
		return nil
	}
	v, ok := style.ToARGB(hex)
	if !ok {
		return nil
	}
	return v
}
