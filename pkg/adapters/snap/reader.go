package snap

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/gabriel-vasile/mimetype"

	"github.com/aretw0/lattice/internal/geometry"
	"github.com/aretw0/lattice/internal/style"
	"github.com/aretw0/lattice/pkg/domain"
)

// maxGridSide bounds the occupancy grid built while reading a page. Placements
// beyond it are treated as schema errors; the grid is trimmed afterwards.
const maxGridSide = 64

type pageRow struct {
	id       int64
	uniqueID sql.NullString
	title    sql.NullString
	bg       sql.NullInt64
}

type buttonRow struct {
	id           int64
	uniqueID     sql.NullString
	label        sql.NullString
	message      sql.NullString
	navigate     sql.NullInt64
	actionCode   sql.NullString
	actionParams sql.NullString
	recording    sql.NullInt64
	useRecording sql.NullInt64
	soundMeta    sql.NullString
	pageID       int64
	bg           sql.NullInt64
	fg           sql.NullInt64
	border       sql.NullInt64
	fontFamily   sql.NullString
	fontSize     sql.NullFloat64
	imageID      sql.NullInt64
	position     sql.NullString
	span         sql.NullString
}

func (c *Converter) load(ctx context.Context, src string, opts domain.ImportOptions) (*domain.Tree, error) {
	const op = "snap.load"
	s, err := c.open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	pageRows, err := queryPages(ctx, s)
	if err != nil {
		return nil, classify(op, src, err)
	}
	if len(pageRows) == 0 {
		return nil, domain.NewError(domain.KindStructural, op, src, fmt.Errorf("page set has no pages"))
	}

	tree := domain.NewTree()
	pages := make(map[int64]*domain.Page, len(pageRows))
	refs := make(map[string]string, len(pageRows))
	for _, r := range pageRows {
		id := rowKey(r.uniqueID, r.id)
		if tree.HasPage(id) {
			c.logger.Warn("duplicate page id, last row wins", "page", id, "row", r.id)
		}
		name := r.title.String
		if name == "" {
			name = id
		}
		page := domain.NewPage(id, name)
		if r.bg.Valid {
			page.Style = &domain.Style{BackgroundColor: style.FromARGB(r.bg.Int64)}
		}
		if err := tree.AddPage(page); err != nil {
			c.logger.Warn("skipping page", "row", r.id, "err", err)
			continue
		}
		pages[r.id] = page
		refs[strconv.FormatInt(r.id, 10)] = id
	}

	codec := &Codec{
		PageID: func(ref string) (string, bool) {
			id, ok := refs[ref]
			return id, ok
		},
	}

	buttonRows, err := queryButtons(ctx, s)
	if err != nil {
		return nil, classify(op, src, err)
	}
	contents := newContentReader(s.db)
	skipped := make(map[string]int)
	for i := range buttonRows {
		r := &buttonRows[i]
		page, ok := pages[r.pageID]
		if !ok {
			c.logger.Warn("skipping button on unknown page", "button", r.id, "page_row", r.pageID)
			continue
		}
		if err := c.addButton(ctx, page, r, codec, contents, opts); err != nil {
			c.logger.Warn("skipping button", "page", page.ID, "button", r.id, "err", err)
			skipped[page.ID]++
		}
	}

	for _, page := range tree.OrderedPages() {
		if page.Grid != nil {
			page.Grid.Trim()
		}
		c.hooks.EmitPage(ctx, Format, domain.EventPageLoaded, page.ID, len(page.Buttons), skipped[page.ID])
	}

	if err := c.readProperties(ctx, s, tree); err != nil {
		c.logger.Warn("ignoring unreadable page set properties", "err", err)
	}
	tree.LinkParents()
	return tree, nil
}

func rowKey(unique sql.NullString, id int64) string {
	if unique.Valid && unique.String != "" {
		return unique.String
	}
	return strconv.FormatInt(id, 10)
}

func queryPages(ctx context.Context, s *source) ([]pageRow, error) {
	query, args, err := squirrel.Select(
		"p.Id",
		s.caps.column("p", tablePage, "UniqueId"),
		s.caps.column("p", tablePage, "Title"),
		s.caps.column("p", tablePage, "BackgroundColor"),
	).From(tablePage + " p").OrderBy("p.Id").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pageRow
	for rows.Next() {
		var r pageRow
		if err := rows.Scan(&r.id, &r.uniqueID, &r.title, &r.bg); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func queryButtons(ctx context.Context, s *source) ([]buttonRow, error) {
	caps := s.caps
	order := []string{"er.PageId", "b.Id"}
	if caps.has(tablePlacement, "Id") {
		order = append(order, "ep.Id")
	}
	query, args, err := squirrel.Select(
		"b.Id",
		caps.column("b", tableButton, "UniqueId"),
		caps.column("b", tableButton, "Label"),
		caps.column("b", tableButton, "Message"),
		caps.column("b", tableButton, "NavigatePageId"),
		caps.column("b", tableButton, "ActionCode"),
		caps.column("b", tableButton, "ActionParameters"),
		caps.column("b", tableButton, "MessageRecordingId"),
		caps.column("b", tableButton, "UseMessageRecording"),
		caps.column("b", tableButton, "SerializedMessageSoundMetadata"),
		"er.PageId",
		caps.column("er", tableElementRef, "BackgroundColor"),
		caps.column("er", tableElementRef, "ForegroundColor"),
		caps.column("er", tableElementRef, "BorderColor"),
		caps.column("er", tableElementRef, "FontFamily"),
		caps.column("er", tableElementRef, "FontSize"),
		caps.column("er", tableElementRef, "ImageId"),
		caps.column("ep", tablePlacement, "GridPosition"),
		caps.column("ep", tablePlacement, "GridSpan"),
	).
		From(tableButton + " b").
		Join(tableElementRef + " er ON er.Id = b.ElementReferenceId").
		LeftJoin(tablePlacement + " ep ON ep.ElementReferenceId = er.Id").
		OrderBy(order...).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []buttonRow
	seen := make(map[int64]bool)
	for rows.Next() {
		var r buttonRow
		if err := rows.Scan(
			&r.id, &r.uniqueID, &r.label, &r.message, &r.navigate, &r.actionCode, &r.actionParams,
			&r.recording, &r.useRecording, &r.soundMeta,
			&r.pageID, &r.bg, &r.fg, &r.border, &r.fontFamily, &r.fontSize, &r.imageID,
			&r.position, &r.span,
		); err != nil {
			return nil, err
		}
		// One element may be placed by several layouts; the first placement wins.
		if seen[r.id] {
			continue
		}
		seen[r.id] = true
		out = append(out, r)
	}
	return out, rows.Err()
}

func (c *Converter) addButton(ctx context.Context, page *domain.Page, r *buttonRow, codec *Codec, contents *contentReader, opts domain.ImportOptions) error {
	pos, placed, err := placement(r)
	if err != nil {
		return domain.NewError(domain.KindSchema, "snap.load", page.ID, err)
	}

	b := domain.NewButton(rowKey(r.uniqueID, r.id), r.label.String)
	if r.message.Valid && r.message.String != "" {
		b.Message = r.message.String
	}
	b.Action = codec.Decode(c.buttonCommands(r))
	b.Style = elementStyle(r)

	if r.imageID.Valid {
		img, err := c.readImage(ctx, contents, r.imageID.Int64, opts.LoadImages)
		if err != nil {
			c.logger.Warn("image unresolved", "page", page.ID, "button", b.ID, "err", err)
		} else {
			b.Image = img
		}
	}
	if opts.LoadAudio && r.recording.Valid && (!r.useRecording.Valid || r.useRecording.Int64 != 0) {
		rec, err := c.readAudio(ctx, contents, r)
		if err != nil {
			c.logger.Warn("audio unresolved", "page", page.ID, "button", b.ID, "err", err)
		} else {
			b.Audio = rec
		}
	}

	if err := page.AddButton(b); err != nil {
		return err
	}
	if !placed {
		return nil
	}
	if page.Grid == nil {
		page.Grid = domain.NewGrid(maxGridSide, maxGridSide)
	}
	if err := page.Place(b, pos); err != nil {
		page.RemoveButton(b.ID)
		return err
	}
	return nil
}

// placement parses GridPosition "x,y" and GridSpan "w,h". Missing placement
// leaves the button unplaced.
func placement(r *buttonRow) (domain.Position, bool, error) {
	if !r.position.Valid || r.position.String == "" {
		return domain.Position{}, false, nil
	}
	x, y, err := geometry.ParseCoordinatePair(r.position.String)
	if err != nil {
		return domain.Position{}, false, fmt.Errorf("invalid grid position: %w", err)
	}
	pos := domain.Position{X: x, Y: y, ColumnSpan: 1, RowSpan: 1}
	if r.span.Valid && r.span.String != "" {
		w, h, err := geometry.ParseCoordinatePair(r.span.String)
		if err != nil {
			return domain.Position{}, false, fmt.Errorf("invalid grid span: %w", err)
		}
		pos.ColumnSpan, pos.RowSpan = w, h
	}
	pos = pos.Normalize()
	if pos.X+pos.ColumnSpan > maxGridSide || pos.Y+pos.RowSpan > maxGridSide {
		return domain.Position{}, false, fmt.Errorf("placement %s outside the %dx%d grid", r.position.String, maxGridSide, maxGridSide)
	}
	return pos, true, nil
}

// buttonCommands rebuilds the vendor commands of a row. NavigatePageId comes
// first so navigation wins over any other action code.
func (c *Converter) buttonCommands(r *buttonRow) []domain.PlatformCommand {
	var cmds []domain.PlatformCommand
	if r.navigate.Valid {
		cmds = append(cmds, domain.PlatformCommand{
			ID:     codeNavigate,
			Params: []domain.Param{{Key: paramPage, Value: strconv.FormatInt(r.navigate.Int64, 10)}},
		})
	}
	code := r.actionCode.String
	if code == "" || (code == codeNavigate && r.navigate.Valid) {
		return cmds
	}
	params, err := decodeParams(r.actionParams.String)
	if err != nil {
		c.logger.Warn("ignoring action parameters", "button", r.id, "err", err)
	}
	return append(cmds, domain.PlatformCommand{ID: code, Params: params})
}

func elementStyle(r *buttonRow) *domain.Style {
	s := domain.Style{FontFamily: r.fontFamily.String}
	if r.bg.Valid {
		s.BackgroundColor = style.FromARGB(r.bg.Int64)
	}
	if r.fg.Valid {
		s.FontColor = style.FromARGB(r.fg.Int64)
	}
	if r.border.Valid {
		s.BorderColor = style.FromARGB(r.border.Int64)
	}
	if r.fontSize.Valid {
		s.FontSize = r.fontSize.Float64
	}
	if s.IsZero() {
		return nil
	}
	return &s
}

func (c *Converter) readImage(ctx context.Context, contents *contentReader, id int64, load bool) (*domain.Image, error) {
	ct, err := contents.get(ctx, id)
	if err != nil {
		return nil, err
	}
	img := &domain.Image{Name: ct.identifier, Path: ct.identifier}
	if load {
		img.Data = ct.data
		img.MIME = mimetype.Detect(ct.data).String()
	}
	return img, nil
}

func (c *Converter) readAudio(ctx context.Context, contents *contentReader, r *buttonRow) (*domain.AudioRecording, error) {
	ct, err := contents.get(ctx, r.recording.Int64)
	if err != nil {
		return nil, err
	}
	var meta map[string]string
	if raw := r.soundMeta.String; raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			c.logger.Warn("ignoring sound metadata", "button", r.id, "err", err)
			meta = nil
		}
	}
	rec := domain.NewAudioRecording(ct.data, meta)
	if ct.identifier != rec.ID {
		c.logger.Debug("stored audio identifier differs from content hash", "stored", ct.identifier, "computed", rec.ID)
	}
	return rec, nil
}

func (c *Converter) readProperties(ctx context.Context, s *source, tree *domain.Tree) error {
	if !s.caps.hasTable(tableProperties) {
		return nil
	}
	query, args, err := squirrel.Select(
		s.caps.column("pp", tableProperties, "DefaultHomePageUniqueId"),
		s.caps.column("pp", tableProperties, "Language"),
	).From(tableProperties + " pp").Limit(1).ToSql()
	if err != nil {
		return err
	}
	var home, lang sql.NullString
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&home, &lang)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	tree.Language = lang.String
	if home.String != "" {
		if tree.HasPage(home.String) {
			tree.RootPageID = home.String
		} else {
			c.logger.Warn("default home page unresolved", "page", home.String)
		}
	}
	return nil
}
