package snap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/aretw0/lattice/pkg/domain"
)

// ImageContentPrefix marks image payloads in PageSetData.
const ImageContentPrefix = "IMG:"

// ImageContentID returns the PageSetData identifier of image bytes.
func ImageContentID(data []byte) string {
	return ImageContentPrefix + strings.TrimPrefix(domain.AudioContentID(data), domain.AudioContentPrefix)
}

// contentStore writes payloads into PageSetData keyed by content identifier.
// A payload already present gains a reference instead of a second row.
type contentStore struct {
	tx  *sql.Tx
	ids map[string]int64
}

func newContentStore(tx *sql.Tx) *contentStore {
	return &contentStore{tx: tx, ids: make(map[string]int64)}
}

// put stores data under identifier and returns its row id. dedup reports that
// the row existed and only its RefCount changed.
func (s *contentStore) put(ctx context.Context, identifier string, data []byte) (rowID int64, dedup bool, err error) {
	rowID, found := s.ids[identifier]
	if !found {
		rowID, found, err = s.lookup(ctx, identifier)
		if err != nil {
			return 0, false, err
		}
	}
	if found {
		query, args, err := squirrel.Update(tableData).
			Set("RefCount", squirrel.Expr("RefCount + 1")).
			Where(squirrel.Eq{"Id": rowID}).
			ToSql()
		if err != nil {
			return 0, false, err
		}
		if _, err := s.tx.ExecContext(ctx, query, args...); err != nil {
			return 0, false, fmt.Errorf("failed to reference %s: %w", identifier, err)
		}
		s.ids[identifier] = rowID
		return rowID, true, nil
	}

	query, args, err := squirrel.Insert(tableData).
		Columns("Identifier", "Data", "RefCount").
		Values(identifier, data, 1).
		ToSql()
	if err != nil {
		return 0, false, err
	}
	res, err := s.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, false, fmt.Errorf("failed to store %s: %w", identifier, err)
	}
	rowID, err = res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	s.ids[identifier] = rowID
	return rowID, false, nil
}

func (s *contentStore) lookup(ctx context.Context, identifier string) (int64, bool, error) {
	query, args, err := squirrel.Select("Id").From(tableData).Where(squirrel.Eq{"Identifier": identifier}).ToSql()
	if err != nil {
		return 0, false, err
	}
	var id int64
	err = s.tx.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// content is one PageSetData row as read back.
type content struct {
	identifier string
	data       []byte
}

// contentReader reads PageSetData rows once each.
type contentReader struct {
	db    *sql.DB
	cache map[int64]*content
}

func newContentReader(db *sql.DB) *contentReader {
	return &contentReader{db: db, cache: make(map[int64]*content)}
}

func (r *contentReader) get(ctx context.Context, id int64) (*content, error) {
	if c, ok := r.cache[id]; ok {
		return c, nil
	}
	query, args, err := squirrel.Select("Identifier", "Data").From(tableData).Where(squirrel.Eq{"Id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var (
		identifier sql.NullString
		data       []byte
	)
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&identifier, &data); err != nil {
		return nil, err
	}
	c := &content{identifier: identifier.String, data: data}
	r.cache[id] = c
	return c, nil
}
