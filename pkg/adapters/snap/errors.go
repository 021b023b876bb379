package snap

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/aretw0/lattice/pkg/domain"
)

// classify maps a database error to the conversion error taxonomy. The engine
// rejecting the file itself is corruption; permission and open failures are I/O;
// anything else is a structural mismatch.
func classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ce *domain.ConversionError
	if errors.As(err, &ce) {
		return err
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT:
			return domain.NewError(domain.KindCorruption, op, path, err)
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_PERM, sqlite3.SQLITE_IOERR, sqlite3.SQLITE_READONLY, sqlite3.SQLITE_FULL:
			return domain.NewError(domain.KindIO, op, path, err)
		}
	}
	return domain.NewError(domain.KindStructural, op, path, err)
}
