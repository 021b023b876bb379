// Package archive provides the zip and filesystem plumbing shared by the
// zip-based converters: indexed archive reading, in-memory archive building,
// scoped scratch areas and atomic publication of finished artifacts.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ErrEntryNotFound is returned when an archive entry does not exist.
var ErrEntryNotFound = errors.New("archive entry not found")

// Reader is an opened zip archive with a normalized name index.
// Entry names use forward slashes; lookups fall back to a case-insensitive match.
type Reader struct {
	rc    *zip.ReadCloser
	files map[string]*zip.File
	fold  map[string]string
	names []string
}

// Open opens the zip archive at path.
func Open(p string) (*Reader, error) {
	rc, err := zip.OpenReader(p)
	if err != nil {
		return nil, err
	}
	r := &Reader{
		rc:    rc,
		files: make(map[string]*zip.File, len(rc.File)),
		fold:  make(map[string]string, len(rc.File)),
	}
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := Normalize(f.Name)
		if _, dup := r.files[name]; dup {
			continue
		}
		r.files[name] = f
		r.fold[strings.ToLower(name)] = name
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Normalize converts an entry name to the canonical forward-slash form.
func Normalize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.rc.Close()
}

// Names returns every file entry, sorted.
func (r *Reader) Names() []string {
	return r.names
}

// Lookup returns the canonical name of an entry, if present.
func (r *Reader) Lookup(name string) (string, bool) {
	name = Normalize(name)
	if _, ok := r.files[name]; ok {
		return name, true
	}
	canonical, ok := r.fold[strings.ToLower(name)]
	return canonical, ok
}

// Has reports whether the entry exists.
func (r *Reader) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// ReadFile returns the content of an entry.
func (r *Reader) ReadFile(name string) ([]byte, error) {
	canonical, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	rc, err := r.files[canonical].Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", canonical, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", canonical, err)
	}
	return data, nil
}

// Glob returns the entries matching a path.Match pattern, sorted.
func (r *Reader) Glob(pattern string) []string {
	var out []string
	for _, name := range r.names {
		if ok, _ := path.Match(pattern, name); ok {
			out = append(out, name)
		}
	}
	return out
}

// Extract copies an entry to a file on disk.
func (r *Reader) Extract(name, dest string) error {
	canonical, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	rc, err := r.files[canonical].Open()
	if err != nil {
		return fmt.Errorf("failed to open entry %s: %w", canonical, err)
	}
	defer rc.Close()

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return fmt.Errorf("failed to extract %s: %w", canonical, err)
	}
	return f.Close()
}

// Writer builds a zip archive in memory.
type Writer struct {
	buf  bytes.Buffer
	zw   *zip.Writer
	seen map[string]bool
}

// NewWriter creates an empty in-memory archive.
func NewWriter() *Writer {
	w := &Writer{seen: make(map[string]bool)}
	w.zw = zip.NewWriter(&w.buf)
	return w
}

// Add writes one deflated entry. Adding the same name twice is an error.
func (w *Writer) Add(name string, data []byte) error {
	name = Normalize(name)
	if w.seen[name] {
		return fmt.Errorf("duplicate archive entry %s", name)
	}
	w.seen[name] = true
	fw, err := w.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("failed to create entry %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("failed to write entry %s: %w", name, err)
	}
	return nil
}

// Has reports whether name was already added.
func (w *Writer) Has(name string) bool {
	return w.seen[Normalize(name)]
}

// Bytes finalizes the archive and returns its content.
func (w *Writer) Bytes() ([]byte, error) {
	if err := w.zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return w.buf.Bytes(), nil
}
