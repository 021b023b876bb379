package archive

import (
	"github.com/gabriel-vasile/mimetype"
)

// Content kinds reported by Sniff.
const (
	KindZip     = "zip"
	KindSQLite  = "sqlite"
	KindUnknown = "unknown"
)

// Sniff classifies a file by its magic bytes.
func Sniff(p string) (kind string, mime string, err error) {
	mt, err := mimetype.DetectFile(p)
	if err != nil {
		return "", "", err
	}
	return classify(mt), mt.String(), nil
}

// SniffBytes classifies content by its magic bytes.
func SniffBytes(data []byte) (kind string, mime string) {
	mt := mimetype.Detect(data)
	return classify(mt), mt.String()
}

func classify(mt *mimetype.MIME) string {
	for m := mt; m != nil; m = m.Parent() {
		switch {
		case m.Is("application/zip"):
			return KindZip
		case m.Is("application/vnd.sqlite3"), m.Is("application/x-sqlite3"):
			return KindSQLite
		}
	}
	return KindUnknown
}
