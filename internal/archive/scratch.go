package archive

import (
	"fmt"
	"os"
	"path/filepath"
)

// Scratch is a private working directory owned by one conversion.
// Release must be called on every exit path; it is safe to call more than once.
type Scratch struct {
	dir string
}

// AcquireScratch creates a fresh directory under root (the system temp dir when
// root is empty).
func AcquireScratch(root, prefix string) (*Scratch, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0700); err != nil {
			return nil, fmt.Errorf("failed to create scratch root: %w", err)
		}
	}
	dir, err := os.MkdirTemp(root, prefix+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch area: %w", err)
	}
	return &Scratch{dir: dir}, nil
}

// Dir returns the scratch directory.
func (s *Scratch) Dir() string {
	return s.dir
}

// Path joins name to the scratch directory.
func (s *Scratch) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Release removes the scratch directory and everything in it.
func (s *Scratch) Release() error {
	if s == nil || s.dir == "" {
		return nil
	}
	dir := s.dir
	s.dir = ""
	return os.RemoveAll(dir)
}
