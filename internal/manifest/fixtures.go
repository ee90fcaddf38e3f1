package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/puzpuzpuz/xsync/v3"
)

// Fixtures reads fixture files relative to a directory. Contents are cached
// so a fixture shared by many cases is read once per run. Safe for
// concurrent use.
type Fixtures struct {
	dir   string
	cache *xsync.MapOf[string, []byte]
}

// NewFixtures returns a reader rooted at dir.
func NewFixtures(dir string) *Fixtures {
	return &Fixtures{
		dir:   dir,
		cache: xsync.NewMapOf[string, []byte](),
	}
}

// Path resolves rel against the fixture directory.
func (f *Fixtures) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(f.dir, rel)
}

// Read returns the full content of the fixture. Callers must not modify the
// returned slice.
func (f *Fixtures) Read(rel string) ([]byte, error) {
	path := f.Path(rel)
	if data, ok := f.cache.Load(path); ok {
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", rel, err)
	}
	f.cache.Store(path, data)
	return data, nil
}

// Write replaces the fixture's content and refreshes the cache.
func (f *Fixtures) Write(rel string, data []byte) error {
	path := f.Path(rel)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write fixture %s: %w", rel, err)
	}
	f.cache.Store(path, append([]byte(nil), data...))
	return nil
}
