package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

// WriteTree extracts a txtar archive into dir and returns dir.
//
//	-- test/data/all-tests.json --
//	[{"desc": "a", "in": "a.in", "out": "a.out"}]
//	-- test/data/a.in --
//	abc
func WriteTree(t *testing.T, dir, archive string) string {
	t.Helper()
	ar := txtar.Parse([]byte(archive))
	for _, f := range ar.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, f.Data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

