package testutil

import (
	"io"
	iofs "io/fs"
	"strings"
	"testing"
)

// TestFlatTree checks that fs is one flat directory of base-named regular files,
// and that every file listed opens and reads back as many bytes as its listing says.
func TestFlatTree(t *testing.T, fs iofs.ReadDirFS) {
	t.Helper()

	t.Run("dot", func(t *testing.T) {
		entries, err := fs.ReadDir(".")
		if err != nil {
			t.Fatalf("cannot read root: %v", err)
		}
		if len(entries) == 0 {
			t.Fatalf("no files seen in root")
		}
		seen := map[string]struct{}{}
		for _, e := range entries {
			name := e.Name()
			if name == "." || name == ".." {
				t.Fatalf("illegal entry %q in root", name)
			}
			if strings.Contains(name, "/") {
				t.Fatalf("entry name %q is not a base name", name)
			}
			if _, ok := seen[name]; ok {
				t.Fatalf("entry %q listed twice", name)
			}
			seen[name] = struct{}{}
			if e.IsDir() {
				t.Fatalf("entry %q is a directory in a flat tree", name)
			}
			if _, err := fs.ReadDir(name); err == nil {
				t.Fatalf("file %q can be read as a directory", name)
			}

			info, err := e.Info()
			if err != nil {
				t.Fatalf("info of %q: %v", name, err)
			}
			f, err := fs.Open(name)
			if err != nil {
				t.Fatalf("open %q: %v", name, err)
			}
			n, err := io.Copy(io.Discard, f)
			_ = f.Close()
			if err != nil {
				t.Fatalf("read %q: %v", name, err)
			}
			if n != info.Size() {
				t.Fatalf("read %d bytes of %q, listing says %d", n, name, info.Size())
			}
		}
	})
	t.Run("slash", func(t *testing.T) {
		if entries, err := fs.ReadDir("/"); err == nil || len(entries) != 0 {
			t.Fatalf("files seen reading %q", "/")
		}
	})
}
