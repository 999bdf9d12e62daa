package fstest

import (
	"bytes"
	"errors"
	"io"
	iofs "io/fs"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/bootsig/fs"
)

// TestReadFS tests read-only operations: Exists, Stat, Open, ReadAt.
func TestReadFS(t *testing.T, filesystem fs.Filesystem, root string) {
	content := pattern(1024)
	name := join(root, "read.img")

	if root != "" {
		if err := filesystem.MkdirAll(root, 0o755); err != nil {
			t.Fatalf("MkdirAll(%q): setup failed: %v", root, err)
		}
	}
	if err := filesystem.WriteFile(name, content, 0o644); err != nil {
		t.Fatalf("WriteFile(%q): setup failed: %v", name, err)
	}

	t.Run("Exists", func(t *testing.T) {
		testReadFSExists(t, filesystem, root, name)
	})
	t.Run("Stat", func(t *testing.T) {
		testReadFSStat(t, filesystem, root, name, int64(len(content)))
	})
	t.Run("ReadAt", func(t *testing.T) {
		testReadFSReadAt(t, filesystem, name, content)
	})
	t.Run("ReadAtPastEnd", func(t *testing.T) {
		testReadFSReadAtPastEnd(t, filesystem, name, content)
	})
	t.Run("OpenNonExistent", func(t *testing.T) {
		testReadFSOpenNonExistent(t, filesystem, root)
	})
}

func testReadFSExists(t *testing.T, filesystem fs.Filesystem, root, name string) {
	ok, err := filesystem.Exists(name)
	if err != nil {
		t.Fatalf("Exists(%q): got error %v, want nil", name, err)
	}
	if !ok {
		t.Errorf("Exists(%q) = false, want true", name)
	}

	missing := join(root, "missing.img")
	ok, err = filesystem.Exists(missing)
	if err != nil {
		t.Fatalf("Exists(%q): got error %v, want nil", missing, err)
	}
	if ok {
		t.Errorf("Exists(%q) = true, want false", missing)
	}
}

func testReadFSStat(t *testing.T, filesystem fs.Filesystem, root, name string, size int64) {
	info, err := filesystem.Stat(name)
	if err != nil {
		t.Fatalf("Stat(%q): got error %v, want nil", name, err)
	}
	if info.IsDir() {
		t.Errorf("Stat(%q): IsDir() = true, want false", name)
	}
	if info.Size() != size {
		t.Errorf("Stat(%q): Size() = %d, want %d", name, info.Size(), size)
	}

	if root == "" {
		return
	}
	info, err = filesystem.Stat(root)
	if err != nil {
		t.Fatalf("Stat(%q): got error %v, want nil", root, err)
	}
	if !info.IsDir() {
		t.Errorf("Stat(%q): IsDir() = false, want true", root)
	}
}

func testReadFSReadAt(t *testing.T, filesystem fs.Filesystem, name string, content []byte) {
	f, err := filesystem.Open(name)
	if err != nil {
		t.Fatalf("Open(%q): got error %v, want nil", name, err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 2)
	n, err := f.ReadAt(buf, 510)
	if err != nil {
		t.Fatalf("ReadAt(510): got error %v, want nil", err)
	}
	if n != 2 || !bytes.Equal(buf, content[510:512]) {
		t.Errorf("ReadAt(510) = %d %x, want 2 %x", n, buf, content[510:512])
	}

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("File.Stat(): got error %v, want nil", err)
	}
	if info.Size() != int64(len(content)) {
		t.Errorf("File.Stat(): Size() = %d, want %d", info.Size(), len(content))
	}
}

func testReadFSReadAtPastEnd(t *testing.T, filesystem fs.Filesystem, name string, content []byte) {
	f, err := filesystem.Open(name)
	if err != nil {
		t.Fatalf("Open(%q): got error %v, want nil", name, err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 4)
	n, err := f.ReadAt(buf, int64(len(content)-2))
	if !errors.Is(err, io.EOF) {
		t.Errorf("ReadAt past end: got error %v, want io.EOF", err)
	}
	if n != 2 {
		t.Errorf("ReadAt past end: read %d bytes, want 2", n)
	}
}

func testReadFSOpenNonExistent(t *testing.T, filesystem fs.Filesystem, root string) {
	missing := join(root, "nope.img")
	_, err := filesystem.Open(missing)
	if !errors.Is(err, iofs.ErrNotExist) {
		t.Errorf("Open(%q): got error %v, want fs.ErrNotExist", missing, err)
	}
}
