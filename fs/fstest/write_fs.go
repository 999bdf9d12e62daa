package fstest

import (
	"bytes"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/bootsig/fs"
)

// TestWriteFS tests in-place update semantics of OpenFile(O_RDWR).
func TestWriteFS(t *testing.T, filesystem fs.Filesystem, root string) {
	if root != "" {
		if err := filesystem.MkdirAll(root, 0o755); err != nil {
			t.Fatalf("MkdirAll(%q): setup failed: %v", root, err)
		}
	}

	t.Run("UpdateInPlace", func(t *testing.T) {
		testWriteFSUpdateInPlace(t, filesystem, root)
	})
	t.Run("WritePastEnd", func(t *testing.T) {
		testWriteFSWritePastEnd(t, filesystem, root)
	})
	t.Run("NoCreate", func(t *testing.T) {
		testWriteFSNoCreate(t, filesystem, root)
	})
	t.Run("Directory", func(t *testing.T) {
		testWriteFSDirectory(t, filesystem, root)
	})
}

func openRW(t *testing.T, filesystem fs.Filesystem, name string) fs.File {
	t.Helper()
	f, err := filesystem.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("OpenFile(%q, O_RDWR): got error %v, want nil", name, err)
	}
	return f
}

func writeAt(t *testing.T, f fs.File, off int64, data []byte) {
	t.Helper()
	pos, err := f.Seek(off, io.SeekStart)
	if err != nil {
		t.Fatalf("Seek(%d): got error %v, want nil", off, err)
	}
	if pos != off {
		t.Fatalf("Seek(%d): position %d, want %d", off, pos, off)
	}
	n, err := f.Write(data)
	if err != nil {
		t.Fatalf("Write(): got error %v, want nil", err)
	}
	if n != len(data) {
		t.Fatalf("Write(): wrote %d bytes, want %d", n, len(data))
	}
}

// testWriteFSUpdateInPlace checks that O_RDWR neither truncates nor moves
// bytes outside the written range.
func testWriteFSUpdateInPlace(t *testing.T, filesystem fs.Filesystem, root string) {
	name := join(root, "inplace.img")
	original := pattern(1024)
	if err := filesystem.WriteFile(name, original, 0o644); err != nil {
		t.Fatalf("WriteFile(%q): setup failed: %v", name, err)
	}

	f := openRW(t, filesystem, name)
	writeAt(t, f, 100, []byte{0xde, 0xad})
	if err := f.Close(); err != nil {
		t.Fatalf("Close(): got error %v, want nil", err)
	}

	want := append([]byte(nil), original...)
	want[100], want[101] = 0xde, 0xad

	got, err := filesystem.ReadFile(name)
	if err != nil {
		t.Fatalf("ReadFile(%q): got error %v, want nil", name, err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("ReadFile(%q): content differs outside the written range", name)
	}
}

// testWriteFSWritePastEnd checks that writing after seeking beyond EOF
// extends the file and zero-fills the gap.
func testWriteFSWritePastEnd(t *testing.T, filesystem fs.Filesystem, root string) {
	name := join(root, "short.img")
	original := pattern(10)
	if err := filesystem.WriteFile(name, original, 0o644); err != nil {
		t.Fatalf("WriteFile(%q): setup failed: %v", name, err)
	}

	f := openRW(t, filesystem, name)
	writeAt(t, f, 20, []byte{0x01, 0x02})
	if err := f.Close(); err != nil {
		t.Fatalf("Close(): got error %v, want nil", err)
	}

	want := make([]byte, 22)
	copy(want, original)
	want[20], want[21] = 0x01, 0x02

	got, err := filesystem.ReadFile(name)
	if err != nil {
		t.Fatalf("ReadFile(%q): got error %v, want nil", name, err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("ReadFile(%q) = %x, want %x", name, got, want)
	}
}

func testWriteFSNoCreate(t *testing.T, filesystem fs.Filesystem, root string) {
	name := join(root, "absent.img")

	_, err := filesystem.OpenFile(name, os.O_RDWR, 0)
	if !errors.Is(err, iofs.ErrNotExist) {
		t.Errorf("OpenFile(%q, O_RDWR): got error %v, want fs.ErrNotExist", name, err)
	}

	ok, err := filesystem.Exists(name)
	if err != nil {
		t.Fatalf("Exists(%q): got error %v, want nil", name, err)
	}
	if ok {
		t.Errorf("OpenFile(%q, O_RDWR) created the file", name)
	}
}

func testWriteFSDirectory(t *testing.T, filesystem fs.Filesystem, root string) {
	dir := join(root, "imgdir")
	if err := filesystem.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll(%q): setup failed: %v", dir, err)
	}

	_, err := filesystem.OpenFile(dir, os.O_RDWR, 0)
	if err == nil {
		t.Fatalf("OpenFile(%q, O_RDWR): got nil error for a directory", dir)
	}
}
