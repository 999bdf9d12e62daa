package bootsig_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/bootsig/bootsig"
	"github.com/input-output-hk/catalyst-forge-libs/bootsig/errors"
	"github.com/input-output-hk/catalyst-forge-libs/bootsig/fs"
	"github.com/input-output-hk/catalyst-forge-libs/bootsig/fs/billy"
)

func signed(content []byte) []byte {
	out := append([]byte(nil), content...)
	out[510], out[511] = 0x55, 0xAA
	return out
}

func newImage(t *testing.T, content []byte) (*billy.FS, string) {
	t.Helper()
	fsys := billy.NewInMemoryFS()
	require.NoError(t, fsys.WriteFile("disk.img", content, 0o644))
	return fsys, "disk.img"
}

func TestConstants(t *testing.T) {
	assert.Equal(t, 0x1FE, bootsig.Offset)
	assert.Equal(t, 512, bootsig.SectorSize)
	assert.Equal(t, [2]byte{0x55, 0xAA}, bootsig.Signature)

	// Offset is untyped so it serves both int and int64 APIs.
	var seek int64 = bootsig.Offset
	var index int = bootsig.Offset
	assert.Equal(t, int64(510), seek)
	assert.Equal(t, 510, index)
}

func TestWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("zeroed sector", func(t *testing.T) {
		fsys, path := newImage(t, zeros(512))

		require.NoError(t, bootsig.New(fsys).Write(ctx, path))

		got, err := fsys.ReadFile(path)
		require.NoError(t, err)
		require.Len(t, got, 512)
		assert.Equal(t, zeros(510), got[:510])
		assert.Equal(t, []byte{0x55, 0xAA}, got[510:])
	})

	t.Run("idempotent", func(t *testing.T) {
		fsys, path := newImage(t, pattern(1024))
		w := bootsig.New(fsys)

		require.NoError(t, w.Write(ctx, path))
		once, err := fsys.ReadFile(path)
		require.NoError(t, err)

		require.NoError(t, w.Write(ctx, path))
		twice, err := fsys.ReadFile(path)
		require.NoError(t, err)

		assert.Equal(t, once, twice)
	})

	t.Run("only signature bytes change", func(t *testing.T) {
		original := pattern(4096)
		fsys, path := newImage(t, original)

		require.NoError(t, bootsig.New(fsys).Write(ctx, path))

		got, err := fsys.ReadFile(path)
		require.NoError(t, err)
		require.Len(t, got, len(original))
		for i := range original {
			if i == 510 || i == 511 {
				continue
			}
			if got[i] != original[i] {
				t.Fatalf("byte %d changed: got %#x, want %#x", i, got[i], original[i])
			}
		}
		assert.Equal(t, signed(original), got)
	})

	t.Run("already signed image is unchanged", func(t *testing.T) {
		original := signed(pattern(512))
		fsys, path := newImage(t, original)

		require.NoError(t, bootsig.New(fsys).Write(ctx, path))

		got, err := fsys.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, original, got)
	})
}

func TestWriteErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing image is not created", func(t *testing.T) {
		fsys := billy.NewInMemoryFS()

		err := bootsig.New(fsys).Write(ctx, "missing.img")
		require.Error(t, err)
		assert.ErrorIs(t, err, iofs.ErrNotExist)
		assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))

		ok, err := fsys.Exists("missing.img")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("directory", func(t *testing.T) {
		fsys := billy.NewInMemoryFS()
		require.NoError(t, fsys.MkdirAll("images", 0o755))

		err := bootsig.New(fsys).Write(ctx, "images")
		require.Error(t, err)
		assert.ErrorIs(t, err, fs.ErrIsDir)
		assert.Equal(t, errors.CodeInvalidInput, errors.CodeOf(err))
	})

	t.Run("empty path", func(t *testing.T) {
		err := bootsig.New(billy.NewInMemoryFS()).Write(ctx, "")
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidInput, errors.CodeOf(err))
	})

	t.Run("permission denied", func(t *testing.T) {
		fsys := &faultyFS{
			Filesystem: billy.NewInMemoryFS(),
			openErr:    &os.PathError{Op: "open", Path: "locked.img", Err: iofs.ErrPermission},
		}

		err := bootsig.New(fsys).Write(ctx, "locked.img")
		require.Error(t, err)
		assert.ErrorIs(t, err, iofs.ErrPermission)
		assert.Equal(t, errors.CodeForbidden, errors.CodeOf(err))
	})

	t.Run("canceled context touches nothing", func(t *testing.T) {
		fsys, path := newImage(t, zeros(512))
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := bootsig.New(fsys).Write(cctx, path)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, errors.CodeCanceled, errors.CodeOf(err))

		got, err := fsys.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, zeros(512), got)
	})
}

func TestWriteReleasesHandle(t *testing.T) {
	ctx := context.Background()
	errDisk := stderrors.New("disk on fire")

	t.Run("write failure", func(t *testing.T) {
		inner, path := newImage(t, zeros(512))
		fsys := &faultyFS{Filesystem: inner, writeErr: errDisk}

		err := bootsig.New(fsys).Write(ctx, path)
		require.Error(t, err)
		assert.ErrorIs(t, err, errDisk)
		assert.Equal(t, errors.CodeExecutionFailed, errors.CodeOf(err))

		require.Len(t, fsys.opened, 1)
		assert.True(t, fsys.opened[0].closed)
	})

	t.Run("short write", func(t *testing.T) {
		inner, path := newImage(t, zeros(512))
		fsys := &faultyFS{Filesystem: inner, shortWrite: true}

		err := bootsig.New(fsys).Write(ctx, path)
		require.Error(t, err)
		assert.ErrorIs(t, err, io.ErrShortWrite)

		require.Len(t, fsys.opened, 1)
		assert.True(t, fsys.opened[0].closed)
	})

	t.Run("close failure is reported", func(t *testing.T) {
		inner, path := newImage(t, zeros(512))
		fsys := &faultyFS{Filesystem: inner, closeErr: errDisk}

		err := bootsig.New(fsys).Write(ctx, path)
		require.Error(t, err)
		assert.ErrorIs(t, err, errDisk)
		assert.Contains(t, err.Error(), "close image")
	})

	t.Run("write failure wins over close failure", func(t *testing.T) {
		errClose := stderrors.New("close failed")
		inner, path := newImage(t, zeros(512))
		fsys := &faultyFS{Filesystem: inner, writeErr: errDisk, closeErr: errClose}

		err := bootsig.New(fsys).Write(ctx, path)
		require.Error(t, err)
		assert.ErrorIs(t, err, errDisk)
		assert.NotErrorIs(t, err, errClose)
	})
}

func TestWriteShortImage(t *testing.T) {
	ctx := context.Background()

	for _, size := range []int{0, 1, 100, 509, 510, 511} {
		original := pattern(size)

		t.Run("pad/"+strconv.Itoa(size), func(t *testing.T) {
			fsys, path := newImage(t, original)

			require.NoError(t, bootsig.New(fsys).Write(ctx, path))

			got, err := fsys.ReadFile(path)
			require.NoError(t, err)
			require.Len(t, got, bootsig.SectorSize)

			want := make([]byte, bootsig.SectorSize)
			copy(want, original)
			assert.Equal(t, signed(want), got)
		})

		t.Run("reject/"+strconv.Itoa(size), func(t *testing.T) {
			fsys, path := newImage(t, original)
			w := bootsig.New(fsys, bootsig.WithShortImagePolicy(bootsig.PolicyReject))

			err := w.Write(ctx, path)
			require.Error(t, err)
			assert.ErrorIs(t, err, bootsig.ErrShortImage)
			assert.Equal(t, errors.CodeInvalidInput, errors.CodeOf(err))

			got, err := fsys.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(original, got), "image modified: got %x", got)
		})
	}

	t.Run("reject accepts a full sector", func(t *testing.T) {
		fsys, path := newImage(t, zeros(512))
		w := bootsig.New(fsys, bootsig.WithShortImagePolicy(bootsig.PolicyReject))

		require.NoError(t, w.Write(ctx, path))
	})
}

// TestWriteHostFilesystem runs against the real OS so short-image handling is
// verified on the platform rather than only on the in-memory backend.
func TestWriteHostFilesystem(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	w := bootsig.New(nil)

	t.Run("zeroed sector", func(t *testing.T) {
		path := filepath.Join(dir, "sector.img")
		require.NoError(t, os.WriteFile(path, zeros(512), 0o644))

		require.NoError(t, w.Write(ctx, path))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, signed(zeros(512)), got)
	})

	t.Run("short image is padded to one sector", func(t *testing.T) {
		path := filepath.Join(dir, "short.img")
		require.NoError(t, os.WriteFile(path, zeros(100), 0o644))

		require.NoError(t, w.Write(ctx, path))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, int64(512), info.Size())

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, signed(zeros(512)), got)
	})

	t.Run("missing image is not created", func(t *testing.T) {
		path := filepath.Join(dir, "missing.img")

		err := w.Write(ctx, path)
		require.Error(t, err)
		assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))

		_, err = os.Stat(path)
		assert.ErrorIs(t, err, iofs.ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		err := w.Write(ctx, dir)
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidInput, errors.CodeOf(err))
	})

	t.Run("read-only image", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced for root")
		}
		path := filepath.Join(dir, "readonly.img")
		require.NoError(t, os.WriteFile(path, zeros(512), 0o444))

		err := w.Write(ctx, path)
		require.Error(t, err)
		assert.Equal(t, errors.CodeForbidden, errors.CodeOf(err))
	})
}

func TestCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("unsigned then signed", func(t *testing.T) {
		fsys, path := newImage(t, zeros(512))
		w := bootsig.New(fsys)

		ok, err := w.Check(ctx, path)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, w.Write(ctx, path))

		ok, err = w.Check(ctx, path)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("swapped bytes are not a signature", func(t *testing.T) {
		content := zeros(512)
		content[510], content[511] = 0xAA, 0x55
		fsys, path := newImage(t, content)

		ok, err := bootsig.New(fsys).Check(ctx, path)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("short image", func(t *testing.T) {
		for _, size := range []int{0, 100, 511} {
			fsys, path := newImage(t, zeros(size))

			ok, err := bootsig.New(fsys).Check(ctx, path)
			require.NoError(t, err, "size %d", size)
			assert.False(t, ok, "size %d", size)
		}
	})

	t.Run("missing image", func(t *testing.T) {
		_, err := bootsig.New(billy.NewInMemoryFS()).Check(ctx, "missing.img")
		require.Error(t, err)
		assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
	})

	t.Run("directory", func(t *testing.T) {
		fsys := billy.NewInMemoryFS()
		require.NoError(t, fsys.MkdirAll("images", 0o755))

		_, err := bootsig.New(fsys).Check(ctx, "images")
		require.Error(t, err)
		assert.ErrorIs(t, err, fs.ErrIsDir)
	})

	t.Run("does not modify the image", func(t *testing.T) {
		original := pattern(600)
		fsys, path := newImage(t, original)

		_, err := bootsig.New(fsys).Check(ctx, path)
		require.NoError(t, err)

		got, err := fsys.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, original, got)
	})
}

func TestWriteLogging(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fsys, path := newImage(t, zeros(512))
	require.NoError(t, bootsig.New(fsys, bootsig.WithLogger(logger)).Write(ctx, path))
	assert.Contains(t, buf.String(), "boot signature written")
	assert.Contains(t, buf.String(), "offset=510")

	buf.Reset()
	err := bootsig.New(fsys, bootsig.WithLogger(logger)).Write(ctx, "missing.img")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "failed to write boot signature")
	assert.Contains(t, buf.String(), "code=NOT_FOUND")

	t.Run("success is quiet at info level", func(t *testing.T) {
		var info bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}))

		fsys, path := newImage(t, zeros(512))
		require.NoError(t, bootsig.New(fsys, bootsig.WithLogger(logger)).Write(ctx, path))
		assert.Empty(t, info.String())
	})
}
