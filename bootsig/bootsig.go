package bootsig

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	ferrors "github.com/input-output-hk/catalyst-forge-libs/bootsig/errors"
	"github.com/input-output-hk/catalyst-forge-libs/bootsig/fs"
	"github.com/input-output-hk/catalyst-forge-libs/bootsig/fs/billy"
)

const (
	// SectorSize is the size of the boot sector firmware loads.
	SectorSize = 512

	// Offset is the position of the signature within the boot sector (0x1FE).
	Offset = 0x1FE
)

// Signature is the two-byte marker firmware expects at Offset.
var Signature = [2]byte{0x55, 0xAA}

// Writer patches boot signatures into image files.
// A Writer holds no per-image state and is safe for concurrent use as long as
// two calls never target the same file.
type Writer struct {
	fs     fs.Filesystem
	logger *slog.Logger
	policy ShortImagePolicy
}

// New returns a Writer operating on fsys. A nil fsys means the host
// filesystem, with relative paths resolved against the working directory.
func New(fsys fs.Filesystem, opts ...Option) *Writer {
	if fsys == nil {
		fsys = billy.NewBaseOSFS()
	}

	options := defaultOptions()
	applyOptions(options, opts)

	return &Writer{
		fs:     fsys,
		logger: options.logger,
		policy: options.policy,
	}
}

// Write sets bytes 510-511 of the image at path to 0x55 0xAA.
//
// The image must already exist; it is never created or truncated. Images of
// at least SectorSize bytes keep their length and every other byte. Shorter
// images are handled according to the configured ShortImagePolicy. The file
// handle is released on every return path.
func (w *Writer) Write(ctx context.Context, path string) (err error) {
	if err := ctx.Err(); err != nil {
		return classify(err, "write boot signature to", path)
	}
	if path == "" {
		return ferrors.New(ferrors.CodeInvalidInput, "image path is empty")
	}

	if w.logger != nil {
		w.logger.DebugContext(ctx, "opening image",
			"path", absPath(path),
			"policy", w.policy.String())
	}

	f, err := w.fs.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return w.fail(ctx, classify(err, "open image", path))
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = w.fail(ctx, classify(cerr, "close image", path))
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return w.fail(ctx, classify(err, "stat image", path))
	}

	size := info.Size()
	if size < SectorSize {
		if w.policy == PolicyReject {
			return w.fail(ctx, ferrors.Wrapf(ErrShortImage, ferrors.CodeInvalidInput,
				"image %q is %d bytes, need %d", path, size, SectorSize))
		}
		if size < Offset {
			if err := writeAt(f, size, make([]byte, int64(Offset)-size)); err != nil {
				return w.fail(ctx, classify(err, "pad image", path))
			}
		}
	}

	if err := writeAt(f, Offset, Signature[:]); err != nil {
		return w.fail(ctx, classify(err, "write boot signature to", path))
	}

	if w.logger != nil {
		w.logger.DebugContext(ctx, "boot signature written",
			"path", path,
			"offset", Offset,
			"original_size", size)
	}
	return nil
}

// Check reports whether bytes 510-511 of the image at path hold the boot
// signature. Images shorter than SectorSize report false. The image is
// opened read-only.
func (w *Writer) Check(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, classify(err, "check image", path)
	}
	if path == "" {
		return false, ferrors.New(ferrors.CodeInvalidInput, "image path is empty")
	}

	info, err := w.fs.Stat(path)
	if err != nil {
		return false, classify(err, "check image", path)
	}
	if info.IsDir() {
		return false, classify(fs.ErrIsDir, "check image", path)
	}

	f, err := w.fs.Open(path)
	if err != nil {
		return false, classify(err, "open image", path)
	}
	defer func() { _ = f.Close() }()

	var got [len(Signature)]byte
	n, err := f.ReadAt(got[:], Offset)
	switch {
	case errors.Is(err, io.EOF) && n < len(got):
		return false, nil
	case err != nil && !errors.Is(err, io.EOF):
		return false, classify(err, "read image", path)
	}

	present := got == Signature
	if w.logger != nil {
		w.logger.DebugContext(ctx, "boot signature checked",
			"path", path,
			"present", present)
	}
	return present, nil
}

func (w *Writer) fail(ctx context.Context, err error) error {
	if w.logger != nil {
		w.logger.ErrorContext(ctx, "failed to write boot signature",
			"code", string(ferrors.CodeOf(err)),
			"error", err)
	}
	return err
}

// writeAt writes p at absolute offset off through the file cursor.
func writeAt(f fs.File, off int64, p []byte) error {
	if _, err := f.Seek(off, io.SeekStart); err != nil {
		return err
	}
	n, err := f.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}
	return nil
}

func absPath(path string) string {
	abs, err := fs.GetAbs(path)
	if err != nil {
		return path
	}
	return abs
}
