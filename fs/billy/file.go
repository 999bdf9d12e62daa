package billy

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/go-git/go-billy/v5"
)

// File wraps a go-billy File and satisfies the parent fs.File interface.
type File struct {
	file billy.File
	fs   *FS
}

// wrapErr annotates err with the operation and file name. io.EOF passes
// through untouched so callers can compare against it directly.
func (f *File) wrapErr(op string, err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}
	return fmt.Errorf("billy: %s %q: %w", op, f.file.Name(), err)
}

// Close implements File.Close.
func (f *File) Close() error {
	return f.wrapErr("close", f.file.Close())
}

// Name implements File.Name.
func (f *File) Name() string {
	return f.file.Name()
}

// Read implements File.Read.
func (f *File) Read(p []byte) (int, error) {
	n, err := f.file.Read(p)
	return n, f.wrapErr("read", err)
}

// ReadAt implements File.ReadAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	n, err := f.file.ReadAt(p, off)
	return n, f.wrapErr(fmt.Sprintf("readat off=%d", off), err)
}

// Seek implements File.Seek.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	pos, err := f.file.Seek(offset, whence)
	return pos, f.wrapErr(fmt.Sprintf("seek off=%d whence=%d", offset, whence), err)
}

// Stat implements File.Stat. go-billy files carry no Stat of their own, so
// the owning filesystem is asked by name.
func (f *File) Stat() (fs.FileInfo, error) {
	return f.fs.Stat(f.file.Name())
}

// Write implements File.Write.
func (f *File) Write(p []byte) (int, error) {
	n, err := f.file.Write(p)
	return n, f.wrapErr("write", err)
}
