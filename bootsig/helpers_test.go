package bootsig_test

import (
	"os"

	"github.com/input-output-hk/catalyst-forge-libs/bootsig/fs"
)

// faultyFS wraps a filesystem and injects failures into OpenFile and the
// handles it returns.
type faultyFS struct {
	fs.Filesystem

	openErr    error
	writeErr   error
	closeErr   error
	shortWrite bool

	opened []*faultyFile
}

func (f *faultyFS) OpenFile(name string, flag int, perm os.FileMode) (fs.File, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	inner, err := f.Filesystem.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	file := &faultyFile{
		File:       inner,
		writeErr:   f.writeErr,
		closeErr:   f.closeErr,
		shortWrite: f.shortWrite,
	}
	f.opened = append(f.opened, file)
	return file, nil
}

type faultyFile struct {
	fs.File

	writeErr   error
	closeErr   error
	shortWrite bool

	closed bool
}

func (f *faultyFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	if f.shortWrite && len(p) > 1 {
		return f.File.Write(p[:len(p)-1])
	}
	return f.File.Write(p)
}

func (f *faultyFile) Close() error {
	f.closed = true
	if err := f.File.Close(); err != nil {
		return err
	}
	return f.closeErr
}

func zeros(n int) []byte {
	return make([]byte, n)
}

// pattern returns n non-zero bytes that differ from their neighbours.
func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i%253 + 1)
	}
	return b
}
