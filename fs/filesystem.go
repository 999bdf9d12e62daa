package fs

import "os"

// Filesystem is the set of operations needed to inspect and patch image files.
//
// Errors must wrap the standard sentinels (fs.ErrNotExist, fs.ErrPermission)
// so callers can classify them with errors.Is.
type Filesystem interface {
	// Exists reports whether path exists.
	Exists(path string) (bool, error)

	// Open opens name for reading.
	Open(name string) (File, error)

	// OpenFile opens name with the given os.O_* flags. Without os.O_CREATE
	// a missing file is an error and nothing is created. Opening a directory
	// for writing fails with an error wrapping ErrIsDir.
	OpenFile(name string, flag int, perm os.FileMode) (File, error)

	// ReadFile returns the full contents of path.
	ReadFile(path string) ([]byte, error)

	// Stat returns file information for name.
	Stat(name string) (os.FileInfo, error)

	// WriteFile writes data to filename, creating or truncating it.
	WriteFile(filename string, data []byte, perm os.FileMode) error

	// MkdirAll creates path and any missing parents.
	MkdirAll(path string, perm os.FileMode) error
}
