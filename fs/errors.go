package fs

import "errors"

// ErrIsDir is returned when a directory is opened for writing.
var ErrIsDir = errors.New("is a directory")
