// Package fstest provides a conformance test suite for filesystem providers
// used to patch image files.
//
// It validates the parts of the fs.Filesystem contract the boot signature
// writer relies on: opening without creating or truncating, positioned reads
// and writes, writes past the end of a file, and error classification through
// the standard fs sentinels.
//
// Example usage:
//
//	func TestMyProvider(t *testing.T) {
//	    fstest.TestSuite(t, func() fs.Filesystem {
//	        return myprovider.New()
//	    }, "")
//	}
package fstest

import (
	"path"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/bootsig/fs"
)

// TestSuite runs all conformance tests against a filesystem. newFS must
// return a fresh filesystem for each group; root is the directory inside it
// in which test files are created (empty means the filesystem root).
func TestSuite(t *testing.T, newFS func() fs.Filesystem, root string) {
	TestSuiteWithSkip(t, newFS, root, nil)
}

// TestSuiteWithSkip runs conformance tests with optional test skipping.
// The skipTests parameter holds group names to skip (e.g., "WriteFS").
func TestSuiteWithSkip(t *testing.T, newFS func() fs.Filesystem, root string, skipTests []string) {
	shouldSkip := func(testName string) bool {
		for _, skip := range skipTests {
			if skip == testName {
				return true
			}
		}
		return false
	}

	t.Run("ReadFS", func(t *testing.T) {
		if shouldSkip("ReadFS") {
			t.Skip("Skipped by provider configuration")
			return
		}
		TestReadFS(t, newFS(), root)
	})

	t.Run("WriteFS", func(t *testing.T) {
		if shouldSkip("WriteFS") {
			t.Skip("Skipped by provider configuration")
			return
		}
		TestWriteFS(t, newFS(), root)
	})
}

func join(root, name string) string {
	if root == "" {
		return name
	}
	return path.Join(root, name)
}

// pattern returns n bytes where byte i is i%251+1, so no byte is zero and
// misplaced writes are easy to spot.
func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i%251 + 1)
	}
	return b
}
