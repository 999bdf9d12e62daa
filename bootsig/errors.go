package bootsig

import (
	"context"
	"errors"
	iofs "io/fs"

	ferrors "github.com/input-output-hk/catalyst-forge-libs/bootsig/errors"
	"github.com/input-output-hk/catalyst-forge-libs/bootsig/fs"
)

// ErrShortImage is returned under PolicyReject when the image is shorter
// than one sector.
var ErrShortImage = errors.New("image is shorter than one sector")

// ErrNoSignature is returned by the command line's --check mode when Check
// reports the signature absent.
var ErrNoSignature = errors.New("boot signature absent")

// classify attaches an error code to an I/O failure on path.
func classify(err error, op, path string) error {
	code := ferrors.CodeExecutionFailed
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		code = ferrors.CodeNotFound
	case errors.Is(err, iofs.ErrPermission):
		code = ferrors.CodeForbidden
	case errors.Is(err, fs.ErrIsDir):
		code = ferrors.CodeInvalidInput
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = ferrors.CodeCanceled
	}
	return ferrors.Wrapf(err, code, "%s %q", op, path)
}
