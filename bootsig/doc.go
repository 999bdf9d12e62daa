// Package bootsig marks disk images bootable by writing the x86 boot sector
// signature.
//
// Firmware loads the first 512-byte sector of a disk and only executes it
// when bytes 510 and 511 hold 0x55 0xAA. A Writer patches exactly those two
// bytes of an existing image in place: the file is opened read-write without
// being created or truncated, and every other byte is left untouched.
//
// # Short images
//
// Images shorter than one sector have no byte 511 to patch. Rather than
// inheriting whatever a backend does when writing past end-of-file, the
// Writer applies an explicit ShortImagePolicy: PolicyPad (the default)
// zero-fills the image up to the signature so it ends up exactly one sector
// long, and PolicyReject leaves the file alone and returns ErrShortImage.
//
// # Basic usage
//
//	w := bootsig.New(billy.NewBaseOSFS(), bootsig.WithLogger(slog.Default()))
//	if err := w.Write(ctx, "boot.img"); err != nil {
//	    return err
//	}
//
// Errors carry codes from the errors package (CodeNotFound, CodeForbidden,
// CodeInvalidInput, CodeExecutionFailed, CodeCanceled) and wrap the
// underlying cause, so both errors.Is(err, fs.ErrNotExist) and
// errors.CodeOf(err) work.
package bootsig
