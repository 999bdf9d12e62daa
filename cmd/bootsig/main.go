// Command bootsig marks a disk image bootable by writing the 0x55AA boot
// sector signature at offset 0x1FE.
//
// Usage:
//
//	bootsig [--short-image pad|reject] [--check] [-v] <image file name>
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/input-output-hk/catalyst-forge-libs/bootsig/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, os.Args[0], os.Args[1:], os.Stdout, os.Stderr, nil)
	stop()
	os.Exit(code)
}
