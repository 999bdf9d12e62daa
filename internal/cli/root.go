// Package cli implements the bootsig command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/bootsig/bootsig"
	"github.com/input-output-hk/catalyst-forge-libs/bootsig/fs"
)

// NewRootCommand builds the bootsig command. name is the program name shown
// in the usage line; fsys may be nil to use the host filesystem.
func NewRootCommand(name string, fsys fs.Filesystem) *cobra.Command {
	var (
		policy  bootsig.ShortImagePolicy
		check   bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   name + " <image file name>",
		Short: "Mark a disk image bootable by writing the 0x55AA boot sector signature",
		Long: "Writes the bytes 0x55 0xAA at offset 0x1FE (510) of an existing image file.\n" +
			"The image is patched in place; it is never created or truncated.\n" +
			"Flags must precede the image path; everything after it is ignored.\n" +
			"Use -- before a path that begins with a dash.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Usage: %s <image file name>\n", name)
				return err
			}
			path := args[0]

			w := bootsig.New(fsys,
				bootsig.WithLogger(newLogger(verbose, cmd.ErrOrStderr())),
				bootsig.WithShortImagePolicy(policy),
			)

			if !check {
				return w.Write(cmd.Context(), path)
			}

			present, err := w.Check(cmd.Context(), path)
			if err != nil {
				return err
			}
			if !present {
				return fmt.Errorf("%s: %w", path, bootsig.ErrNoSignature)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: boot signature present\n", path)
			return err
		},
	}

	// Parsing stops at the image path so trailing arguments stay ignored,
	// flag-like or not.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().Var(&policy, "short-image",
		"handling of images shorter than 512 bytes: pad (zero-fill to one sector) or reject")
	cmd.Flags().BoolVar(&check, "check", false,
		"only report whether the image already carries the boot signature")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	return cmd
}

// Execute runs the command with args and returns the process exit status.
// Errors are reported on stderr prefixed with the program name.
func Execute(ctx context.Context, name string, args []string, stdout, stderr io.Writer, fsys fs.Filesystem) int {
	cmd := NewRootCommand(name, fsys)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	return 0
}

func newLogger(verbose bool, w io.Writer) *slog.Logger {
	if !verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
