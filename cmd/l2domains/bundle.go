package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"l2domains/internal/codec"
)

func newBundleCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Write a snapshot directory as a single YAML or JSON file",
		Long: `Bundles a snapshot into the single-file form accepted by the server's
POST /api/analyses. The format follows the output file extension, or --format
when writing to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			format := a.format
			if output != "" {
				format = strings.TrimPrefix(filepath.Ext(output), ".")
			}
			if format == formatTable {
				format = formatYAML
			}
			c, err := codec.ForFormat(format)
			if err != nil {
				return err
			}

			s, err := a.load()
			if err != nil {
				return err
			}
			if err := s.Validate(); err != nil {
				return err
			}

			if output == "" {
				return c.ExportSnapshot(s, cmd.OutOrStdout())
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := c.ExportSnapshot(s, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d devices)\n", output, len(s.Configurations))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
