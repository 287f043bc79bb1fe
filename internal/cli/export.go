package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tagshelf/internal/catalog"
	"github.com/mesh-intelligence/tagshelf/internal/clipboard"
)

func newExportCmd(a *app) *cobra.Command {
	var copyOut bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the selection as a weighted prompt string",
		Long: `Print the selected tag names in order, joined by ", ", with each name
wrapped in as many brace pairs as its weight: "{{cat}}, dog".

With --copy the string is also written to the system clipboard. A failed
copy is not an error; the confirmation is only printed when it succeeds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				text, copied := c.ExportString(), false
				if copyOut {
					text, copied = c.CopyExport(a.clipWriter())
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), map[string]any{
						"text":   text,
						"copied": copied,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				if copied {
					fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard.")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&copyOut, "copy", false, "also copy the string to the clipboard")
	return cmd
}

func (a *app) clipWriter() clipboard.Writer {
	if a.clip == nil {
		return clipboard.System{}
	}
	return a.clip
}
