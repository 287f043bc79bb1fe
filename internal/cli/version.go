package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tagshelf/internal/sqlite"
	"github.com/mesh-intelligence/tagshelf/pkg/tagshelf"
)

const modulePath = "github.com/mesh-intelligence/tagshelf"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tagshelf version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "tagshelf v%s\nmodule: %s\nschema: %d\n", tagshelf.Version, modulePath, sqlite.SchemaVersion)
			return nil
		},
	}
}
