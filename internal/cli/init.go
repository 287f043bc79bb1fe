package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tagshelf/internal/catalog"
	"github.com/mesh-intelligence/tagshelf/internal/errs"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize tagshelf storage",
		Long:  "Create the configuration and data directories, write a default config.yaml,\nand seed the catalog with the built-in tags when it is empty.",
		Args:  cobra.NoArgs,
		RunE:  a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(a.configDir, 0o755); err != nil {
		return errs.Storage(err, "create config directory", errs.Field("path", a.configDir))
	}

	// Only an explicit --data-dir is recorded; otherwise the file keeps the
	// default resolution.
	var dataDir string
	if a.flags.dataDir != "" {
		abs, err := filepath.Abs(a.flags.dataDir)
		if err != nil {
			return errs.Wrap(err, errs.CodeConfigInvalid, "resolve data dir")
		}
		dataDir = abs
	}

	configPath := filepath.Join(a.configDir, configFileExt)
	created, err := writeConfigIfMissing(configPath, dataDir)
	if err != nil {
		return errs.Storage(err, "write config", errs.Field("path", configPath))
	}

	return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
		out := cmd.OutOrStdout()
		if a.flags.jsonMode {
			return printJSON(out, map[string]any{
				"config":         configPath,
				"config_created": created,
				"tags":           len(c.ListTags()),
				"categories":     len(c.ListCategories()),
			})
		}
		fmt.Fprintln(out, "Tagshelf initialized successfully")
		fmt.Fprintf(out, "Catalog: %d tags, %d categories\n", len(c.ListTags()), len(c.ListCategories()))
		return nil
	})
}
