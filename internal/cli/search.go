package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tagshelf/internal/catalog"
)

func newSearchCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Find catalog tags by approximate name or translation",
		Long: `Rank catalog tags by how well the query matches their name or
translation, tolerating typos. The algorithm and threshold come from the
search section of config.yaml.

Example:
  tagshelf search macine learning
  tagshelf search 机器 --limit 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				hits := c.Search(query)
				if limit > 0 && len(hits) > limit {
					hits = hits[:limit]
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), hits)
				}
				printTags(cmd.OutOrStdout(), hits)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (0 = no limit)")
	return cmd
}
