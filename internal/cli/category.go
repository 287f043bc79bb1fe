package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tagshelf/internal/catalog"
)

func newCategoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage categories and subcategories",
	}
	cmd.AddCommand(newCategoryListCmd(a))
	cmd.AddCommand(newCategoryAddCmd(a))
	cmd.AddCommand(newCategoryDeleteCmd(a))
	cmd.AddCommand(newCategoryRenameCmd(a))
	return cmd
}

func newCategoryListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories with their subcategories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				categories := c.ListCategories()
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), categories)
				}
				printCategories(cmd.OutOrStdout(), categories)
				return nil
			})
		},
	}
}

func newCategoryAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <main> [sub]",
		Short: "Add a main category, or a subcategory under it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			main, sub := categoryArgs(args)
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				if err := c.UpsertCategory(cmd.Context(), main, sub); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", categoryLabel(main, sub))
				return nil
			})
		},
	}
}

func newCategoryDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <main> [sub]",
		Short: "Delete a main category or one of its subcategories",
		Long: `Delete a main category, or only the subcategory sub when given.

With the cascade policy (categories.delete_policy in config.yaml, the
default) the tags filed there are deleted and dropped from the selection.
With the orphan policy they are kept.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			main, sub := categoryArgs(args)
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				before := len(c.ListTags())
				if err := c.DeleteCategory(cmd.Context(), main, sub); err != nil {
					return err
				}
				removed := before - len(c.ListTags())
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), map[string]any{
						"main":         main,
						"sub":          sub,
						"tags_deleted": removed,
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%d tags removed)\n", categoryLabel(main, sub), removed)
				return nil
			})
		},
	}
}

func newCategoryRenameCmd(a *app) *cobra.Command {
	var under string
	cmd := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a main category, or a subcategory with --main",
		Long: `Rename a category and move every tag and selected tag filed under it.

Example:
  tagshelf category rename 技术 科技
  tagshelf category rename --main 技术 人工智能 机器智能`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := catalog.Rename{Old: args[0], New: args[1], IsMain: under == "", Main: under}
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				if err := c.RenameCategory(cmd.Context(), r); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", categoryLabel(under, r.Old), r.New)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&under, "main", "", "rename a subcategory of this main category")
	return cmd
}

func categoryArgs(args []string) (main, sub string) {
	main = args[0]
	if len(args) > 1 {
		sub = args[1]
	}
	return main, sub
}

func categoryLabel(main, sub string) string {
	switch {
	case main == "":
		return sub
	case sub == "":
		return main
	default:
		return main + "/" + sub
	}
}
