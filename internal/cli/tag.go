package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tagshelf/internal/catalog"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

func newTagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage catalog tags",
	}
	cmd.AddCommand(newTagAddCmd(a))
	cmd.AddCommand(newTagEditCmd(a))
	cmd.AddCommand(newTagDeleteCmd(a))
	cmd.AddCommand(newTagListCmd(a))
	cmd.AddCommand(newTagShowCmd(a))
	return cmd
}

// addFormFlags binds the tag form fields to flags on cmd.
func addFormFlags(cmd *cobra.Command, form *types.TagFormData) {
	cmd.Flags().StringVar(&form.Name, "name", "", "tag name")
	cmd.Flags().StringVar(&form.Translation, "translation", "", "translated name")
	cmd.Flags().StringVar(&form.MainCategory, "main", "", "main category")
	cmd.Flags().StringVar(&form.SubCategory, "sub", "", "subcategory")
	cmd.Flags().StringVar(&form.ImageURL, "image", "", "image URL (http, https, or data:image/)")
}

func newTagAddCmd(a *app) *cobra.Command {
	var form types.TagFormData
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a tag",
		Long: `Create a tag. The category and subcategory are created when missing.

Example:
  tagshelf tag add --name "machine learning" --translation 机器学习 --main 技术 --sub 人工智能`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				tag, err := c.SaveTag(cmd.Context(), form)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), tag)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created tag %s (%s)\n", tag.ID, tag.Name)
				return nil
			})
		},
	}
	addFormFlags(cmd, &form)
	return cmd
}

func newTagEditCmd(a *app) *cobra.Command {
	var form types.TagFormData
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a tag",
		Long: `Change the fields given as flags; the others keep their values.
Selected copies of the tag are not changed.

Example:
  tagshelf tag edit 2 --translation 机器学习技术`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				tag, err := c.GetTag(args[0])
				if err != nil {
					return err
				}
				next := tag.FormData()
				flags := cmd.Flags()
				if flags.Changed("name") {
					next.Name = form.Name
				}
				if flags.Changed("translation") {
					next.Translation = form.Translation
				}
				if flags.Changed("main") {
					next.MainCategory = form.MainCategory
				}
				if flags.Changed("sub") {
					next.SubCategory = form.SubCategory
				}
				if flags.Changed("image") {
					next.ImageURL = form.ImageURL
				}
				tag = next.Apply(tag)
				if err := c.UpdateTag(cmd.Context(), tag); err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), tag)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated tag %s\n", tag.ID)
				return nil
			})
		},
	}
	addFormFlags(cmd, &form)
	return cmd
}

func newTagDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tag and drop it from the selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				if err := c.DeleteTag(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted tag %s\n", args[0])
				return nil
			})
		},
	}
}

func newTagListCmd(a *app) *cobra.Command {
	var main, sub string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog tags",
		Long: `List catalog tags in stored order.

Use --main, and optionally --sub, to list one category.

Example:
  tagshelf tag list
  tagshelf tag list --main 技术 --sub 人工智能 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sub != "" && main == "" {
				return fmt.Errorf("--sub requires --main")
			}
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				tags := c.ListTags()
				if main != "" {
					tags = c.TagsByCategory(main, sub)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), tags)
				}
				printTags(cmd.OutOrStdout(), tags)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&main, "main", "", "only tags in this main category")
	cmd.Flags().StringVar(&sub, "sub", "", "only tags in this subcategory (requires --main)")
	return cmd
}

func newTagShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Display a tag with its selection state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				tag, err := c.GetTag(args[0])
				if err != nil {
					return err
				}
				selected, weight := false, 0
				for _, t := range c.ListSelectedTags() {
					if t.ID == tag.ID {
						selected, weight = true, c.ListWeights().Get(tag.ID)
						break
					}
				}

				out := cmd.OutOrStdout()
				if a.flags.jsonMode {
					return printJSON(out, map[string]any{
						"tag":      tag,
						"selected": selected,
						"weight":   weight,
					})
				}
				fmt.Fprintf(out, "ID:          %s\n", tag.ID)
				fmt.Fprintf(out, "Name:        %s\n", tag.Name)
				fmt.Fprintf(out, "Translation: %s\n", tag.Translation)
				fmt.Fprintf(out, "Category:    %s / %s\n", tag.MainCategory, tag.SubCategory)
				if tag.ImageURL != "" {
					fmt.Fprintf(out, "Image:       %s\n", tag.ImageURL)
				}
				if selected {
					fmt.Fprintf(out, "Selected:    yes (weight %d)\n", weight)
				} else {
					fmt.Fprintln(out, "Selected:    no")
				}
				return nil
			})
		},
	}
}
