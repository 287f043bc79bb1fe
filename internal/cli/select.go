package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tagshelf/internal/catalog"
	"github.com/mesh-intelligence/tagshelf/internal/errs"
)

func newSelectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "select",
		Aliases: []string{"sel"},
		Short:   "Manage the ordered selection",
	}
	cmd.AddCommand(newSelectAddCmd(a))
	cmd.AddCommand(newSelectManualCmd(a))
	cmd.AddCommand(newSelectRemoveCmd(a))
	cmd.AddCommand(newSelectListCmd(a))
	cmd.AddCommand(newSelectClearCmd(a))
	cmd.AddCommand(newSelectMoveCmd(a))
	cmd.AddCommand(newSelectReorderCmd(a))
	return cmd
}

func newSelectAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id>...",
		Short: "Append catalog tags to the selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				for _, id := range args {
					tag, err := c.SelectByID(cmd.Context(), id)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Selected %s (%s)\n", tag.ID, tag.Name)
				}
				return nil
			})
		},
	}
}

func newSelectManualCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "manual <text>...",
		Short: "Append free text to the selection as a manual tag",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				tag, err := c.SelectManual(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), tag)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Selected %s (%s)\n", tag.ID, tag.Name)
				return nil
			})
		},
	}
}

func newSelectRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove tags and their weights from the selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				for _, id := range args {
					if err := c.Deselect(cmd.Context(), id); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d tag(s)\n", len(args))
				return nil
			})
		},
	}
}

func newSelectListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the selection in order with weights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				rows := selectedRows(c.ListSelectedTags(), c.ListWeights())
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), rows)
				}
				printSelection(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	}
}

func newSelectClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every selected tag and weight",
		Long:  "Remove every selected tag and weight. Asks for confirmation unless --yes is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				n := len(c.ListSelectedTags())
				if n == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing selected.")
					return nil
				}
				if !yes && !confirm(cmd, fmt.Sprintf("Clear all %d selected tags?", n)) {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
				if err := c.ClearAll(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d tag(s)\n", n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newSelectMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move the selected tag at position from to position to",
		Long: `Move the selected tag at position from so that it ends up at position to.
Positions start at 0, as shown by select list.

Example:
  tagshelf select move 0 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			to, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				if err := c.Move(cmd.Context(), from, to); err != nil {
					return err
				}
				rows := selectedRows(c.ListSelectedTags(), c.ListWeights())
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), rows)
				}
				printSelection(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	}
}

func newSelectReorderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <id>...",
		Short: "Set the selection order by listing every selected id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				if err := c.Reorder(cmd.Context(), args); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d tag(s)\n", len(args))
				return nil
			})
		},
	}
}

func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errs.Wrap(err, errs.CodeSelectionInvalid, "parse position", errs.Field("value", s))
	}
	return n, nil
}

// confirm asks question on stderr and reads a y/yes answer from stdin.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
