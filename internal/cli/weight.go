package cli

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tagshelf/internal/catalog"
	"github.com/mesh-intelligence/tagshelf/internal/errs"
	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

func newWeightCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weight",
		Short: "Set the emphasis weight of selected tags",
	}
	cmd.AddCommand(newWeightSetCmd(a))
	cmd.AddCommand(newWeightAdjustCmd(a))
	cmd.AddCommand(newWeightHoldCmd(a))
	return cmd
}

func newWeightSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <weight>",
		Short: "Set the weight of a selected tag",
		Long:  "Set the weight of a selected tag to a value from 0 to 100. An empty weight means 0.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := types.ParseWeight(args[1])
			if err != nil {
				return errs.Wrap(err, errs.CodeWeightInvalid, "parse weight", errs.Field("value", args[1]))
			}
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				if err := c.SetWeight(cmd.Context(), args[0], n); err != nil {
					return err
				}
				return a.printWeight(cmd, args[0], n)
			})
		},
	}
}

func newWeightAdjustCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "adjust <id> <+1|-1>",
		Short: "Raise or lower the weight of a selected tag by one",
		Long: `Raise or lower the weight of a selected tag by one, stopping at 0 and
at 100. Put -- before -1 so it is not read as a flag.

Example:
  tagshelf weight adjust 2 1
  tagshelf weight adjust -- 2 -1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := parseDelta(args[1])
			if err != nil {
				return err
			}
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				n, err := c.AdjustWeight(cmd.Context(), args[0], delta)
				if err != nil {
					return err
				}
				return a.printWeight(cmd, args[0], n)
			})
		},
	}
}

func newWeightHoldCmd(a *app) *cobra.Command {
	var (
		delta    int
		duration time.Duration
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "hold <id>",
		Short: "Repeat a weight adjustment as if its button were held down",
		Long: `Apply delta once right away and again every interval until duration has
passed or the command is interrupted. The interval defaults to
weights.hold_interval from config.yaml.

Example:
  tagshelf weight hold 2 --delta 1 --for 1s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkDelta(delta, strconv.Itoa(delta)); err != nil {
				return err
			}
			if duration <= 0 {
				return errs.New(errs.CodeWeightInvalid, "--for must be positive")
			}
			if !cmd.Flags().Changed("interval") {
				interval = a.settings.HoldInterval
			}
			if interval <= 0 {
				return errs.New(errs.CodeWeightInvalid, "--interval must be positive")
			}
			return a.withCatalog(cmd.Context(), func(c *catalog.Catalog) error {
				r, err := c.HoldWeight(cmd.Context(), args[0], delta, interval)
				if err != nil {
					return err
				}
				timer := time.NewTimer(duration)
				defer timer.Stop()
				select {
				case <-timer.C:
				case <-r.Done():
				case <-cmd.Context().Done():
				}
				if err := r.Stop(); err != nil {
					return err
				}
				a.logger.Debug("hold released", slog.String("id", args[0]), slog.Int("steps", r.Count()))
				return a.printWeight(cmd, args[0], c.ListWeights().Get(args[0]))
			})
		},
	}
	cmd.Flags().IntVar(&delta, "delta", 1, "step direction, 1 or -1")
	cmd.Flags().DurationVar(&duration, "for", time.Second, "how long to hold")
	cmd.Flags().DurationVar(&interval, "interval", 0, "time between steps (default: weights.hold_interval)")
	return cmd
}

func (a *app) printWeight(cmd *cobra.Command, id string, n int) error {
	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), types.Weight{ID: id, Value: n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: weight %d\n", id, n)
	return nil
}

func parseDelta(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.Wrap(err, errs.CodeWeightInvalid, "parse delta", errs.Field("value", s))
	}
	return n, checkDelta(n, s)
}

func checkDelta(n int, raw string) error {
	if n != 1 && n != -1 {
		return errs.Wrap(types.ErrInvalidDelta, errs.CodeWeightInvalid, "parse delta", errs.Field("value", raw))
	}
	return nil
}
