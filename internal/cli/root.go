// Package cli implements the tagshelf command-line interface.
//
// Every command except init and version opens the catalog in the resolved
// data directory, seeds it with the built-in defaults when empty, runs one
// catalog operation, and detaches.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tagshelf/internal/clipboard"
	"github.com/mesh-intelligence/tagshelf/internal/errs"
	"github.com/mesh-intelligence/tagshelf/internal/paths"
	"github.com/mesh-intelligence/tagshelf/pkg/tagshelf"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	global    bool
	jsonMode  bool
	logLevel  string
}

// app is the state shared by one command tree: flags, the loaded settings,
// and the collaborators commands reach outside the catalog.
type app struct {
	flags     rootFlags
	configDir string
	settings  settings
	logger    *slog.Logger
	clip      clipboard.Writer
}

// NewRootCmd creates the top-level "tagshelf" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{clip: clipboard.System{}})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "tagshelf",
		Short:   "A local catalog of categorized tags",
		Long:    "Tagshelf keeps a catalog of bilingual, categorized tags, an ordered\nselection of them with emphasis weights, and exports the selection\nas a weighted prompt string.",
		Version: tagshelf.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: .tagshelf)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: .tagshelf-db)")
	root.PersistentFlags().BoolVar(&a.flags.global, "global", false, "use the per-user directories instead of the working directory")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default: warn)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newTagCmd(a))
	root.AddCommand(newCategoryCmd(a))
	root.AddCommand(newSelectCmd(a))
	root.AddCommand(newWeightCmd(a))
	root.AddCommand(newSearchCmd(a))
	root.AddCommand(newExportCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(context.Background(), NewRootCmd(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes root with args and returns the process exit code. An
// interrupt cancels the command context, which ends a running hold.
func run(ctx context.Context, root *cobra.Command, args []string, in io.Reader, out, errOut io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "tagshelf: %s\n", err)
	}
	return exitCode(err)
}

// setup resolves the config directory, loads config.yaml, and builds the
// logger. It runs before every subcommand.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir, a.flags.global)
	if err != nil {
		return errs.Wrap(err, errs.CodeConfigInvalid, "resolve config dir")
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	s, err := settingsFrom(v)
	if err != nil {
		return err
	}
	if a.flags.logLevel != "" {
		level, err := parseLevel(a.flags.logLevel)
		if err != nil {
			return errs.Wrap(err, errs.CodeConfigInvalid, "parse --log-level")
		}
		s.LogLevel = level
	}

	a.configDir = configDir
	a.settings = s
	a.logger = newLogger(cmd.ErrOrStderr(), s.LogLevel)
	return nil
}

// exitCode maps an error to an exit code. Storage failures are system
// errors; everything else, including cobra usage errors, is a user error.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	if errs.IsStorageUnavailable(err) {
		return exitSysError
	}
	if errors.Is(err, context.Canceled) {
		return exitSysError
	}
	return exitUserError
}
