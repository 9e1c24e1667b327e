// Package cli implements the garden-planner command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"garden-planner/internal/app"
	"garden-planner/internal/config"
	"garden-planner/internal/logging"
)

var version = "dev"

// SetVersion sets the version reported by `version` and `--version`.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var (
	groupTitleColor   = color.New(color.FgCyan, color.Bold)
	sectionTitleColor = color.New(color.FgBlue, color.Bold)
)

// env is the state shared by the commands of one invocation.
type env struct {
	jsonOutput bool
	verbose    bool

	loadConfig func() (*config.Config, error)
	appOptions []app.Option

	logger *zap.Logger
	app    *app.App
}

// open returns the application, initializing it on first use.
func (e *env) open(ctx context.Context) (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	a, err := app.New(ctx, cfg, e.logger, e.appOptions...)
	if err != nil {
		return nil, err
	}
	e.app = a
	return a, nil
}

func (e *env) close() {
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.app != nil {
		if err := e.app.Close(); err != nil {
			e.logger.Warn("failed to close app", zap.Error(err))
		}
		e.app = nil
	}
	_ = e.logger.Sync()
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:     "garden-planner",
		Version: version,
		Short:   "Plan vegetable garden layouts",
		Long: `garden-planner lays out vegetable beds on a grid, warns about bad
companion neighbours and works out seedlings and base fertilizer to buy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Options{Verbose: e.verbose, Console: true})
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			e.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			e.close()
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.SetHelpFunc(customHelpFunc)

	root.PersistentFlags().BoolVar(&e.jsonOutput, "json", false, "Output in JSON format")
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddGroup(
		&cobra.Group{ID: "plans", Title: "Plans:"},
		&cobra.Group{ID: "editing", Title: "Editing:"},
		&cobra.Group{ID: "derived", Title: "Derived Views:"},
		&cobra.Group{ID: "catalog", Title: "Catalog:"},
		&cobra.Group{ID: "data", Title: "Data:"},
		&cobra.Group{ID: "tooling", Title: "CLI & Tooling:"},
	)

	add := func(group string, cmds ...*cobra.Command) {
		for _, c := range cmds {
			c.GroupID = group
			root.AddCommand(c)
		}
	}
	add("plans", newPlanCmd(e))
	add("editing", newPlaceCmd(e), newRemoveCmd(e), newMoveCmd(e), newToggleCmd(e), newResizeCmd(e), newEditCmd(e))
	add("derived", newSummaryCmd(e), newCompanionsCmd(e))
	add("catalog", newCatalogCmd(e))
	add("data", newExportCmd(e), newPublishCmd(e), newImportCmd(e), newMigratePlansCmd(e), newMetricsCmd(e))
	add("tooling", newTokenCmd(e), newVersionCmd())

	helpCmd := &cobra.Command{
		Use:     "help [command]",
		Short:   "Help about any command",
		GroupID: "tooling",
		Run: func(cmd *cobra.Command, args []string) {
			target, _, err := cmd.Root().Find(args)
			if err != nil || target == nil {
				target = cmd.Root()
			}
			_ = target.Help()
		},
	}
	root.SetHelpCommand(helpCmd)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the garden-planner version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// customHelpFunc prints grouped commands with colored group titles.
func customHelpFunc(cmd *cobra.Command, args []string) {
	var help strings.Builder

	if cmd.Long != "" {
		help.WriteString(cmd.Long)
		help.WriteString("\n\n")
	} else if cmd.Short != "" {
		help.WriteString(cmd.Short)
		help.WriteString("\n\n")
	}

	help.WriteString(sectionTitleColor.Sprint("Usage:"))
	help.WriteString("\n")
	fmt.Fprintf(&help, "  %s\n\n", cmd.UseLine())

	for _, group := range cmd.Groups() {
		help.WriteString(groupTitleColor.Sprint(group.Title))
		help.WriteString("\n")
		for _, c := range cmd.Commands() {
			if c.GroupID == group.ID && !c.Hidden {
				fmt.Fprintf(&help, "  %-14s %s\n", c.Name(), c.Short)
			}
		}
		help.WriteString("\n")
	}

	hasUngrouped := false
	for _, c := range cmd.Commands() {
		if c.GroupID == "" && !c.Hidden {
			if !hasUngrouped {
				help.WriteString(sectionTitleColor.Sprint("Commands:"))
				help.WriteString("\n")
				hasUngrouped = true
			}
			fmt.Fprintf(&help, "  %-14s %s\n", c.Name(), c.Short)
		}
	}
	if hasUngrouped {
		help.WriteString("\n")
	}

	if cmd.HasAvailableLocalFlags() || cmd.HasAvailablePersistentFlags() {
		help.WriteString(sectionTitleColor.Sprint("Flags:"))
		help.WriteString("\n")
		help.WriteString(cmd.LocalFlags().FlagUsages())
		help.WriteString(cmd.InheritedFlags().FlagUsages())
		help.WriteString("\n")
	}

	fmt.Fprintf(&help, "Use \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())
	fmt.Fprint(cmd.OutOrStdout(), help.String())
}

// Execute runs the command line with os.Args.
func Execute() error {
	e := &env{loadConfig: config.NewFromEnv}
	root := newRootCmd(e)
	defer e.close()
	return root.Execute()
}

// run executes args against a fresh command tree. Used by tests.
func run(e *env, out io.Writer, args ...string) error {
	root := newRootCmd(e)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	defer e.close()
	return root.Execute()
}
