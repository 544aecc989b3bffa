// Package cmd provides the root command and CLI setup for scopefix.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mouse-blink/scopefix/internal/adapter"
	"github.com/mouse-blink/scopefix/internal/controller"
	"github.com/mouse-blink/scopefix/internal/domain"
	m "github.com/mouse-blink/scopefix/internal/model"
)

var dFileAdapter adapter.DFileAdapter
var sourceFSAdapter adapter.SourceFSAdapter
var rewriter adapter.Rewriter
var reportStore adapter.ReportStore
var ui controller.UI

// excludePatterns is a root-level flag that filters files for applicable
// commands.
var excludePatterns []string

// dbPathFlag is the location of the persisted alias symbol table.
var dbPathFlag string

// verboseFlag switches the file logger to debug level.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	dFileAdapter = adapter.NewLocalDFileAdapter()
	sourceFSAdapter = adapter.NewLocalSourceFSAdapter()
	rewriter = adapter.NewTokenRewriter()
	reportStore = adapter.NewYAMLReportStore()
}

// newWorkflow builds a Workflow over the shared adapters. The symbol store
// is created per invocation because its path is flag-dependent.
func newWorkflow() domain.Workflow {
	symbolStore := adapter.NewBoltSymbolStore(m.Path(viper.GetString(dbConfigKey)))

	return domain.NewWorkflow(
		sourceFSAdapter,
		dFileAdapter,
		rewriter,
		reportStore,
		symbolStore,
		ui,
	)
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - ./...          recursively scan current directory
  - ./src/...      recursively scan src directory
  - ./a ./b        scan multiple directories`

const rootLongDescription = `Scopefix mechanically ports D1 source code to D2 syntax: it inserts the
` + "`scope`" + ` keyword before delegate-typed parameters and rewrites the ` + "`this`" + `
self-reference inside struct and union bodies, leaving everything else
untouched.

` + pathPatternsHelp

const convertLongDescription = `Convert the given paths (default: current directory, recursively).

Without --write or --dry-run the command only reports what would change.

` + pathPatternsHelp

const listLongDescription = `List source files and the number of applicable edits.

` + pathPatternsHelp

const indexLongDescription = `Scan the given paths for alias declarations and persist the resulting
symbol table, so later single-file conversions can resolve aliased delegate
types declared elsewhere in the project.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scopefix",
		Short: "D1 to D2 source conversion tool",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringVar(&dbPathFlag, dbFlagName, viper.GetString(dbConfigKey), "path of the persisted alias symbol table")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(dbFlagName), dbConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values
// feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
