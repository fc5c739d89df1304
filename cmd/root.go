// Package cmd provides the root command and CLI setup for mureport.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gooze.dev/pkg/mureport/internal/adapter"
	"gooze.dev/pkg/mureport/internal/controller"
	"gooze.dev/pkg/mureport/internal/domain"
	m "gooze.dev/pkg/mureport/internal/model"
)

var workflow *controller.Workflow

// resultsDirFlag points at the directory holding the mutation result documents.
var resultsDirFlag string

// sourceDirFlag overrides the source root derived from the results directory.
var sourceDirFlag string

// resourceDirFlag points at the directory holding static report assets.
var resourceDirFlag string

// diffFlag selects the mutation diff strategy (simple or advanced).
var diffFlag string

// preCacheFlag renders every file page eagerly at startup.
var preCacheFlag bool

// verboseFlag raises the log level to debug.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	workflow = controller.NewWorkflow(
		adapter.NewLocalResultsStore(),
		adapter.NewLocalSourceFS(),
		adapter.NewChromaHighlighter(viper.GetString(styleConfigKey)),
	)
}

const rootLongDescription = `Mureport renders the machine-readable output of a mutation testing run
as a navigable HTML report: per-file pages with inline mutation diffs,
a file tree with detection roll-ups, mutation search, and call traces
from test entry points down to each mutated definition.

Point it at a results directory (the JSON documents written by the
mutation testing run) and either serve the report over HTTP or export
it as a static tree.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

// newRootCmd builds a fresh root command with its flags configured; used by
// tests that need an isolated command tree.
func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mureport",
		Short: "Mutation testing report viewer",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&resultsDirFlag, resultsDirFlagName, "d",
			viper.GetString(resultsDirConfigKey),
			"directory holding the mutation result documents",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(resultsDirFlagName), resultsDirConfigKey)

	cmd.PersistentFlags().StringVar(&sourceDirFlag, sourceDirFlagName, viper.GetString(sourceDirConfigKey), "source root the result paths resolve against (default: derived from the results directory)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(sourceDirFlagName), sourceDirConfigKey)

	cmd.PersistentFlags().StringVar(&resourceDirFlag, resourceDirFlagName, viper.GetString(resourceDirConfigKey), "directory holding the static report assets")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(resourceDirFlagName), resourceDirConfigKey)

	cmd.PersistentFlags().StringVar(&diffFlag, diffFlagName, viper.GetString(diffConfigKey), "mutation diff strategy: simple or advanced")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(diffFlagName), diffConfigKey)

	cmd.PersistentFlags().BoolVar(&preCacheFlag, preCacheFlagName, viper.GetBool(preCacheConfigKey), "render every file page eagerly at startup")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(preCacheFlagName), preCacheConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// buildSession loads the results and sources named by the current flags and
// primes a renderer for them.
func buildSession(ctx context.Context) (*controller.Session, error) {
	strategy, err := domain.ParseDiffStrategy(viper.GetString(diffConfigKey))
	if err != nil {
		return nil, err
	}

	return workflow.Build(ctx, controller.SessionConfig{
		ResultsDir:  m.Path(viper.GetString(resultsDirConfigKey)),
		SourceDir:   m.Path(viper.GetString(sourceDirConfigKey)),
		Strategy:    strategy,
		Limits:      domain.DefaultTraceLimits(),
		PreCacheAll: viper.GetBool(preCacheConfigKey),
	})
}
