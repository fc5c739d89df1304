package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gooze.dev/pkg/mureport/internal/controller"
	m "gooze.dev/pkg/mureport/internal/model"
)

var exportDirFlag string

// exportCmd represents the export command.
var exportCmd = newExportCmd()

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the mutation report as static HTML",
		Long: `Render every source file of the mutation report into a mirrored tree of
static HTML pages, write a unified patch per mutation and copy the
static assets alongside them. The exported report omits the live call
trace pages.`,
		Args: cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session, err := buildSession(ctx)
			if err != nil {
				return err
			}

			exporter := controller.NewExporter(os.Stdout, controller.IsTTY(os.Stdout))

			return exporter.Export(
				ctx,
				session,
				m.Path(viper.GetString(exportDirConfigKey)),
				m.Path(viper.GetString(resourceDirConfigKey)),
			)
		},
	}

	cmd.Flags().StringVarP(&exportDirFlag, exportDirFlagName, "e", viper.GetString(exportDirConfigKey), "directory to write the exported report into")
	bindFlagToConfig(cmd.Flags().Lookup(exportDirFlagName), exportDirConfigKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
