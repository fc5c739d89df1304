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

var servePortFlag int

// serveCmd represents the serve command.
var serveCmd = newServeCmd()

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mutation report over HTTP",
		Long: `Load the mutation results, prime the renderer and serve the report on
localhost. Pages are rendered on first request unless --pre-cache-all
is set. Stops on SIGINT/SIGTERM with a graceful shutdown.`,
		Args: cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session, err := buildSession(ctx)
			if err != nil {
				return err
			}

			server := controller.NewServer(
				session,
				m.Path(viper.GetString(resourceDirConfigKey)),
				viper.GetInt(portConfigKey),
			)

			return server.Serve(ctx)
		},
	}

	cmd.Flags().IntVarP(&servePortFlag, portFlagName, "p", viper.GetInt(portConfigKey), "port to serve the report on")
	bindFlagToConfig(cmd.Flags().Lookup(portFlagName), portConfigKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
