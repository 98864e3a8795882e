package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/BioTerm-Annotator/internal/bootstrap"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/monitoring/logging"
)

// NewServeCmd creates the serve command.  It runs the same server as the
// apiserver binary, in the foreground, until interrupted.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the annotation API server in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			// The server logs per the config file, not the CLI's stderr
			// console settings.
			logger, err := bootstrap.NewLogger(cliCtx.Config.Log)
			if err != nil {
				return err
			}

			app, err := bootstrap.Build(cliCtx.Config, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			logger.Info("starting annotation API server",
				logging.String("addr", cliCtx.Config.Server.Host),
				logging.Int("port", cliCtx.Config.Server.Port),
			)
			return app.RunServer(cmd.Context())
		},
	}
}
