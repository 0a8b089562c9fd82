package cmd

import (
	"time"

	"insyn-search/api"
	"insyn-search/search"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Serve the registry as JSON:

  GET /getrecords/:company/:startDate/:endDate
  GET /search/:keyword
  GET /api/v1/records/:company?from=&to=&pubFrom=&pubTo=&transFrom=&transTo=&q=
  GET /api/v1/search?q=
  GET /health`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := serverLogger(settings)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := newClient(settings, logger)
	if err != nil {
		return err
	}

	filter, err := search.NewFilter(settings.RecordFilter)
	if err != nil {
		return err
	}

	handler := api.NewHandler(client, filter, logger)
	app := api.NewApp(handler, logger, settings.CORSOrigins)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + settings.Port)
	}()
	logger.Info("server starting", zap.String("port", settings.Port))

	select {
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
		return err
	case <-cmd.Context().Done():
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
