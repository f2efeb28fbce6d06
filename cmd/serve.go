package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"signage/internal/app"
)

// serveDebug enables verbose logging across the daemon.
var serveDebug bool

// serveCmd starts the signage daemon. It runs until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the signage daemon",
	Long: `Connects to OBS, scans the content directory and keeps the scene
rotation running. Content changes, schedule windows and the optional
WebDAV mirror are all handled continuously until the process receives
SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := app.NewApplication(app.Options{
		ConfigPath: configPath,
		Debug:      serveDebug,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}
