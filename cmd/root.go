// Package cmd implements the signage command-line interface.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the entry point when signage is called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "signage",
	Short: "Digital signage player driven by OBS",
	Long: `signage turns an OBS instance into a digital signage player.
It watches a content directory, builds one OBS scene per media file and
rotates through them, optionally following a weekly schedule and
mirroring content from a WebDAV share.`,
	SilenceUsage: true,
}

// configPath overrides the default configuration directory for all
// subcommands.
var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "", "configuration directory (default: ~/.config/signage)")
	rootCmd.AddCommand(newVersionCmd())
}

// SetVersion sets the version for the root command, injected from main
// at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "signage version %s\n" .Version}}`)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
