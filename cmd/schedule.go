package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"signage/internal/config"
	"signage/internal/schedule"
)

// scheduleAt evaluates the schedule at a specific instant instead of now.
var scheduleAt string

// scheduleCmd prints the schedule window that is (or would be) active,
// which makes schedule configurations testable without running the
// daemon.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the active schedule window",
	Long: `Evaluates the configured schedule and prints the window that would
be active, including its content folder and transition. Use --at to
check a different point in time, e.g. --at "2026-03-01 09:30".`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleAt, "at", "", `evaluate at this time ("2006-01-02 15:04")`)
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.GetDefaultConfigPathOrPanic()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	scheduler, err := schedule.NewScheduler(cfg.Schedule)
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}

	at := time.Now()
	if scheduleAt != "" {
		at, err = time.ParseInLocation("2006-01-02 15:04", scheduleAt, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --at value: %w", err)
		}
	}

	window := scheduler.ActiveWindow(at)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Active window at %s:\n", at.Format("Mon 2006-01-02 15:04"))
	fmt.Fprintf(out, "  name:       %s\n", window.Name)
	if window.Folder != "" {
		fmt.Fprintf(out, "  folder:     %s\n", window.Folder)
	}
	if window.Transition != "" {
		fmt.Fprintf(out, "  transition: %s\n", window.Transition)
	}
	if !cfg.Schedule.Enabled {
		fmt.Fprintln(out, "note: schedule is disabled in the configuration")
	}
	return nil
}
