package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScheduleConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := `
schedule:
  enabled: true
  windows:
    - name: Sunday Morning
      folder: sunday
      day: 6
      start: "08:00"
      end: "13:30"
  default:
    name: Default
    transition: Fade
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		configPath = ""
		scheduleAt = ""
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestScheduleCommand_MatchingWindow(t *testing.T) {
	dir := writeScheduleConfig(t)

	// 2026-03-01 is a Sunday.
	out, err := execute(t, "schedule", "--config-path", dir, "--at", "2026-03-01 09:00")
	require.NoError(t, err)

	assert.Contains(t, out, "Sunday Morning")
	assert.Contains(t, out, "sunday")
}

func TestScheduleCommand_FallsBackToDefault(t *testing.T) {
	dir := writeScheduleConfig(t)

	out, err := execute(t, "schedule", "--config-path", dir, "--at", "2026-03-02 09:00")
	require.NoError(t, err)

	assert.Contains(t, out, "Default")
	assert.Contains(t, out, "Fade")
}

func TestScheduleCommand_InvalidAt(t *testing.T) {
	dir := writeScheduleConfig(t)

	_, err := execute(t, "schedule", "--config-path", dir, "--at", "not-a-time")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "signage version 1.2.3")
}
