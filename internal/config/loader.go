package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"signage/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/signage"
	configFileName = "config.yaml"
)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from the specified directory. The
// directory should contain config.yaml; a missing file yields the
// defaults, a malformed file is an error.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("Config", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config at %s: %w", configFilePath, err)
	}
	logging.Info("Config", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// Validate checks cross-field constraints that the YAML schema cannot
// express. The default window must be unrestricted so it always matches.
func (c Config) Validate() error {
	if c.Schedule.Default.Day != nil || c.Schedule.Default.Start != "" || c.Schedule.Default.End != "" {
		return fmt.Errorf("schedule.default must not carry day or time restrictions")
	}
	for i, w := range c.Schedule.Windows {
		if w.Name == "" {
			return fmt.Errorf("schedule.windows[%d]: name is required", i)
		}
		if w.Folder == "" {
			return fmt.Errorf("schedule.windows[%d] (%s): folder is required", i, w.Name)
		}
		if w.Day != nil && (*w.Day < 0 || *w.Day > 6) {
			return fmt.Errorf("schedule.windows[%d] (%s): day must be 0..6", i, w.Name)
		}
		if (w.Start == "") != (w.End == "") {
			return fmt.Errorf("schedule.windows[%d] (%s): start and end must be set together", i, w.Name)
		}
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("audio.volume must be within [0,1]")
	}
	if c.Media.CanvasWidth <= 0 || c.Media.CanvasHeight <= 0 {
		return fmt.Errorf("media canvas dimensions must be positive")
	}
	return nil
}
