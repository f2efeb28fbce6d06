package config

// PlaceholderScene is the persistent scene activated when the catalog is
// empty. It is never deleted by sweeps.
const PlaceholderScene = "waiting_for_content_scene"

// GetDefaultConfig returns the default configuration for signage.
func GetDefaultConfig() Config {
	return Config{
		OBS: OBSConfig{
			Host:           "localhost",
			Port:           4455,
			TimeoutSeconds: 10,
		},
		Content: ContentConfig{
			Dir:             "content",
			DebounceSeconds: 2,
		},
		Media: MediaConfig{
			VideoExtensions:         []string{".mp4", ".mov", ".avi", ".mkv", ".wmv", ".webm", ".m4v"},
			ImageExtensions:         []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tiff", ".webp"},
			AudioExtensions:         []string{".mp3", ".wav", ".ogg", ".flac", ".m4a"},
			SlideDurationSeconds:    8,
			MaxVideoSeconds:         900,
			FallbackVideoSeconds:    10,
			ProbeTimeoutSeconds:     5,
			TransitionOffsetSeconds: 2,
			CanvasWidth:             1920,
			CanvasHeight:            1080,
		},
		Schedule: ScheduleConfig{
			CheckIntervalSeconds: 60,
			Default: WindowConfig{
				Name:       "Default",
				Transition: "Fade",
			},
		},
		Sync: SyncConfig{
			IntervalSeconds: 30,
			TimeoutSeconds:  30,
		},
		Audio: AudioConfig{
			Volume: 0.5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
