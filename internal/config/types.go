package config

// Config is the top-level configuration structure for signage. It is
// loaded once at startup and passed by value to every component; nothing
// reads configuration ambiently after bootstrap.
type Config struct {
	OBS      OBSConfig      `yaml:"obs"`
	Content  ContentConfig  `yaml:"content"`
	Media    MediaConfig    `yaml:"media"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Sync     SyncConfig     `yaml:"sync"`
	Audio    AudioConfig    `yaml:"audio"`
	Log      LogConfig      `yaml:"log"`
}

// OBSConfig defines how to reach the OBS WebSocket server.
type OBSConfig struct {
	Host           string `yaml:"host,omitempty"`           // OBS host (default: localhost)
	Port           int    `yaml:"port,omitempty"`           // obs-websocket port (default: 4455)
	Password       string `yaml:"password,omitempty"`       // obs-websocket password (empty disables auth)
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"` // per-request timeout (default: 10)
	Projector      bool   `yaml:"projector,omitempty"`      // open a fullscreen program projector on connect
	Monitor        int    `yaml:"monitor,omitempty"`        // monitor index for the projector
}

// ContentConfig defines the local content source.
type ContentConfig struct {
	Dir             string  `yaml:"dir,omitempty"`             // content directory scanned for media
	DebounceSeconds float64 `yaml:"debounceSeconds,omitempty"` // settle delay after a file event before rescanning (default: 2)
}

// MediaConfig defines classification, timing and canvas parameters.
type MediaConfig struct {
	VideoExtensions []string `yaml:"videoExtensions,omitempty"`
	ImageExtensions []string `yaml:"imageExtensions,omitempty"`
	AudioExtensions []string `yaml:"audioExtensions,omitempty"`

	SlideDurationSeconds    float64 `yaml:"slideDurationSeconds,omitempty"`    // display time for images (default: 8)
	MaxVideoSeconds         float64 `yaml:"maxVideoSeconds,omitempty"`         // cap on probed video durations (default: 900)
	FallbackVideoSeconds    float64 `yaml:"fallbackVideoSeconds,omitempty"`    // used when probing fails (default: 10)
	ProbeTimeoutSeconds     float64 `yaml:"probeTimeoutSeconds,omitempty"`     // ffprobe timeout (default: 5)
	TransitionOffsetSeconds float64 `yaml:"transitionOffsetSeconds,omitempty"` // seconds before media end to start the transition (default: 2)

	CanvasWidth  float64 `yaml:"canvasWidth,omitempty"`  // target canvas width (default: 1920)
	CanvasHeight float64 `yaml:"canvasHeight,omitempty"` // target canvas height (default: 1080)
}

// ScheduleConfig defines the time-window schedule.
type ScheduleConfig struct {
	Enabled              bool           `yaml:"enabled,omitempty"`
	Timezone             string         `yaml:"timezone,omitempty"`             // IANA zone name; invalid values fall back to local time
	CheckIntervalSeconds int            `yaml:"checkIntervalSeconds,omitempty"` // window re-evaluation cadence (default: 60)
	Windows              []WindowConfig `yaml:"windows,omitempty"`              // evaluated in order, first match wins
	Default              WindowConfig   `yaml:"default"`                        // terminal fallback, always matches
}

// WindowConfig is one schedule window. Day uses the 0=Monday..6=Sunday
// convention; Start/End are "HH:MM" clock times and End is exclusive.
type WindowConfig struct {
	Name                    string  `yaml:"name"`
	Folder                  string  `yaml:"folder"`
	Transition              string  `yaml:"transition,omitempty"`
	TransitionOffsetSeconds float64 `yaml:"transitionOffsetSeconds,omitempty"`
	Day                     *int    `yaml:"day,omitempty"`
	Start                   string  `yaml:"start,omitempty"`
	End                     string  `yaml:"end,omitempty"`
}

// SyncConfig defines the remote WebDAV content source.
type SyncConfig struct {
	Enabled         bool   `yaml:"enabled,omitempty"`
	URL             string `yaml:"url,omitempty"`      // WebDAV base URL
	Username        string `yaml:"username,omitempty"`
	Password        string `yaml:"password,omitempty"`
	RemotePath      string `yaml:"remotePath,omitempty"`      // root path on the remote share
	IntervalSeconds int    `yaml:"intervalSeconds,omitempty"` // sync cadence (default: 30)
	TimeoutSeconds  int    `yaml:"timeoutSeconds,omitempty"`  // HTTP timeout (default: 30)
}

// AudioConfig defines background audio playback.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled,omitempty"`
	Volume  float64 `yaml:"volume,omitempty"` // 0..1 (default: 0.5)
}

// LogConfig defines logging behavior.
type LogConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error (default: info)
}
