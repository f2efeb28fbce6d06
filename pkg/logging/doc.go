// Package logging provides structured logging for signage with level
// filtering and per-subsystem categorization.
//
// The package wraps Go's standard slog package. Every log entry carries a
// subsystem identifier so that output from the daemon's independent loops
// (rotation, scheduling, sync, watching) can be told apart.
//
// # Usage
//
//	logging.Init(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Bootstrap", "starting up")
//	logging.Debug("Catalog", "scanned %d files", n)
//	logging.Warn("Probe", "ffprobe timed out for %s", name)
//	logging.Error("OBS", err, "failed to create scene %s", scene)
//
// # Subsystems
//
//   - Bootstrap: application initialization and shutdown
//   - Config: configuration loading and validation
//   - Catalog: content directory scanning
//   - Probe: media duration detection
//   - OBS: controller connection and requests
//   - Reconciler: scene/source reconciliation
//   - Engine: rescan coordination and state publication
//   - Rotation: content rotation timing
//   - Scheduler: time-window evaluation
//   - Watcher: filesystem change detection
//   - Sync: remote content synchronization
//   - Audio: background audio playback
package logging
