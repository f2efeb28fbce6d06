package reconcile

import (
	"context"

	"signage/internal/catalog"
	"signage/internal/config"
	"signage/pkg/logging"
)

// Reconciler owns the scene/source entities derived from the catalog.
// It assumes exclusive ownership: anything matching its naming
// convention that it did not create is an orphan and gets removed.
type Reconciler struct {
	controller   Controller
	canvasWidth  float64
	canvasHeight float64
}

// New creates a Reconciler targeting the given canvas dimensions.
func New(controller Controller, canvasWidth, canvasHeight float64) *Reconciler {
	return &Reconciler{
		controller:   controller,
		canvasWidth:  canvasWidth,
		canvasHeight: canvasHeight,
	}
}

// Apply brings the external scene state in line with the resolved
// catalog and returns the new managed state. An empty old state selects
// the full-sweep bootstrap path, which also recovers from crashes that
// left orphaned scenes behind.
func (r *Reconciler) Apply(ctx context.Context, state ManagedState, resolved catalog.Resolved) ManagedState {
	if state.Empty() {
		r.sweepAll(ctx)
	} else {
		r.removeManaged(ctx, state)
	}

	next := NewManagedState()

	if resolved.Empty() {
		logging.Warn("Reconciler", "No valid media files found")
		r.activatePlaceholder(ctx)
		return next
	}

	for _, entry := range resolved.Entries {
		r.createEntry(ctx, next, entry)
	}

	r.sweepOrphans(ctx, next)
	return next
}

// RemoveEntry deletes the scene/source pair for a single file if it is
// managed, discarding both from state. It returns the scene name and
// whether a managed scene was actually removed, so the caller can reset
// the rotation cursor when the active item disappears.
func (r *Reconciler) RemoveEntry(ctx context.Context, state ManagedState, filename string) (string, bool) {
	sceneName := filename + sceneSuffix
	sourceName := filename + sourceSuffix
	removed := false

	if state.Scenes[sceneName] {
		if err := r.controller.RemoveScene(ctx, sceneName); err != nil {
			logging.Warn("Reconciler", "Could not remove scene %s: %v", sceneName, err)
		} else {
			logging.Info("Reconciler", "Removed scene %s", sceneName)
		}
		delete(state.Scenes, sceneName)
		removed = true
	}

	if state.Sources[sourceName] {
		if err := r.controller.RemoveInput(ctx, sourceName); err != nil {
			logging.Warn("Reconciler", "Could not remove input %s: %v", sourceName, err)
		} else {
			logging.Info("Reconciler", "Removed input %s", sourceName)
		}
		delete(state.Sources, sourceName)
	}

	return sceneName, removed
}

// EnsurePlaceholder creates the persistent placeholder scene if it does
// not exist yet. It is activated whenever the catalog is empty and is
// never deleted during sweeps.
func (r *Reconciler) EnsurePlaceholder(ctx context.Context) {
	scenes, err := r.controller.ListScenes(ctx)
	if err != nil {
		logging.Error("Reconciler", err, "Could not list scenes for placeholder check")
		return
	}
	for _, name := range scenes {
		if name == config.PlaceholderScene {
			return
		}
	}
	if err := r.controller.CreateScene(ctx, config.PlaceholderScene); err != nil {
		logging.Error("Reconciler", err, "Failed to create placeholder scene")
		return
	}
	logging.Info("Reconciler", "Created placeholder scene")
}

func (r *Reconciler) activatePlaceholder(ctx context.Context) {
	r.EnsurePlaceholder(ctx)
	if err := r.controller.SetCurrentScene(ctx, config.PlaceholderScene); err != nil {
		logging.Error("Reconciler", err, "Failed to activate placeholder scene")
	}
}

// sweepAll removes every input and scene matching the engine's naming
// convention or known legacy patterns. Used on the bootstrap path, when
// the managed state is empty but the external state may not be.
func (r *Reconciler) sweepAll(ctx context.Context) {
	logging.Info("Reconciler", "Bootstrap: sweeping existing signage content")

	inputs, err := r.controller.ListInputs(ctx)
	if err != nil {
		logging.Error("Reconciler", err, "Bootstrap input enumeration failed")
	}
	inputsRemoved := 0
	for _, name := range inputs {
		if !sweepableSource(name) {
			continue
		}
		if err := r.controller.RemoveInput(ctx, name); err != nil {
			logging.Warn("Reconciler", "Could not remove input %s: %v", name, err)
			continue
		}
		inputsRemoved++
	}
	if inputsRemoved > 0 {
		logging.Info("Reconciler", "Removed %d old inputs", inputsRemoved)
	}

	scenes, err := r.controller.ListScenes(ctx)
	if err != nil {
		logging.Error("Reconciler", err, "Bootstrap scene enumeration failed")
	}
	scenesRemoved := 0
	for _, name := range scenes {
		if !sweepableScene(name) {
			continue
		}
		if err := r.controller.RemoveScene(ctx, name); err != nil {
			logging.Warn("Reconciler", "Could not remove scene %s: %v", name, err)
			continue
		}
		scenesRemoved++
	}
	logging.Info("Reconciler", "Removed %d old scenes", scenesRemoved)
}

// removeManaged deletes exactly the scene/source pairs recorded in
// state, tolerating per-item failures.
func (r *Reconciler) removeManaged(ctx context.Context, state ManagedState) {
	for name := range state.Scenes {
		if err := r.controller.RemoveScene(ctx, name); err != nil {
			logging.Warn("Reconciler", "Could not remove scene %s: %v", name, err)
		}
		delete(state.Scenes, name)
	}
	for name := range state.Sources {
		if err := r.controller.RemoveInput(ctx, name); err != nil {
			logging.Warn("Reconciler", "Could not remove input %s: %v", name, err)
		}
		delete(state.Sources, name)
	}
}

// createEntry creates the scene, source, mute state and transform for a
// single catalog entry, recording successes in next.
func (r *Reconciler) createEntry(ctx context.Context, next ManagedState, entry catalog.ResolvedEntry) {
	sceneName := entry.SceneName()
	sourceName := entry.SourceName()

	if err := r.controller.CreateScene(ctx, sceneName); err != nil {
		logging.Error("Reconciler", err, "Failed to create scene for %s", entry.Filename)
		return
	}
	next.Scenes[sceneName] = true

	var kind string
	var settings map[string]interface{}
	switch entry.Kind {
	case catalog.KindImage:
		kind = "image_source"
		settings = map[string]interface{}{
			"file":   entry.Path,
			"unload": false,
		}
	case catalog.KindVideo:
		kind = "ffmpeg_source"
		settings = map[string]interface{}{
			"local_file":          entry.Path,
			"looping":             false,
			"restart_on_activate": true,
			"clear_on_media_end":  false,
		}
	default:
		logging.Error("Reconciler", nil, "Unsupported media kind for %s", entry.Filename)
		return
	}

	if err := r.controller.CreateInput(ctx, sceneName, sourceName, kind, settings); err != nil {
		logging.Error("Reconciler", err, "Failed to create input for %s", entry.Filename)
		return
	}
	next.Sources[sourceName] = true

	// Background audio is played separately; video sound is never wanted.
	if entry.Kind == catalog.KindVideo {
		if err := r.controller.SetInputMute(ctx, sourceName, true); err != nil {
			logging.Warn("Reconciler", "Could not mute %s: %v", sourceName, err)
		}
	}

	itemID, err := r.controller.GetSceneItemID(ctx, sceneName, sourceName)
	if err != nil {
		logging.Error("Reconciler", err, "Could not get scene item ID for %s", sourceName)
		return
	}
	transform := canvasTransform(r.canvasWidth, r.canvasHeight)
	if err := r.controller.SetSceneItemTransform(ctx, sceneName, itemID, transform); err != nil {
		logging.Error("Reconciler", err, "Failed to configure transform for %s", entry.Filename)
	}

	logging.Debug("Reconciler", "Created scene and source for %s", entry.Filename)
}

// sweepOrphans removes every external scene that is neither managed nor
// the placeholder. This holds the exclusivity guarantee even against
// out-of-band scene creation.
func (r *Reconciler) sweepOrphans(ctx context.Context, state ManagedState) {
	scenes, err := r.controller.ListScenes(ctx)
	if err != nil {
		logging.Error("Reconciler", err, "Orphan enumeration failed")
		return
	}

	removed := 0
	for _, name := range scenes {
		if state.Scenes[name] || name == config.PlaceholderScene {
			continue
		}
		if err := r.controller.RemoveScene(ctx, name); err != nil {
			logging.Warn("Reconciler", "Could not remove orphaned scene %s: %v", name, err)
			continue
		}
		logging.Info("Reconciler", "Removed orphaned scene %s", name)
		removed++
	}
	if removed > 0 {
		logging.Info("Reconciler", "Cleaned up %d orphaned scene(s)", removed)
	}
}
