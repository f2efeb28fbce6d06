// Package engine coordinates scanning, duration resolution, scene
// reconciliation and rotation into one serialized pipeline. All state
// transitions go through the engine, which makes the individual
// components free of cross-cutting locks.
package engine

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"signage/internal/catalog"
	"signage/internal/config"
	"signage/internal/probe"
	"signage/internal/reconcile"
	"signage/internal/rotation"
	"signage/internal/schedule"
	"signage/pkg/logging"
)

// Engine ties the catalog pipeline together. A mutex serializes rescan,
// removal, folder switch and tick so that rotation never observes a
// half-reconciled scene set.
type Engine struct {
	mu sync.Mutex

	controller reconcile.Controller
	reconciler *reconcile.Reconciler
	resolver   *probe.Resolver
	clock      *rotation.Clock
	formats    catalog.Formats

	baseDir string
	dir     string

	state    reconcile.ManagedState
	resolved catalog.Resolved

	// rescanning/dirty coalesce bursts: a rescan arriving while one is
	// in flight marks dirty, and the running pass loops until clean.
	// forceNext bypasses the fingerprint skip for the next pass.
	rescanning bool
	dirty      bool
	forceNext  bool
}

// New creates an engine rooted at baseDir. The active directory starts
// at baseDir until a schedule window selects a subfolder.
func New(controller reconcile.Controller, reconciler *reconcile.Reconciler, resolver *probe.Resolver, clock *rotation.Clock, formats catalog.Formats, baseDir string) *Engine {
	return &Engine{
		controller: controller,
		reconciler: reconciler,
		resolver:   resolver,
		clock:      clock,
		formats:    formats,
		baseDir:    baseDir,
		dir:        baseDir,
		state:      reconcile.NewManagedState(),
	}
}

// Dir returns the directory currently being scanned.
func (e *Engine) Dir() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dir
}

// Rescan walks the active directory and reconciles scenes when the
// content actually changed. When the directory fingerprint matches the
// last reconciled state, the pass is a no-op, which makes redundant
// change signals free. Concurrent calls coalesce into one extra pass.
func (e *Engine) Rescan(ctx context.Context) error {
	e.mu.Lock()
	if e.rescanning {
		e.dirty = true
		e.mu.Unlock()
		return nil
	}
	e.rescanning = true
	e.mu.Unlock()

	var err error
	for {
		err = e.rescanOnce(ctx)

		e.mu.Lock()
		if !e.dirty {
			e.rescanning = false
			e.mu.Unlock()
			return err
		}
		e.dirty = false
		e.mu.Unlock()
	}
}

// rescanOnce performs one scan-resolve-reconcile pass.
func (e *Engine) rescanOnce(ctx context.Context) error {
	e.mu.Lock()
	dir := e.dir
	force := e.forceNext
	e.forceNext = false
	e.mu.Unlock()

	cat, err := catalog.Scan(dir, e.formats)
	if err != nil {
		logging.Error("Engine", err, "Content scan failed for %s", dir)
		return err
	}

	e.mu.Lock()
	unchanged := !force && !e.state.Empty() && cat.Fingerprint() == e.resolved.Fingerprint()
	e.mu.Unlock()
	if unchanged {
		logging.Debug("Engine", "Content unchanged, skipping reconcile")
		return nil
	}

	logging.Info("Engine", "Reconciling %d media file(s) from %s", cat.Len(), dir)
	resolved := e.resolver.ResolveAll(ctx, cat)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = e.reconciler.Apply(ctx, e.state, resolved)
	e.resolved = resolved

	e.clock.Reset(resolved, time.Now())
	e.clock.ActivateCurrent(ctx, time.Now())
	return nil
}

// RemoveFile drops a single file from the rotation and deletes its
// scene pair, without a full rescan. Called when the remote sync
// deletes a local file. If the removed item was on screen the rotation
// restarts from the first entry; an emptied catalog falls back to the
// placeholder.
func (e *Engine) RemoveFile(ctx context.Context, filename string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	active, haveActive := e.clock.Current()

	_, removed := e.reconciler.RemoveEntry(ctx, e.state, filename)
	if !removed {
		return
	}

	remaining := catalog.Catalog{}
	durations := make([]float64, 0, len(e.resolved.Entries))
	for _, entry := range e.resolved.Entries {
		if entry.Filename == filename {
			continue
		}
		remaining.Entries = append(remaining.Entries, entry.Entry)
		durations = append(durations, entry.Duration)
	}
	e.resolved = catalog.NewResolved(remaining, durations)

	if e.resolved.Empty() {
		e.clock.Reset(e.resolved, time.Now())
		e.reconciler.EnsurePlaceholder(ctx)
		if err := e.controller.SetCurrentScene(ctx, config.PlaceholderScene); err != nil {
			logging.Error("Engine", err, "Failed to activate placeholder scene")
		}
		return
	}

	if haveActive && active.Filename == filename {
		e.clock.Reset(e.resolved, time.Now())
		e.clock.ActivateCurrent(ctx, time.Now())
		return
	}
	e.clock.ResetKeeping(e.resolved, time.Now(), active.Filename)
}

// ApplyWindow switches the engine to a schedule window: transition,
// transition offset and content folder. The folder change forces a full
// reconcile even when the new folder holds identical files.
func (e *Engine) ApplyWindow(ctx context.Context, w schedule.Window) error {
	e.mu.Lock()
	dir := e.baseDir
	if w.Folder != "" {
		dir = filepath.Join(e.baseDir, w.Folder)
	}
	changedDir := dir != e.dir
	e.dir = dir
	if changedDir {
		e.forceNext = true
	}
	if w.TransitionOffset > 0 {
		e.clock.SetTransitionOffset(w.TransitionOffset)
	}
	e.mu.Unlock()

	if w.Transition != "" {
		if err := e.controller.SetTransition(ctx, w.Transition); err != nil {
			logging.Warn("Engine", "Could not set transition %q: %v", w.Transition, err)
		}
	}

	if !changedDir {
		return nil
	}
	logging.Info("Engine", "Schedule window %q selects %s", w.Name, dir)
	return e.Rescan(ctx)
}

// Tick advances the rotation if the active item's display time elapsed.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock.Tick(ctx, time.Now())
}

// Status is a point-in-time snapshot for health logging.
type Status struct {
	Dir         string
	MediaCount  int
	ActiveFile  string
	SceneCount  int
	SourceCount int
}

// Status reports the engine's current state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Status{
		Dir:         e.dir,
		MediaCount:  e.resolved.Len(),
		SceneCount:  len(e.state.Scenes),
		SourceCount: len(e.state.Sources),
	}
	if entry, ok := e.clock.Current(); ok {
		s.ActiveFile = entry.Filename
	}
	return s
}

// Reset clears the managed state, forcing the next rescan through the
// bootstrap sweep. Used after an OBS reconnect, where the previous
// scene state is unknown.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = reconcile.NewManagedState()
	e.resolved = catalog.Resolved{}
	e.clock.Reset(e.resolved, time.Now())
}
