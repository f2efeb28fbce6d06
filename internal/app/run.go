package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"signage/internal/schedule"
	"signage/pkg/logging"
)

const (
	rotationTick   = 500 * time.Millisecond
	healthInterval = 60 * time.Second
)

// Run connects to OBS and drives every loop until the context is
// cancelled. All loops share one errgroup; a fatal error in any of them
// tears the daemon down.
func (a *Application) Run(ctx context.Context) error {
	if err := a.client.Connect(ctx); err != nil {
		return fmt.Errorf("connect to OBS: %w", err)
	}
	defer a.client.Close()

	if version, err := a.client.Version(ctx); err == nil {
		logging.Info("App", "Connected to OBS %s", version)
	}

	if a.cfg.OBS.Projector {
		if err := a.client.OpenProjector(ctx, a.cfg.OBS.Monitor); err != nil {
			logging.Warn("App", "Could not open projector: %v", err)
		}
	}

	// Bring content in before the first scan so a fresh install does
	// not flash the placeholder while the initial download runs.
	if a.syncer != nil {
		if _, err := a.syncer.Sync(ctx); err != nil {
			logging.Warn("App", "Initial sync failed: %v", err)
		}
	}

	if a.scheduler != nil {
		window := a.scheduler.Current()
		if err := a.applyWindow(ctx, window); err != nil {
			logging.Error("App", err, "Could not apply schedule window %q", window.Name)
		}
	}

	if err := a.engine.Rescan(ctx); err != nil {
		logging.Error("App", err, "Initial content scan failed")
	}
	if a.player != nil {
		a.player.Refresh()
		defer a.player.Stop()
	}

	changes := make(chan struct{}, 1)
	if err := a.watcher.Start(ctx, changes); err != nil {
		return fmt.Errorf("start content watcher: %w", err)
	}
	defer a.watcher.Stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.rotationLoop(ctx) })
	g.Go(func() error { return a.changeLoop(ctx, changes) })
	g.Go(func() error { return a.healthLoop(ctx) })

	if a.scheduler != nil {
		g.Go(func() error { return a.scheduleLoop(ctx) })
	}
	if a.syncer != nil {
		g.Go(func() error { return a.syncLoop(ctx) })
	}

	logging.Info("App", "Signage daemon running")
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// rotationLoop advances the scene rotation on a fixed cadence. The tick
// is deliberately much shorter than any display duration so switches
// land close to their scheduled time.
func (a *Application) rotationLoop(ctx context.Context) error {
	ticker := time.NewTicker(rotationTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.engine.Tick(ctx)
		}
	}
}

// changeLoop reacts to debounced filesystem change signals.
func (a *Application) changeLoop(ctx context.Context, changes <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
			logging.Info("App", "Content change detected")
			if err := a.engine.Rescan(ctx); err != nil {
				logging.Error("App", err, "Rescan after content change failed")
			}
			if a.player != nil {
				a.player.Refresh()
			}
		}
	}
}

// scheduleLoop re-evaluates the schedule and applies window changes.
func (a *Application) scheduleLoop(ctx context.Context) error {
	interval := time.Duration(a.cfg.Schedule.CheckIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			window, changed := a.scheduler.CheckChange(time.Now())
			if !changed {
				continue
			}
			if err := a.applyWindow(ctx, window); err != nil {
				logging.Error("App", err, "Could not apply schedule window %q", window.Name)
			}
		}
	}
}

// applyWindow propagates a window change to every directory-bound
// component: engine, watcher, remote sync and audio.
func (a *Application) applyWindow(ctx context.Context, window schedule.Window) error {
	if err := a.engine.ApplyWindow(ctx, window); err != nil {
		return err
	}
	dir := a.engine.Dir()
	if err := a.watcher.SetDir(dir); err != nil {
		logging.Warn("App", "Could not move watch to %s: %v", dir, err)
	}
	if a.syncer != nil {
		a.syncer.SetLocalDir(dir)
	}
	if a.player != nil {
		a.player.SetDir(dir)
		a.player.Refresh()
	}
	return nil
}

// syncLoop mirrors the remote share on a fixed interval and rescans
// when the mirror changed something locally.
func (a *Application) syncLoop(ctx context.Context) error {
	interval := time.Duration(a.cfg.Sync.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			changed, err := a.syncer.Sync(ctx)
			if err != nil {
				logging.Warn("App", "Sync failed: %v", err)
				continue
			}
			if !changed {
				continue
			}
			if err := a.engine.Rescan(ctx); err != nil {
				logging.Error("App", err, "Rescan after sync failed")
			}
			if a.player != nil {
				a.player.Refresh()
			}
		}
	}
}

// healthLoop logs a status line and verifies the OBS connection,
// recovering it when a probe fails. A reconnect clears the managed
// state because the scene collection may have changed while we were
// away.
func (a *Application) healthLoop(ctx context.Context) error {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			status := a.engine.Status()
			logging.Debug("App", "Health: %d media, active %q, %d scenes managed",
				status.MediaCount, status.ActiveFile, status.SceneCount)

			if _, err := a.client.Version(ctx); err == nil {
				continue
			}
			logging.Warn("App", "OBS connection lost, reconnecting")
			if err := a.client.Recover(ctx); err != nil {
				logging.Error("App", err, "OBS reconnect failed")
				continue
			}
			a.engine.Reset()
			if err := a.engine.Rescan(ctx); err != nil {
				logging.Error("App", err, "Rescan after reconnect failed")
			}
		}
	}
}
