// Package rotation advances the active scene through the resolved
// catalog on a wall-clock schedule, switching each item after its
// display duration elapses.
package rotation

import (
	"context"
	"time"

	"signage/internal/catalog"
	"signage/pkg/logging"
)

// SceneSwitcher is the single capability the clock needs from the
// presentation controller.
type SceneSwitcher interface {
	SetCurrentScene(ctx context.Context, name string) error
}

// Clock tracks which catalog entry is on screen and when it went up.
// It is not safe for concurrent use; the engine serializes access.
type Clock struct {
	switcher SceneSwitcher

	// transitionOffset is subtracted from video durations so the scene
	// switch lands while the transition still has footage to blend into.
	transitionOffset float64

	entries []catalog.ResolvedEntry
	cursor  int
	started time.Time
	active  bool
}

// NewClock creates a stopped clock. Reset starts it.
func NewClock(switcher SceneSwitcher, transitionOffset float64) *Clock {
	return &Clock{
		switcher:         switcher,
		transitionOffset: transitionOffset,
	}
}

// Reset replaces the rotation set and restarts from the first entry.
// With an empty set the clock stops until the next Reset.
func (c *Clock) Reset(resolved catalog.Resolved, now time.Time) {
	c.entries = resolved.Entries
	c.cursor = 0
	c.started = now
	c.active = len(c.entries) > 0
	if c.active {
		logging.Debug("Rotation", "Rotation reset, %d item(s), starting at %s", len(c.entries), c.entries[0].Filename)
	}
}

// ResetKeeping replaces the rotation set like Reset but keeps the
// cursor on the named file when it survived the change, so removing an
// inactive item does not interrupt what is on screen.
func (c *Clock) ResetKeeping(resolved catalog.Resolved, now time.Time, filename string) {
	started := c.started
	c.Reset(resolved, now)
	for i, entry := range c.entries {
		if entry.Filename == filename {
			c.cursor = i
			c.started = started
			return
		}
	}
}

// SetTransitionOffset updates the video switch-time offset, applied
// from the next switch decision onward.
func (c *Clock) SetTransitionOffset(offset float64) {
	c.transitionOffset = offset
}

// Active reports whether the clock has entries to rotate through.
func (c *Clock) Active() bool {
	return c.active
}

// Current returns the entry currently on screen, or false when the
// clock is stopped.
func (c *Clock) Current() (catalog.ResolvedEntry, bool) {
	if !c.active {
		return catalog.ResolvedEntry{}, false
	}
	return c.entries[c.cursor], true
}

// switchTime returns how long an entry stays on screen. Videos switch
// early by the transition offset so the crossfade overlaps the tail of
// the clip instead of a black frame.
func (c *Clock) switchTime(entry catalog.ResolvedEntry) float64 {
	if entry.Kind == catalog.KindVideo {
		t := entry.Duration - c.transitionOffset
		if t < 0 {
			return 0
		}
		return t
	}
	return entry.Duration
}

// Tick checks whether the current entry's display time has elapsed and,
// if so, switches to the next entry (wrapping at the end) and restarts
// the timer. Returns the name of the newly activated scene, or "" when
// nothing changed.
func (c *Clock) Tick(ctx context.Context, now time.Time) string {
	if !c.active {
		return ""
	}

	current := c.entries[c.cursor]
	elapsed := now.Sub(c.started).Seconds()
	if elapsed < c.switchTime(current) {
		return ""
	}

	c.cursor = (c.cursor + 1) % len(c.entries)
	next := c.entries[c.cursor]
	c.started = now

	scene := next.SceneName()
	if err := c.switcher.SetCurrentScene(ctx, scene); err != nil {
		logging.Error("Rotation", err, "Failed to switch to %s", scene)
		return ""
	}
	logging.Debug("Rotation", "Switched to %s", scene)
	return scene
}

// ActivateCurrent switches the output to the entry under the cursor
// without advancing, used right after a reconcile pass rebuilt the
// scenes.
func (c *Clock) ActivateCurrent(ctx context.Context, now time.Time) {
	if !c.active {
		return
	}
	entry := c.entries[c.cursor]
	c.started = now
	if err := c.switcher.SetCurrentScene(ctx, entry.SceneName()); err != nil {
		logging.Error("Rotation", err, "Failed to activate %s", entry.SceneName())
	}
}
