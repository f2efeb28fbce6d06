package rotation

import (
	"context"
	"testing"
	"time"

	"signage/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSwitcher struct {
	switches []string
}

func (f *fakeSwitcher) SetCurrentScene(ctx context.Context, name string) error {
	f.switches = append(f.switches, name)
	return nil
}

func resolvedSet(entries ...catalog.ResolvedEntry) catalog.Resolved {
	c := catalog.Catalog{}
	durations := make([]float64, 0, len(entries))
	for _, e := range entries {
		c.Entries = append(c.Entries, e.Entry)
		durations = append(durations, e.Duration)
	}
	return catalog.NewResolved(c, durations)
}

func video(name string, duration float64) catalog.ResolvedEntry {
	return catalog.ResolvedEntry{
		Entry:    catalog.Entry{Filename: name, Kind: catalog.KindVideo},
		Duration: duration,
	}
}

func image(name string, duration float64) catalog.ResolvedEntry {
	return catalog.ResolvedEntry{
		Entry:    catalog.Entry{Filename: name, Kind: catalog.KindImage},
		Duration: duration,
	}
}

func TestClock_VideoSwitchesEarlyByOffset(t *testing.T) {
	sw := &fakeSwitcher{}
	c := NewClock(sw, 2.0)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.Reset(resolvedSet(video("a.mp4", 10), video("b.mp4", 10)), start)

	// A 10s video with a 2s offset switches at 8s, not before.
	assert.Empty(t, c.Tick(context.Background(), start.Add(7900*time.Millisecond)))
	assert.Empty(t, sw.switches)

	scene := c.Tick(context.Background(), start.Add(8*time.Second))
	assert.Equal(t, "b.mp4_scene", scene)
	assert.Equal(t, []string{"b.mp4_scene"}, sw.switches)
}

func TestClock_ImageUsesFullDuration(t *testing.T) {
	sw := &fakeSwitcher{}
	c := NewClock(sw, 2.0)
	start := time.Now()
	c.Reset(resolvedSet(image("a.jpg", 8), image("b.jpg", 8)), start)

	assert.Empty(t, c.Tick(context.Background(), start.Add(7*time.Second)))
	scene := c.Tick(context.Background(), start.Add(8*time.Second))
	assert.Equal(t, "b.jpg_scene", scene)
}

func TestClock_WrapsAround(t *testing.T) {
	sw := &fakeSwitcher{}
	c := NewClock(sw, 0)
	start := time.Now()
	c.Reset(resolvedSet(image("a.jpg", 1), image("b.jpg", 1), image("c.jpg", 1)), start)

	now := start
	for _, want := range []string{"b.jpg_scene", "c.jpg_scene", "a.jpg_scene"} {
		now = now.Add(time.Second)
		assert.Equal(t, want, c.Tick(context.Background(), now))
	}
}

func TestClock_ShortVideoNeverGoesNegative(t *testing.T) {
	sw := &fakeSwitcher{}
	c := NewClock(sw, 5.0)
	start := time.Now()
	c.Reset(resolvedSet(video("short.mp4", 3), image("b.jpg", 8)), start)

	// Effective switch time clamps to zero, so the very next tick moves on.
	scene := c.Tick(context.Background(), start)
	assert.Equal(t, "b.jpg_scene", scene)
}

func TestClock_TimerRestartsOnSwitch(t *testing.T) {
	sw := &fakeSwitcher{}
	c := NewClock(sw, 0)
	start := time.Now()
	c.Reset(resolvedSet(image("a.jpg", 5), image("b.jpg", 5)), start)

	switchAt := start.Add(5 * time.Second)
	require.Equal(t, "b.jpg_scene", c.Tick(context.Background(), switchAt))

	// The new item's timer runs from the switch, not from the original start.
	assert.Empty(t, c.Tick(context.Background(), switchAt.Add(4*time.Second)))
	assert.Equal(t, "a.jpg_scene", c.Tick(context.Background(), switchAt.Add(5*time.Second)))
}

func TestClock_EmptySetStops(t *testing.T) {
	sw := &fakeSwitcher{}
	c := NewClock(sw, 2.0)
	c.Reset(resolvedSet(), time.Now())

	assert.False(t, c.Active())
	assert.Empty(t, c.Tick(context.Background(), time.Now().Add(time.Hour)))
	_, ok := c.Current()
	assert.False(t, ok)
}

func TestClock_ResetGoesBackToFirstEntry(t *testing.T) {
	sw := &fakeSwitcher{}
	c := NewClock(sw, 0)
	start := time.Now()
	c.Reset(resolvedSet(image("a.jpg", 1), image("b.jpg", 1)), start)
	c.Tick(context.Background(), start.Add(time.Second))

	c.Reset(resolvedSet(image("a.jpg", 1), image("b.jpg", 1)), start.Add(2*time.Second))
	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "a.jpg", cur.Filename)
}

func TestClock_ActivateCurrent(t *testing.T) {
	sw := &fakeSwitcher{}
	c := NewClock(sw, 0)
	start := time.Now()
	c.Reset(resolvedSet(image("a.jpg", 5)), start)

	c.ActivateCurrent(context.Background(), start)
	assert.Equal(t, []string{"a.jpg_scene"}, sw.switches)
}
