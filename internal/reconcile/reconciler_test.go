package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"signage/internal/catalog"
	"signage/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeController emulates OBS scene/input state and records every call.
type fakeController struct {
	scenes map[string]bool
	inputs map[string]bool

	currentScene string
	transition   string
	muted        map[string]bool
	transforms   map[string]map[string]interface{}
	itemIDs      map[string]int

	calls    []string
	failWith map[string]error
}

func newFakeController(scenes ...string) *fakeController {
	f := &fakeController{
		scenes:     make(map[string]bool),
		inputs:     make(map[string]bool),
		muted:      make(map[string]bool),
		transforms: make(map[string]map[string]interface{}),
		itemIDs:    make(map[string]int),
		failWith:   make(map[string]error),
	}
	for _, s := range scenes {
		f.scenes[s] = true
	}
	return f
}

func (f *fakeController) record(call string) error {
	f.calls = append(f.calls, call)
	return f.failWith[call]
}

func (f *fakeController) CreateScene(ctx context.Context, name string) error {
	if err := f.record("CreateScene:" + name); err != nil {
		return err
	}
	f.scenes[name] = true
	return nil
}

func (f *fakeController) RemoveScene(ctx context.Context, name string) error {
	if err := f.record("RemoveScene:" + name); err != nil {
		return err
	}
	delete(f.scenes, name)
	return nil
}

func (f *fakeController) ListScenes(ctx context.Context) ([]string, error) {
	if err := f.record("ListScenes"); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.scenes))
	for name := range f.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeController) SetCurrentScene(ctx context.Context, name string) error {
	if err := f.record("SetCurrentScene:" + name); err != nil {
		return err
	}
	f.currentScene = name
	return nil
}

func (f *fakeController) CreateInput(ctx context.Context, scene, name, kind string, settings map[string]interface{}) error {
	if err := f.record(fmt.Sprintf("CreateInput:%s:%s", name, kind)); err != nil {
		return err
	}
	f.inputs[name] = true
	return nil
}

func (f *fakeController) RemoveInput(ctx context.Context, name string) error {
	if err := f.record("RemoveInput:" + name); err != nil {
		return err
	}
	delete(f.inputs, name)
	return nil
}

func (f *fakeController) ListInputs(ctx context.Context) ([]string, error) {
	if err := f.record("ListInputs"); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.inputs))
	for name := range f.inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeController) SetInputMute(ctx context.Context, name string, muted bool) error {
	if err := f.record("SetInputMute:" + name); err != nil {
		return err
	}
	f.muted[name] = muted
	return nil
}

func (f *fakeController) GetSceneItemID(ctx context.Context, scene, source string) (int, error) {
	if err := f.record("GetSceneItemID:" + source); err != nil {
		return 0, err
	}
	if id, ok := f.itemIDs[source]; ok {
		return id, nil
	}
	return 1, nil
}

func (f *fakeController) SetSceneItemTransform(ctx context.Context, scene string, itemID int, transform map[string]interface{}) error {
	if err := f.record("SetSceneItemTransform:" + scene); err != nil {
		return err
	}
	f.transforms[scene] = transform
	return nil
}

func (f *fakeController) SetTransition(ctx context.Context, name string) error {
	if err := f.record("SetTransition:" + name); err != nil {
		return err
	}
	f.transition = name
	return nil
}

func (f *fakeController) countCalls(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func resolved(entries ...catalog.ResolvedEntry) catalog.Resolved {
	c := catalog.Catalog{}
	durations := make([]float64, 0, len(entries))
	for _, e := range entries {
		c.Entries = append(c.Entries, e.Entry)
		durations = append(durations, e.Duration)
	}
	return catalog.NewResolved(c, durations)
}

func videoEntry(name string, duration float64) catalog.ResolvedEntry {
	return catalog.ResolvedEntry{
		Entry:    catalog.Entry{Filename: name, Path: "/content/" + name, Kind: catalog.KindVideo, Size: 1, ModTime: time.Now()},
		Duration: duration,
	}
}

func imageEntry(name string, duration float64) catalog.ResolvedEntry {
	return catalog.ResolvedEntry{
		Entry:    catalog.Entry{Filename: name, Path: "/content/" + name, Kind: catalog.KindImage, Size: 1, ModTime: time.Now()},
		Duration: duration,
	}
}

func TestApply_CreatesScenesAndSources(t *testing.T) {
	ctrl := newFakeController()
	r := New(ctrl, 1920, 1080)

	state := r.Apply(context.Background(), NewManagedState(), resolved(
		imageEntry("a.jpg", 8),
		videoEntry("b.mp4", 30),
	))

	assert.True(t, state.Scenes["a.jpg_scene"])
	assert.True(t, state.Scenes["b.mp4_scene"])
	assert.True(t, state.Sources["a.jpg_source"])
	assert.True(t, state.Sources["b.mp4_source"])

	assert.Contains(t, ctrl.calls, "CreateInput:a.jpg_source:image_source")
	assert.Contains(t, ctrl.calls, "CreateInput:b.mp4_source:ffmpeg_source")

	// Only the video is muted.
	assert.True(t, ctrl.muted["b.mp4_source"])
	_, imageMuted := ctrl.muted["a.jpg_source"]
	assert.False(t, imageMuted)

	// Both items got the scale-inside transform.
	tr := ctrl.transforms["a.jpg_scene"]
	require.NotNil(t, tr)
	assert.Equal(t, "OBS_BOUNDS_SCALE_INNER", tr["boundsType"])
	assert.Equal(t, 1920.0, tr["boundsWidth"])
	assert.Equal(t, 1080.0, tr["boundsHeight"])
}

func TestApply_BootstrapSweepsByNamingConvention(t *testing.T) {
	ctrl := newFakeController(
		"stale.mp4_scene",       // engine convention
		config.PlaceholderScene, // reserved
		"My Slideshow",          // legacy pattern
		"digital_signage_old",   // legacy pattern
		"Unrelated User Scene",  // untouched by the bootstrap sweep
	)
	ctrl.inputs["stale.mp4_source"] = true
	ctrl.inputs["Mic/Aux"] = true

	r := New(ctrl, 1920, 1080)
	state := r.Apply(context.Background(), NewManagedState(), resolved(videoEntry("new.mp4", 20)))

	assert.Contains(t, ctrl.calls, "RemoveScene:stale.mp4_scene")
	assert.Contains(t, ctrl.calls, "RemoveScene:"+config.PlaceholderScene)
	assert.Contains(t, ctrl.calls, "RemoveScene:My Slideshow")
	assert.Contains(t, ctrl.calls, "RemoveScene:digital_signage_old")
	assert.Contains(t, ctrl.calls, "RemoveInput:stale.mp4_source")
	assert.NotContains(t, ctrl.calls, "RemoveInput:Mic/Aux")

	// The unrelated scene survives the bootstrap sweep but falls to the
	// orphan sweep afterwards.
	assert.False(t, ctrl.scenes["Unrelated User Scene"])
	assert.True(t, state.Scenes["new.mp4_scene"])
}

func TestApply_BootstrapTriggersOnlyOnEmptyState(t *testing.T) {
	ctrl := newFakeController("old.mp4_scene")
	ctrl.inputs["old.mp4_source"] = true

	state := NewManagedState()
	state.Scenes["old.mp4_scene"] = true
	state.Sources["old.mp4_source"] = true

	r := New(ctrl, 1920, 1080)
	r.Apply(context.Background(), state, resolved(videoEntry("new.mp4", 20)))

	// Incremental path: no input enumeration, exactly the recorded pair
	// is removed.
	assert.Equal(t, 0, ctrl.countCalls("ListInputs"))
	assert.Contains(t, ctrl.calls, "RemoveScene:old.mp4_scene")
	assert.Contains(t, ctrl.calls, "RemoveInput:old.mp4_source")
}

func TestApply_OrphanSweep(t *testing.T) {
	ctrl := newFakeController("manually_created")

	state := NewManagedState()
	state.Scenes["gone.mp4_scene"] = true
	state.Sources["gone.mp4_source"] = true

	r := New(ctrl, 1920, 1080)
	next := r.Apply(context.Background(), state, resolved(
		videoEntry("a.mp4", 10),
		videoEntry("b.mp4", 10),
	))

	// Managed scenes and the placeholder survive; the manual scene is
	// removed.
	assert.True(t, next.Scenes["a.mp4_scene"])
	assert.True(t, next.Scenes["b.mp4_scene"])
	assert.False(t, ctrl.scenes["manually_created"])
	assert.True(t, ctrl.scenes["a.mp4_scene"])
	assert.True(t, ctrl.scenes["b.mp4_scene"])
}

func TestApply_EmptyCatalogActivatesPlaceholder(t *testing.T) {
	ctrl := newFakeController()
	r := New(ctrl, 1920, 1080)

	state := r.Apply(context.Background(), NewManagedState(), resolved())

	assert.True(t, state.Empty())
	assert.True(t, ctrl.scenes[config.PlaceholderScene])
	assert.Equal(t, config.PlaceholderScene, ctrl.currentScene)
}

func TestApply_SceneCreateFailureSkipsEntryOnly(t *testing.T) {
	ctrl := newFakeController()
	ctrl.failWith["CreateScene:bad.mp4_scene"] = errors.New("boom")

	r := New(ctrl, 1920, 1080)
	state := r.Apply(context.Background(), NewManagedState(), resolved(
		videoEntry("bad.mp4", 10),
		videoEntry("good.mp4", 10),
	))

	assert.False(t, state.Scenes["bad.mp4_scene"])
	assert.True(t, state.Scenes["good.mp4_scene"])
	assert.True(t, state.Sources["good.mp4_source"])
}

func TestApply_TransformSkippedWhenItemIDUnresolvable(t *testing.T) {
	ctrl := newFakeController()
	ctrl.failWith["GetSceneItemID:a.mp4_source"] = errors.New("no such item")

	r := New(ctrl, 1920, 1080)
	state := r.Apply(context.Background(), NewManagedState(), resolved(
		videoEntry("a.mp4", 10),
		videoEntry("b.mp4", 10),
	))

	// Both entries remain managed; only the failing one misses its
	// transform.
	assert.True(t, state.Scenes["a.mp4_scene"])
	assert.True(t, state.Scenes["b.mp4_scene"])
	_, ok := ctrl.transforms["a.mp4_scene"]
	assert.False(t, ok)
	_, ok = ctrl.transforms["b.mp4_scene"]
	assert.True(t, ok)
}

func TestRemoveEntry(t *testing.T) {
	ctrl := newFakeController("a.mp4_scene")
	ctrl.inputs["a.mp4_source"] = true

	state := NewManagedState()
	state.Scenes["a.mp4_scene"] = true
	state.Sources["a.mp4_source"] = true

	r := New(ctrl, 1920, 1080)
	scene, removed := r.RemoveEntry(context.Background(), state, "a.mp4")

	assert.Equal(t, "a.mp4_scene", scene)
	assert.True(t, removed)
	assert.False(t, state.Scenes["a.mp4_scene"])
	assert.False(t, state.Sources["a.mp4_source"])
	assert.False(t, ctrl.scenes["a.mp4_scene"])
}

func TestRemoveEntry_Unmanaged(t *testing.T) {
	ctrl := newFakeController()
	r := New(ctrl, 1920, 1080)

	_, removed := r.RemoveEntry(context.Background(), NewManagedState(), "ghost.mp4")

	assert.False(t, removed)
	assert.Empty(t, ctrl.calls)
}

func TestEnsurePlaceholder_Idempotent(t *testing.T) {
	ctrl := newFakeController(config.PlaceholderScene)
	r := New(ctrl, 1920, 1080)

	r.EnsurePlaceholder(context.Background())

	assert.Equal(t, 0, ctrl.countCalls("CreateScene:"))
}
