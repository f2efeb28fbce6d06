// Package reconcile diffs a resolved catalog against externally-managed
// OBS scene and source state and applies the minimal set of create and
// remove operations, with a crash-safe full-sweep fallback.
package reconcile

import "context"

// Controller is the presentation-controller capability surface the
// reconciler needs. Every call may fail; failures are logged and treated
// as non-fatal to the batch unless noted otherwise.
type Controller interface {
	CreateScene(ctx context.Context, name string) error
	RemoveScene(ctx context.Context, name string) error
	ListScenes(ctx context.Context) ([]string, error)
	SetCurrentScene(ctx context.Context, name string) error

	CreateInput(ctx context.Context, scene, name, kind string, settings map[string]interface{}) error
	RemoveInput(ctx context.Context, name string) error
	ListInputs(ctx context.Context) ([]string, error)
	SetInputMute(ctx context.Context, name string, muted bool) error

	GetSceneItemID(ctx context.Context, scene, source string) (int, error)
	SetSceneItemTransform(ctx context.Context, scene string, itemID int, transform map[string]interface{}) error

	SetTransition(ctx context.Context, name string) error
}

// ManagedState is the set of scenes and sources the reconciler believes
// it created. It is the single source of truth for what may be deleted
// without a full sweep, and is mutated only by the reconciler right
// after each successful controller call.
type ManagedState struct {
	Scenes  map[string]bool
	Sources map[string]bool
}

// NewManagedState returns an empty managed state, which is the state at
// process start and the trigger for the full-sweep cleanup path.
func NewManagedState() ManagedState {
	return ManagedState{
		Scenes:  make(map[string]bool),
		Sources: make(map[string]bool),
	}
}

// Empty reports whether nothing is currently managed.
func (s ManagedState) Empty() bool {
	return len(s.Scenes) == 0 && len(s.Sources) == 0
}
