package obs

import "context"

// CreateScene creates a new scene.
func (c *Client) CreateScene(ctx context.Context, name string) error {
	return c.call(ctx, "CreateScene", map[string]interface{}{
		"sceneName": name,
	}, nil)
}

// RemoveScene removes a scene by name.
func (c *Client) RemoveScene(ctx context.Context, name string) error {
	return c.call(ctx, "RemoveScene", map[string]interface{}{
		"sceneName": name,
	}, nil)
}

// ListScenes returns the names of all scenes.
func (c *Client) ListScenes(ctx context.Context) ([]string, error) {
	var out struct {
		Scenes []struct {
			SceneName string `json:"sceneName"`
		} `json:"scenes"`
	}
	if err := c.call(ctx, "GetSceneList", nil, &out); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(out.Scenes))
	for _, s := range out.Scenes {
		names = append(names, s.SceneName)
	}
	return names, nil
}

// SetCurrentScene switches the program output to the named scene.
func (c *Client) SetCurrentScene(ctx context.Context, name string) error {
	return c.call(ctx, "SetCurrentProgramScene", map[string]interface{}{
		"sceneName": name,
	}, nil)
}

// CreateInput creates an input of the given kind inside a scene.
func (c *Client) CreateInput(ctx context.Context, scene, name, kind string, settings map[string]interface{}) error {
	return c.call(ctx, "CreateInput", map[string]interface{}{
		"sceneName":        scene,
		"inputName":        name,
		"inputKind":        kind,
		"inputSettings":    settings,
		"sceneItemEnabled": true,
	}, nil)
}

// RemoveInput removes an input by name.
func (c *Client) RemoveInput(ctx context.Context, name string) error {
	return c.call(ctx, "RemoveInput", map[string]interface{}{
		"inputName": name,
	}, nil)
}

// ListInputs returns the names of all inputs.
func (c *Client) ListInputs(ctx context.Context) ([]string, error) {
	var out struct {
		Inputs []struct {
			InputName string `json:"inputName"`
		} `json:"inputs"`
	}
	if err := c.call(ctx, "GetInputList", nil, &out); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(out.Inputs))
	for _, in := range out.Inputs {
		names = append(names, in.InputName)
	}
	return names, nil
}

// SetInputMute sets the mute state of an input.
func (c *Client) SetInputMute(ctx context.Context, name string, muted bool) error {
	return c.call(ctx, "SetInputMute", map[string]interface{}{
		"inputName":  name,
		"inputMuted": muted,
	}, nil)
}

// GetSceneItemID resolves the scene-item ID of a source within a scene.
func (c *Client) GetSceneItemID(ctx context.Context, scene, source string) (int, error) {
	var out struct {
		SceneItemID int `json:"sceneItemId"`
	}
	if err := c.call(ctx, "GetSceneItemId", map[string]interface{}{
		"sceneName":  scene,
		"sourceName": source,
	}, &out); err != nil {
		return 0, err
	}
	return out.SceneItemID, nil
}

// SetSceneItemTransform applies a transform to a scene item.
func (c *Client) SetSceneItemTransform(ctx context.Context, scene string, itemID int, transform map[string]interface{}) error {
	return c.call(ctx, "SetSceneItemTransform", map[string]interface{}{
		"sceneName":          scene,
		"sceneItemId":        itemID,
		"sceneItemTransform": transform,
	}, nil)
}

// SetTransition sets the current scene transition style.
func (c *Client) SetTransition(ctx context.Context, name string) error {
	return c.call(ctx, "SetCurrentSceneTransition", map[string]interface{}{
		"transitionName": name,
	}, nil)
}

// OpenProjector opens a fullscreen program projector on a monitor.
func (c *Client) OpenProjector(ctx context.Context, monitorIndex int) error {
	return c.call(ctx, "OpenVideoMixProjector", map[string]interface{}{
		"videoMixType": "OBS_WEBSOCKET_VIDEO_MIX_TYPE_PROGRAM",
		"monitorIndex": monitorIndex,
	}, nil)
}

// Version returns the OBS Studio version string. It doubles as the
// health check request.
func (c *Client) Version(ctx context.Context) (string, error) {
	var out struct {
		ObsVersion string `json:"obsVersion"`
	}
	if err := c.call(ctx, "GetVersion", nil, &out); err != nil {
		return "", err
	}
	return out.ObsVersion, nil
}
