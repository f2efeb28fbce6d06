package reconcile

// canvasTransform builds the scene-item transform that scales a source
// to fit the target canvas while preserving aspect ratio and centering
// it (OBS "scale inner" bounds).
func canvasTransform(width, height float64) map[string]interface{} {
	return map[string]interface{}{
		"positionX":    0,
		"positionY":    0,
		"scaleX":       1.0,
		"scaleY":       1.0,
		"cropLeft":     0,
		"cropTop":      0,
		"cropRight":    0,
		"cropBottom":   0,
		"boundsType":   "OBS_BOUNDS_SCALE_INNER",
		"boundsWidth":  width,
		"boundsHeight": height,
	}
}
