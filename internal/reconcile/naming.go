package reconcile

import (
	"strings"

	"signage/internal/config"
)

const (
	sceneSuffix  = "_scene"
	sourceSuffix = "_source"
)

// legacyPatterns match scene names left behind by earlier deployments.
var legacyPatterns = []string{"slideshow", "digital_signage"}

// sweepableScene reports whether a scene name belongs to this engine's
// naming convention and may be deleted during a bootstrap sweep.
func sweepableScene(name string) bool {
	if strings.HasSuffix(name, sceneSuffix) || name == config.PlaceholderScene {
		return true
	}
	lower := strings.ToLower(name)
	for _, pattern := range legacyPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// sweepableSource reports whether an input name follows the engine's
// naming convention.
func sweepableSource(name string) bool {
	return strings.HasSuffix(name, sourceSuffix)
}
