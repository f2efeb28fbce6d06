package probe

import (
	"context"

	"signage/internal/catalog"
	"signage/pkg/logging"
)

// Resolver turns a scanned catalog into a resolved one by attaching a
// playback duration to every entry. A failed probe never fails the pass;
// the affected entry falls back to the configured default duration.
type Resolver struct {
	prober        Prober
	slideDuration float64
	maxVideo      float64
	fallback      float64
}

// NewResolver creates a Resolver. slideDuration is used for images,
// maxVideo caps probed video durations and fallback replaces durations
// that could not be probed.
func NewResolver(prober Prober, slideDuration, maxVideo, fallback float64) *Resolver {
	return &Resolver{
		prober:        prober,
		slideDuration: slideDuration,
		maxVideo:      maxVideo,
		fallback:      fallback,
	}
}

// ResolveAll resolves durations for the entire catalog. It must run to
// completion before any scene is created, because scene-item timing
// downstream depends on known durations; the Resolved return type is
// what enforces that ordering.
func (r *Resolver) ResolveAll(ctx context.Context, c catalog.Catalog) catalog.Resolved {
	durations := make([]float64, len(c.Entries))
	for i, entry := range c.Entries {
		switch entry.Kind {
		case catalog.KindImage:
			durations[i] = r.slideDuration
			logging.Debug("Probe", "Image %s: %.1fs", entry.Filename, durations[i])

		case catalog.KindVideo:
			seconds, err := r.prober.Probe(ctx, entry.Path)
			if err != nil {
				logging.Warn("Probe", "Could not get duration for %s, using fallback (%.0fs): %v", entry.Filename, r.fallback, err)
				durations[i] = r.fallback
				continue
			}
			if r.maxVideo > 0 && seconds > r.maxVideo {
				logging.Warn("Probe", "Video %s exceeds maximum duration (%.1fs), capping at %.0fs", entry.Filename, seconds, r.maxVideo)
				seconds = r.maxVideo
			}
			durations[i] = seconds
			logging.Info("Probe", "Video %s: %.2fs", entry.Filename, seconds)

		default:
			durations[i] = r.fallback
		}
	}

	logging.Info("Probe", "Duration detection complete: %d files processed", len(c.Entries))
	return catalog.NewResolved(c, durations)
}
