// Package catalog scans a content directory into an ordered, deduplicated
// set of typed media entries with a cheap change fingerprint. The sort
// order (case-insensitive by filename) defines rotation order.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Kind classifies a media file by extension.
type Kind int

const (
	KindUnknown Kind = iota
	KindImage
	KindVideo
	KindAudio
)

// String makes Kind satisfy the fmt.Stringer interface.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// Formats holds the three disjoint extension sets used for
// classification. Extensions are stored lowercased with leading dot.
type Formats struct {
	video map[string]bool
	image map[string]bool
	audio map[string]bool
}

// NewFormats builds a Formats from extension lists.
func NewFormats(video, image, audio []string) Formats {
	return Formats{
		video: extensionSet(video),
		image: extensionSet(image),
		audio: extensionSet(audio),
	}
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

// Classify returns the Kind for a filename based on its extension.
func (f Formats) Classify(filename string) Kind {
	ext := strings.ToLower(filenameExt(filename))
	switch {
	case f.video[ext]:
		return KindVideo
	case f.image[ext]:
		return KindImage
	case f.audio[ext]:
		return KindAudio
	default:
		return KindUnknown
	}
}

func filenameExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

// Entry is one media file eligible for rotation. Filename is the
// identity; Size and ModTime feed the catalog fingerprint.
type Entry struct {
	Filename string
	Path     string
	Kind     Kind
	Size     int64
	ModTime  time.Time
}

// SceneName returns the OBS scene name derived from the filename.
func (e Entry) SceneName() string {
	return e.Filename + "_scene"
}

// SourceName returns the OBS input name derived from the filename.
func (e Entry) SourceName() string {
	return e.Filename + "_source"
}

// Catalog is an ordered set of video/image entries. Audio files share
// the classification rule but are handled by the audio player, not here.
type Catalog struct {
	Entries []Entry
}

// Len returns the number of entries.
func (c Catalog) Len() int { return len(c.Entries) }

// Empty reports whether the catalog has no entries.
func (c Catalog) Empty() bool { return len(c.Entries) == 0 }

// Fingerprint returns a deterministic, order-independent digest of the
// catalog: the sorted join of filename:size:mtime triples. Equal
// fingerprints are treated as "no visible change"; a file rewritten with
// identical size and mtime is an accepted blind spot.
func (c Catalog) Fingerprint() string {
	triples := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		triples = append(triples, fmt.Sprintf("%s:%d:%d", e.Filename, e.Size, e.ModTime.Unix()))
	}
	sort.Strings(triples)
	return strings.Join(triples, "|")
}

// sortEntries orders entries by filename, case-insensitively, with the
// raw filename as tie-breaker so the order is total and stable.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a := strings.ToLower(entries[i].Filename)
		b := strings.ToLower(entries[j].Filename)
		if a != b {
			return a < b
		}
		return entries[i].Filename < entries[j].Filename
	})
}

// ResolvedEntry is an Entry with a known playback duration in seconds.
type ResolvedEntry struct {
	Entry
	Duration float64
}

// Resolved is a catalog whose entries all carry resolved durations. The
// reconciler only accepts this form, which makes the "durations before
// scene creation" ordering a compile-time property.
type Resolved struct {
	Entries     []ResolvedEntry
	fingerprint string
}

// NewResolved builds a Resolved catalog from a scanned catalog and its
// per-entry durations. The durations slice must parallel c.Entries.
func NewResolved(c Catalog, durations []float64) Resolved {
	entries := make([]ResolvedEntry, len(c.Entries))
	for i, e := range c.Entries {
		entries[i] = ResolvedEntry{Entry: e, Duration: durations[i]}
	}
	return Resolved{Entries: entries, fingerprint: c.Fingerprint()}
}

// Len returns the number of entries.
func (r Resolved) Len() int { return len(r.Entries) }

// Empty reports whether the catalog has no entries.
func (r Resolved) Empty() bool { return len(r.Entries) == 0 }

// Fingerprint returns the fingerprint of the catalog this was resolved
// from.
func (r Resolved) Fingerprint() string { return r.fingerprint }
