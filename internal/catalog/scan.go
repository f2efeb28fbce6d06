package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"signage/pkg/logging"
)

// Scan lists dir non-recursively and classifies each regular file
// against the configured extension sets. Zero-byte files are rejected
// and unreadable files are skipped with a warning; only a failure to
// list the directory itself aborts the scan. The result is sorted by
// filename, case-insensitively.
func Scan(dir string, formats Formats) (Catalog, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return Catalog{}, fmt.Errorf("reading content directory %s: %w", dir, err)
	}

	// OBS resolves source file settings against its own working
	// directory, so entry paths must be absolute.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}

		name := de.Name()
		kind := formats.Classify(name)
		if kind != KindVideo && kind != KindImage {
			// Audio is played by the audio subsystem; everything else
			// is not ours.
			continue
		}

		info, err := de.Info()
		if err != nil {
			logging.Warn("Catalog", "Skipping unreadable file %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			logging.Warn("Catalog", "Skipping empty file %s", name)
			continue
		}

		entries = append(entries, Entry{
			Filename: name,
			Path:     filepath.Join(absDir, name),
			Kind:     kind,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}

	sortEntries(entries)
	return Catalog{Entries: entries}, nil
}
