// Package webdav mirrors a remote WebDAV share into the local content
// directory. Downloads are size-compared and written through temp files
// so the filesystem watcher never observes a partial media file.
package webdav

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/studio-b12/gowebdav"

	"signage/internal/catalog"
	"signage/pkg/logging"
)

// Notifier is told about files the sync deleted locally, so the engine
// can drop them from the rotation without waiting for a rescan.
type Notifier interface {
	RemoveFile(ctx context.Context, filename string)
}

// Syncer mirrors one remote directory tree into one local directory.
// The local directory may be switched concurrently with a running Sync;
// each pass snapshots it once so listing, downloads and deletions all
// act on the same directory.
type Syncer struct {
	client     *gowebdav.Client
	remotePath string
	formats    catalog.Formats
	notifier   Notifier

	mu       sync.Mutex
	localDir string
}

// Config holds the connection parameters for the remote share.
type Config struct {
	URL        string
	Username   string
	Password   string
	RemotePath string
	Timeout    time.Duration
}

// New creates a Syncer mirroring cfg.RemotePath into localDir.
func New(cfg Config, localDir string, formats catalog.Formats, notifier Notifier) *Syncer {
	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Syncer{
		client:     client,
		remotePath: cfg.RemotePath,
		localDir:   localDir,
		formats:    formats,
		notifier:   notifier,
	}
}

// Check verifies the remote share is reachable.
func (s *Syncer) Check() error {
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("webdav connect: %w", err)
	}
	return nil
}

// SetLocalDir redirects the mirror target, used on schedule folder
// switches. A pass already in flight finishes against its old target.
func (s *Syncer) SetLocalDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.localDir = dir
}

// Sync performs one mirror pass and reports whether anything changed
// locally. Remote files are matched flat by filename; subdirectories on
// the remote are walked but their files land in the one local dir, same
// as the catalog's non-recursive view.
func (s *Syncer) Sync(ctx context.Context) (bool, error) {
	s.mu.Lock()
	localDir := s.localDir
	s.mu.Unlock()

	remote, err := s.listRemote(s.remotePath)
	if err != nil {
		return false, fmt.Errorf("list remote %s: %w", s.remotePath, err)
	}

	if err := os.MkdirAll(localDir, 0755); err != nil {
		return false, err
	}

	changed := false
	for name, rf := range remote {
		if ctx.Err() != nil {
			return changed, ctx.Err()
		}
		downloaded, err := s.download(localDir, rf, name)
		if err != nil {
			logging.Warn("Sync", "Download of %s failed: %v", name, err)
			continue
		}
		if downloaded {
			changed = true
		}
	}

	removed, err := s.removeVanished(ctx, localDir, remote)
	if err != nil {
		return changed, err
	}
	return changed || removed, nil
}

type remoteFile struct {
	path string
	size int64
}

// listRemote walks the remote tree and returns supported media files
// keyed by filename.
func (s *Syncer) listRemote(dir string) (map[string]remoteFile, error) {
	entries, err := s.client.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make(map[string]remoteFile)
	for _, entry := range entries {
		full := path.Join(dir, entry.Name())
		if entry.IsDir() {
			sub, err := s.listRemote(full)
			if err != nil {
				logging.Warn("Sync", "Could not list remote directory %s: %v", full, err)
				continue
			}
			for name, rf := range sub {
				files[name] = rf
			}
			continue
		}
		if s.formats.Classify(entry.Name()) == catalog.KindUnknown {
			continue
		}
		files[entry.Name()] = remoteFile{path: full, size: entry.Size()}
	}
	return files, nil
}

// download fetches one remote file unless the local copy already has
// the same size. The write goes to a temp file first and renames into
// place.
func (s *Syncer) download(localDir string, rf remoteFile, name string) (bool, error) {
	local := filepath.Join(localDir, name)

	if info, err := os.Stat(local); err == nil && info.Size() == rf.size {
		return false, nil
	}

	stream, err := s.client.ReadStream(rf.path)
	if err != nil {
		return false, err
	}
	defer stream.Close()

	tmp, err := os.CreateTemp(localDir, ".sync-*")
	if err != nil {
		return false, err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, stream); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return false, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return false, err
	}
	if err := os.Rename(tmpName, local); err != nil {
		os.Remove(tmpName)
		return false, err
	}

	logging.Info("Sync", "Downloaded %s (%d bytes)", name, rf.size)
	return true, nil
}

// removeVanished deletes local media files that no longer exist on the
// remote and notifies the engine about each one.
func (s *Syncer) removeVanished(ctx context.Context, localDir string, remote map[string]remoteFile) (bool, error) {
	entries, err := os.ReadDir(localDir)
	if err != nil {
		return false, err
	}

	removed := false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if s.formats.Classify(name) == catalog.KindUnknown {
			continue
		}
		if _, ok := remote[name]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(localDir, name)); err != nil {
			logging.Warn("Sync", "Could not remove %s: %v", name, err)
			continue
		}
		logging.Info("Sync", "Removed %s, gone from remote", name)
		removed = true
		if s.notifier != nil {
			s.notifier.RemoveFile(ctx, name)
		}
	}
	return removed, nil
}
