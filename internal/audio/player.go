// Package audio loops a background music file from the content
// directory over the local sound device. Video sources are muted in the
// output, so this is the only audio path.
package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"signage/internal/catalog"
	"signage/pkg/logging"
)

// Player loops the first playable audio file found in the content
// directory and follows it across content changes. Safe for concurrent
// use; Refresh, SetDir and Stop arrive from independent loops.
type Player struct {
	mu sync.Mutex

	dir     string
	formats catalog.Formats
	volume  float64

	current    string
	stream     beep.StreamSeekCloser
	playing    bool
	initDone   bool
	sampleRate beep.SampleRate

	// playTrack is swapped out in tests, where no sound device exists.
	playTrack func(track string) error
}

// NewPlayer creates a stopped player. volume is linear in 0..1.
func NewPlayer(dir string, formats catalog.Formats, volume float64) *Player {
	p := &Player{dir: dir, formats: formats, volume: volume}
	p.playTrack = p.play
	return p
}

// SetDir points the player at a different content directory. The next
// Refresh picks up the change.
func (p *Player) SetDir(dir string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dir = dir
}

// findTracks returns the supported audio files in the directory, sorted
// by name.
func (p *Player) findTracks(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Warn("Audio", "Could not read %s: %v", dir, err)
		return nil
	}

	var tracks []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if p.formats.Classify(entry.Name()) == catalog.KindAudio {
			tracks = append(tracks, entry.Name())
		}
	}
	sort.Strings(tracks)
	return tracks
}

// Refresh reconciles playback with the directory: starts the first
// playable audio file, restarts when it changed, stops when none
// remains. A track that fails to decode is skipped in favor of the
// next one, so one bad file never silences a folder with playable
// tracks behind it.
func (p *Player) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracks := p.findTracks(p.dir)
	if len(tracks) == 0 {
		p.stopLocked()
		return
	}
	if p.playing && p.current == tracks[0] {
		return
	}

	p.stopLocked()
	for _, track := range tracks {
		if err := p.playTrack(track); err != nil {
			logging.Warn("Audio", "Could not play %s, trying next: %v", track, err)
			continue
		}
		p.current = track
		p.playing = true
		logging.Info("Audio", "Playing %s in a loop", track)
		return
	}
	logging.Warn("Audio", "No playable audio track in %s", p.dir)
}

// Playing reports whether a track is currently looping.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Current returns the filename of the looping track, or "".
func (p *Player) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return ""
	}
	return p.current
}

// Stop halts playback and releases the decoder.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// stopLocked is Stop without the lock. Caller holds p.mu.
func (p *Player) stopLocked() {
	if !p.playing {
		return
	}
	speaker.Clear()
	if p.stream != nil {
		p.stream.Close()
		p.stream = nil
	}
	p.playing = false
	p.current = ""
}

// needsInit reports whether the speaker must be (re)initialized for the
// given rate. The device is bound to one sample rate; playing a track
// with a different rate through it would pitch-shift the audio.
func (p *Player) needsInit(rate beep.SampleRate) bool {
	return !p.initDone || rate != p.sampleRate
}

// play starts looping one track. Caller holds p.mu.
func (p *Player) play(track string) error {
	f, err := os.Open(filepath.Join(p.dir, track))
	if err != nil {
		return err
	}

	stream, format, err := decode(track, f)
	if err != nil {
		f.Close()
		return err
	}

	if p.needsInit(format.SampleRate) {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(100*time.Millisecond)); err != nil {
			stream.Close()
			return fmt.Errorf("speaker init: %w", err)
		}
		p.initDone = true
		p.sampleRate = format.SampleRate
	}

	loop := beep.Loop(-1, stream)
	vol := &effects.Volume{
		Streamer: loop,
		Base:     2,
		Volume:   volumeExponent(p.volume),
		Silent:   p.volume <= 0,
	}
	speaker.Play(vol)

	p.stream = stream
	return nil
}

// volumeExponent maps a linear 0..1 volume to the exponential scale the
// mixer uses, where 0 is unity gain.
func volumeExponent(linear float64) float64 {
	if linear <= 0 {
		return 0
	}
	return math.Log2(linear)
}

// decode picks the decoder by file extension. The stream owns the file
// handle and closes it with the stream.
func decode(name string, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return mp3.Decode(f)
	case ".wav":
		return wav.Decode(f)
	case ".ogg":
		return vorbis.Decode(f)
	case ".flac":
		return flac.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", filepath.Ext(name))
	}
}
