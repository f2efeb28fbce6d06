// Package schedule selects the active content window based on weekday
// and time of day, so different folders and transitions can run at
// different times of the week.
package schedule

import (
	"fmt"
	"time"

	"signage/internal/config"
	"signage/pkg/logging"
)

// Window is one schedule entry. Day uses 0=Monday through 6=Sunday.
// Start and End are minutes since midnight; a window with Start > End
// wraps past midnight. A window without day and time restrictions
// matches always and serves as the default.
type Window struct {
	Name             string
	Folder           string
	Transition       string
	TransitionOffset float64

	Day        *int
	Start, End int
	restricted bool
}

// parseTime converts "HH:MM" to minutes since midnight.
func parseTime(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// newWindow builds a Window from its configuration form.
func newWindow(wc config.WindowConfig) (Window, error) {
	w := Window{
		Name:             wc.Name,
		Folder:           wc.Folder,
		Transition:       wc.Transition,
		TransitionOffset: wc.TransitionOffsetSeconds,
		Day:              wc.Day,
	}
	if wc.Start != "" || wc.End != "" {
		start, err := parseTime(wc.Start)
		if err != nil {
			return Window{}, err
		}
		end, err := parseTime(wc.End)
		if err != nil {
			return Window{}, err
		}
		w.Start, w.End = start, end
		w.restricted = true
	}
	return w, nil
}

// Matches reports whether the window covers the given instant. The end
// minute is exclusive, so back-to-back windows never overlap.
func (w Window) Matches(t time.Time) bool {
	if w.Day != nil {
		// time.Weekday counts 0=Sunday; the schedule counts 0=Monday.
		day := (int(t.Weekday()) + 6) % 7
		if day != *w.Day {
			return false
		}
	}
	if !w.restricted {
		return true
	}
	minute := t.Hour()*60 + t.Minute()
	if w.Start > w.End {
		// Past-midnight window, e.g. 22:00 to 06:00.
		return minute >= w.Start || minute < w.End
	}
	return minute >= w.Start && minute < w.End
}

// Scheduler evaluates configured windows in order and falls back to the
// default window when none match.
type Scheduler struct {
	windows  []Window
	fallback Window
	location *time.Location

	current Window
}

// NewScheduler builds a scheduler from the schedule configuration. An
// unknown timezone name falls back to the system's local zone.
func NewScheduler(cfg config.ScheduleConfig) (*Scheduler, error) {
	loc := time.Local
	if cfg.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			logging.Warn("Scheduler", "Unknown timezone %q, using local time", cfg.Timezone)
			loc = time.Local
		}
	}

	fallback, err := newWindow(cfg.Default)
	if err != nil {
		return nil, fmt.Errorf("default window: %w", err)
	}

	s := &Scheduler{fallback: fallback, location: loc}
	for _, wc := range cfg.Windows {
		w, err := newWindow(wc)
		if err != nil {
			return nil, fmt.Errorf("window %q: %w", wc.Name, err)
		}
		s.windows = append(s.windows, w)
	}

	s.current = s.ActiveWindow(time.Now())
	return s, nil
}

// ActiveWindow returns the first configured window covering t, or the
// default window when none does. Earlier windows shadow later ones.
func (s *Scheduler) ActiveWindow(t time.Time) Window {
	local := t.In(s.location)
	for _, w := range s.windows {
		if w.Matches(local) {
			return w
		}
	}
	return s.fallback
}

// Current returns the window selected by the last CheckChange call.
func (s *Scheduler) Current() Window {
	return s.current
}

// CheckChange re-evaluates the schedule and returns the new window and
// true if the active window changed since the previous call. Detection
// is by value, so editing the config and reloading also counts as a
// change.
func (s *Scheduler) CheckChange(t time.Time) (Window, bool) {
	next := s.ActiveWindow(t)
	if windowEqual(next, s.current) {
		return next, false
	}
	logging.Info("Scheduler", "Schedule change: %q -> %q", s.current.Name, next.Name)
	s.current = next
	return next, true
}

func windowEqual(a, b Window) bool {
	if a.Name != b.Name || a.Folder != b.Folder || a.Transition != b.Transition || a.TransitionOffset != b.TransitionOffset {
		return false
	}
	if (a.Day == nil) != (b.Day == nil) {
		return false
	}
	if a.Day != nil && *a.Day != *b.Day {
		return false
	}
	return a.Start == b.Start && a.End == b.End && a.restricted == b.restricted
}
