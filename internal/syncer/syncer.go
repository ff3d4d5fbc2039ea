// Package syncer watches the local dataset files and turns what it sees into
// refresh signals for the update coordinator.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"

	"github.com/TomasB/geodb/internal/geo"
)

const (
	defaultInterval = time.Hour
	defaultDebounce = 5 * time.Second
)

type Config struct {
	Logger *slog.Logger
	Clock  clockwork.Clock
	Paths  []string

	// Watch enables fsnotify change events on top of the periodic check.
	Watch bool

	// Optional with defaults.
	Interval time.Duration
	Debounce time.Duration
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if len(c.Paths) == 0 {
		return errors.New("at least one path is required")
	}
	for _, p := range c.Paths {
		if p == "" {
			return errors.New("paths must not be empty")
		}
	}

	if c.Interval == 0 {
		c.Interval = defaultInterval
	}
	if c.Interval <= 0 {
		return errors.New("interval must be > 0")
	}

	if c.Debounce == 0 {
		c.Debounce = defaultDebounce
	}
	if c.Debounce <= 0 {
		return errors.New("debounce must be > 0")
	}

	return nil
}

// Syncer emits one signal at start, then:
//   - changed once the watched files settle after a write, create, rename or
//     remove event
//   - changed or unchanged on every interval, by comparing file size and
//     modification time
//   - error when a file cannot be stat'ed or the watcher fails
type Syncer struct {
	cfg   Config
	log   *slog.Logger
	paths map[string]struct{}
}

func New(cfg Config) (*Syncer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	paths := make(map[string]struct{}, len(cfg.Paths))
	for _, p := range cfg.Paths {
		paths[filepath.Clean(p)] = struct{}{}
	}

	return &Syncer{
		cfg:   cfg,
		log:   cfg.Logger.With("component", "syncer"),
		paths: paths,
	}, nil
}

// Run sends signals to out until ctx is done.  Run never closes out.
func (s *Syncer) Run(ctx context.Context, out chan<- geo.RefreshSignal) error {
	last, err := s.fingerprint()
	initial := geo.Changed()
	if err != nil {
		initial = geo.Failed(err)
	}
	if !send(ctx, out, initial) {
		return nil
	}

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if s.cfg.Watch {
		w, err := s.watch()
		if err != nil {
			s.log.Error("syncer: failed to start watcher, relying on periodic checks", "error", err)
			if !send(ctx, out, geo.Failed(err)) {
				return nil
			}
		} else {
			defer w.Close()
			events, errs = w.Events, w.Errors
		}
	}

	ticker := s.cfg.Clock.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	var (
		debounce  clockwork.Timer
		debounceC <-chan time.Time
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		var sig geo.RefreshSignal

		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !s.relevant(ev) {
				continue
			}
			s.log.Debug("syncer: file event", "path", ev.Name, "op", ev.Op.String())
			if debounce == nil {
				debounce = s.cfg.Clock.NewTimer(s.cfg.Debounce)
			} else {
				debounce.Reset(s.cfg.Debounce)
			}
			debounceC = debounce.Chan()
			continue

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			sig = geo.Failed(fmt.Errorf("watcher: %w", err))

		case <-debounceC:
			debounceC = nil
			fp, err := s.fingerprint()
			if err != nil {
				sig = geo.Failed(err)
				break
			}
			last = fp
			sig = geo.Changed()

		case <-ticker.Chan():
			fp, err := s.fingerprint()
			switch {
			case err != nil:
				sig = geo.Failed(err)
			case !fp.equal(last):
				last = fp
				sig = geo.Changed()
			default:
				sig = geo.Unchanged()
			}
		}

		if !send(ctx, out, sig) {
			return nil
		}
	}
}

func (s *Syncer) watch() (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	dirs := make(map[string]struct{})
	for p := range s.paths {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	return w, nil
}

func (s *Syncer) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	_, ok := s.paths[filepath.Clean(ev.Name)]
	return ok
}

type fileState struct {
	size    int64
	modTime time.Time
}

type fingerprint map[string]fileState

func (s *Syncer) fingerprint() (fingerprint, error) {
	fp := make(fingerprint, len(s.paths))
	for p := range s.paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat dataset file: %w", err)
		}
		fp[p] = fileState{size: fi.Size(), modTime: fi.ModTime()}
	}
	return fp, nil
}

func (fp fingerprint) equal(other fingerprint) bool {
	if len(fp) != len(other) {
		return false
	}
	for p, st := range fp {
		o, ok := other[p]
		if !ok || o.size != st.size || !o.modTime.Equal(st.modTime) {
			return false
		}
	}
	return true
}

func send(ctx context.Context, out chan<- geo.RefreshSignal, sig geo.RefreshSignal) bool {
	select {
	case out <- sig:
		return true
	case <-ctx.Done():
		return false
	}
}
