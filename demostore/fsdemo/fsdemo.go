// Package fsdemo serves few-shot demo sets from a single JSON file and hot
// reloads them when the file changes on disk. The file holds an object
// mapping set names to demo arrays:
//
//	{
//	  "default": [{"inputs": {...}, "outputs": {...}}],
//	  "hard-cases": [...]
//	}
//
// Reloads are debounced and announced on subscriber channels, so callers
// can re-pull demos without polling.
package fsdemo

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/promptsig/promptsig-go/demostore"
	"github.com/promptsig/promptsig-go/signature"
)

const defaultDebounce = 200 * time.Millisecond

// Source is a file-backed demo set source. Safe for concurrent use.
type Source struct {
	path     string
	debounce time.Duration

	mu   sync.RWMutex
	sets map[string]json.RawMessage

	subMu sync.Mutex
	subs  []chan struct{}

	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// Option configures a Source.
type Option func(*Source)

// WithDebounce sets the quiet period between a file event and the reload.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// Open loads the demo file and starts watching it. The containing
// directory is watched rather than the file itself so atomic
// rename-into-place saves are observed. When no watcher can be started the
// source still works, it just won't pick up changes.
func Open(path string, opts ...Option) (*Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("fsdemo: resolve path: %w", err)
	}

	s := &Source{
		path:     abs,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.reload(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Debug("fsdemo: fsnotify unavailable", slog.String("err", err.Error()))
		return s, nil
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		slog.Debug("fsdemo: watch dir failed", slog.String("err", err.Error()))
		_ = w.Close()
		return s, nil
	}
	s.watcher = w
	go s.watch()
	return s, nil
}

// Get returns the raw JSON demo array stored under name.
func (s *Source) Get(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.sets[name]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), raw...), true
}

// Names returns the available set names, sorted.
func (s *Source) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.sets))
	for name := range s.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subscribe returns a channel that receives a signal after each reload.
// The channel is buffered; a slow consumer coalesces signals rather than
// blocking the reloader.
func (s *Source) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

// Close stops the watcher.
func (s *Source) Close() error {
	s.once.Do(func() { close(s.done) })
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// Load decodes the demo set stored under name in src. A missing set yields
// (nil, nil).
func Load[I, O any](src *Source, name string) ([]signature.Demo[I, O], error) {
	raw, ok := src.Get(name)
	if !ok {
		return nil, nil
	}
	return demostore.Decode[I, O](raw)
}

func (s *Source) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("fsdemo: read %s: %w", s.path, err)
	}
	var sets map[string]json.RawMessage
	if err := json.Unmarshal(data, &sets); err != nil {
		return fmt.Errorf("fsdemo: parse %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.sets = sets
	s.mu.Unlock()
	return nil
}

func (s *Source) watch() {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	var fire <-chan time.Time
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Chmod) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := s.reload(); err != nil {
				// Keep the previous snapshot on a bad write; a later save
				// will trigger another reload.
				slog.Debug("fsdemo: reload failed", slog.String("err", err.Error()))
				continue
			}
			s.notify()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			slog.Debug("fsdemo: watch error", slog.String("err", err.Error()))
		}
	}
}

func (s *Source) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
