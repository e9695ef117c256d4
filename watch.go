package gremlin

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long a file must stay quiet before its change is
// reported. Editors often save in several writes; only the last one counts.
const watchDebounce = 100 * time.Millisecond

// DefinitionWatcher reports changes to definition files and sheet images in a
// set of directories. Paths arrive on Events; the consumer reloads them on the
// tick goroutine.
type DefinitionWatcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewDefinitionWatcher starts watching dirs.
func NewDefinitionWatcher(dirs ...string) (*DefinitionWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("gremlin: watch: %w", err)
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("gremlin: watch %s: %w", dir, err)
		}
	}

	watcher := &DefinitionWatcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher. Events and Errors are closed once the watch
// goroutine has exited.
func (w *DefinitionWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *DefinitionWatcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()
	// pending holds the time each changed path becomes quiet.
	pending := make(map[string]time.Time)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isDefinitionFile(event.Name) && !isSheetImage(event.Name) {
				continue
			}
			pending[event.Name] = time.Now().Add(watchDebounce)
			timer.Reset(watchDebounce)

		case now := <-timer.C:
			var ready []string
			var next time.Time
			for path, at := range pending {
				if !at.After(now) {
					ready = append(ready, path)
				} else if next.IsZero() || at.Before(next) {
					next = at
				}
			}
			sort.Strings(ready)
			for _, path := range ready {
				delete(pending, path)
				select {
				case w.Events <- path:
				case <-w.closeCh:
					return
				}
			}
			if !next.IsZero() {
				timer.Reset(time.Until(next))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".txt":
		return true
	}
	return false
}

func isSheetImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".gif", ".jpg", ".jpeg", ".bmp", ".webp":
		return true
	}
	return false
}

// Library keeps the definitions loaded from disk, keyed by their file, so a
// changed file can be reloaded and swapped into a scene.
type Library struct {
	defs map[string]*Definition
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{defs: make(map[string]*Definition)}
}

// Load loads the definition at path and records it.
func (l *Library) Load(path string) (*Definition, error) {
	def, err := LoadDefinition(path)
	if err != nil {
		return nil, err
	}
	l.defs[filepath.Clean(path)] = def
	return def, nil
}

// Get returns the definition loaded from path.
func (l *Library) Get(path string) (*Definition, bool) {
	def, ok := l.defs[filepath.Clean(path)]
	return def, ok
}

// Paths returns the recorded definition files, sorted.
func (l *Library) Paths() []string {
	out := make([]string, 0, len(l.defs))
	for p := range l.defs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// affected returns the recorded definition files a change to path can
// affect: the file itself, or for an image every definition at or above the
// image's directory.
func (l *Library) affected(path string) []string {
	path = filepath.Clean(path)
	if _, ok := l.defs[path]; ok {
		return []string{path}
	}
	if !isSheetImage(path) {
		return nil
	}
	dir := filepath.Dir(path)
	var out []string
	for _, p := range l.Paths() {
		base := filepath.Dir(p)
		if rel, err := filepath.Rel(base, dir); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			out = append(out, p)
		}
	}
	return out
}

// Reload reloads every definition affected by a change to path and points
// scene instances at the new versions. It returns the number of instances
// redefined. A definition that fails to load keeps its previous version and
// its error is returned.
func (l *Library) Reload(scene *Scene, path string) (int, error) {
	n := 0
	var firstErr error
	for _, p := range l.affected(path) {
		def, err := LoadDefinition(p)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		old := l.defs[p]
		l.defs[p] = def
		if scene != nil {
			n += scene.Redefine(old, def)
		}
	}
	return n, firstErr
}
