// Package watch delivers change events for tags files under a source
// root. It maintains one fsnotify watch per directory, following
// directories as they appear and disappear, and filters the raw event
// stream down to the files the index cares about.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"

	"tagfs/internal/logging"

	"github.com/fsnotify/fsnotify"
)

var watchLogger = logging.GetLogger().WithPrefix("watch")

// TagsFileName is the exact base name that marks a directory as tagged.
const TagsFileName = "tags"

// Op classifies a change to a tags file.
type Op int

const (
	// Added reports a tags file that did not exist before.
	Added Op = iota
	// Modified reports new content in an existing tags file.
	Modified
	// Removed reports a deleted tags file, or a deleted directory whose
	// subtree may have contained tags files.
	Removed
)

func (op Op) String() string {
	switch op {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Event names exactly one changed path.
type Event struct {
	Op   Op
	Path string
}

// Watcher watches a directory tree for tags-file changes. Events are
// delivered on the channel returned by Events until Close is called.
type Watcher struct {
	fsw    *fsnotify.Watcher
	events chan Event

	// Directories currently under watch. Only touched by the event loop
	// goroutine after Start, so no lock is needed.
	dirs map[string]bool
}

// New creates a watcher over root and starts delivering events. The
// initial tags-file inventory is the caller's job (the index bootstrap
// scan); the watcher only reports changes from this point on.
func New(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:    fsw,
		events: make(chan Event, 64),
		dirs:   make(map[string]bool),
	}
	if err := w.watchTree(root, nil); err != nil {
		fsw.Close()
		return nil, err
	}

	watchLogger.Info("Watching %d directories under %s", len(w.dirs), root)
	go w.loop()
	return w, nil
}

// Events returns the event channel. It is closed after Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops watching and closes the event channel.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	defer close(w.events)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			watchLogger.Warn("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	watchLogger.Trace("Raw event: %s", ev)

	switch {
	case ev.Op.Has(fsnotify.Create):
		info, err := os.Lstat(ev.Name)
		if err != nil {
			// Already gone again; the matching remove event follows.
			return
		}
		if info.IsDir() {
			// A directory moved or created under watch brings its tags
			// files with it rather than as separate file events.
			var found []string
			if err := w.watchTree(ev.Name, &found); err != nil {
				watchLogger.Warn("Failed to watch new directory %q: %v", ev.Name, err)
			}
			for _, path := range found {
				w.emit(Added, path)
			}
			return
		}
		if isTagsFile(ev.Name) {
			w.emit(Added, ev.Name)
		}

	case ev.Op.Has(fsnotify.Write):
		if isTagsFile(ev.Name) {
			w.emit(Modified, ev.Name)
		}

	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		if w.dirs[ev.Name] {
			// fsnotify drops the watch itself; the index prunes every
			// entry that lived under this directory.
			delete(w.dirs, ev.Name)
			w.emit(Removed, ev.Name)
			return
		}
		if isTagsFile(ev.Name) {
			w.emit(Removed, ev.Name)
		}
	}
}

// watchTree adds a watch for dir and every directory below it. When found
// is non-nil, tags files encountered along the way are appended to it.
func (w *Watcher) watchTree(dir string, found *[]string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			watchLogger.Warn("Skipping %q: %v", path, err)
			return nil
		}
		if d.IsDir() {
			if err := w.fsw.Add(path); err != nil {
				watchLogger.Warn("Cannot watch %q: %v", path, err)
				return nil
			}
			w.dirs[path] = true
			return nil
		}
		if found != nil && isTagsFile(path) {
			*found = append(*found, path)
		}
		return nil
	})
}

func (w *Watcher) emit(op Op, path string) {
	watchLogger.Debug("Event: %s %q", op, path)
	w.events <- Event{Op: op, Path: path}
}

// isTagsFile reports whether path names a tags file. The match is on the
// literal base name only; content is not inspected.
func isTagsFile(path string) bool {
	return filepath.Base(path) == TagsFileName
}
