// Package index maintains the process-wide tag index: one subtree per
// known tags file, keyed by the file's canonical absolute path, folded
// into the published virtual tree the resolver reads.
//
// Lifecycle: constructed once at startup, seeded by Bootstrap before the
// filesystem serves, mutated only through Apply under a single writer
// lock, published by an atomic reference swap, torn down at process exit.
package index

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"tagfs/internal/logging"
	"tagfs/internal/tree"
	"tagfs/internal/watch"
)

var indexLogger = logging.GetLogger().WithPrefix("index")

// Index is the mutable tag index plus its published merged tree.
type Index struct {
	root string

	mu      sync.Mutex // serializes all writers
	entries map[string]tree.Branch

	published atomic.Value // tree.Branch
}

// New creates an empty index over the given source root. The published
// tree starts empty; call Bootstrap before serving.
func New(root string) *Index {
	ix := &Index{
		root:    root,
		entries: make(map[string]tree.Branch),
	}
	ix.published.Store(tree.Branch{})
	return ix
}

// Snapshot returns the published tree. The result is an immutable
// snapshot: it is never mutated after publication, so callers may read it
// freely for the duration of one request.
func (ix *Index) Snapshot() tree.Branch {
	return ix.published.Load().(tree.Branch)
}

// Len returns the number of tags files currently indexed.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.entries)
}

// Bootstrap discovers every tags file under the source root, builds an
// entry for each, and publishes the initial tree. Unreadable directories
// and files are skipped with a warning; only a failure to walk the root
// itself is fatal.
func (ix *Index) Bootstrap() error {
	var found []string
	err := filepath.WalkDir(ix.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == ix.root {
				return err
			}
			indexLogger.Warn("Skipping %q during scan: %v", path, err)
			return nil
		}
		if !d.IsDir() && d.Name() == watch.TagsFileName {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, path := range found {
		key, branch, err := load(path)
		if err != nil {
			indexLogger.Warn("Skipping %q: %v", path, err)
			continue
		}
		ix.entries[key] = branch
	}
	ix.republishLocked()

	indexLogger.Info("Bootstrap complete: %d tags files indexed", len(ix.entries))
	return nil
}

// Apply consumes one change event, rebuilds the affected entry, and
// republishes the merged tree. Events arrive serially from the watch
// loop; concurrent resolver reads keep their snapshot.
func (ix *Index) Apply(ev watch.Event) {
	indexLogger.Debug("Applying event: %s %q", ev.Op, ev.Path)
	switch ev.Op {
	case watch.Added, watch.Modified:
		ix.update(ev.Path)
	case watch.Removed:
		ix.remove(ev.Path)
	}
}

// update rebuilds one entry from the file's current content. A read
// failure keeps the previous entry: the published hierarchy stays at the
// last good observation rather than losing paths to a transient error.
func (ix *Index) update(path string) {
	key, branch, err := load(path)
	if err != nil {
		indexLogger.Warn("Keeping previous entry for %q: %v", path, err)
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries[key] = branch
	ix.republishLocked()
}

// remove deletes the entry for path, and any entries below it when path
// was a directory. Removing an unknown path is a no-op.
func (ix *Index) remove(path string) {
	key, err := canonical(path)
	if err != nil {
		indexLogger.Warn("Cannot canonicalize %q: %v", path, err)
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	removed := 0
	prefix := key + string(filepath.Separator)
	for entry := range ix.entries {
		if entry == key || strings.HasPrefix(entry, prefix) {
			delete(ix.entries, entry)
			removed++
		}
	}
	if removed == 0 {
		return
	}

	indexLogger.Debug("Removed %d entries at %q", removed, key)
	ix.republishLocked()
}

// republishLocked refolds every entry into a fresh tree and swaps it in.
// The fold runs over sorted keys so an alias collision resolves the same
// way on every republish. Callers must hold ix.mu.
func (ix *Index) republishLocked() {
	keys := make([]string, 0, len(ix.entries))
	for key := range ix.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	merged := tree.Branch{}
	for _, key := range keys {
		merged = tree.Merge(merged, ix.entries[key]).(tree.Branch)
	}
	ix.published.Store(merged)
}

// load reads one tags file and builds its subtree. The returned key is
// the canonical absolute path of the file; the alias target is its owning
// directory.
func load(path string) (string, tree.Branch, error) {
	key, err := canonical(path)
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(key)
	if err != nil {
		return "", nil, err
	}

	tags := parseTags(data)
	dir := filepath.Dir(key)
	return key, tree.Build(dir, tree.Combinations(tags)), nil
}

// canonical converts an event path to the absolute, cleaned form used as
// the map key.
func canonical(path string) (string, error) {
	return filepath.Abs(path)
}
