package fs

import (
	"context"
	"syscall"

	"tagfs/internal/logging"
	"tagfs/internal/tree"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var dirLogger = logging.GetLogger().WithPrefix("dir")

// Dir is a virtual query directory: the root, an "and" level, a tag
// level, or any other branch of the published tree. It holds only its
// virtual path; every operation re-resolves against the current snapshot.
type Dir struct {
	fs   *TagFS
	path string
}

// Attr implements the Node interface, returning directory attributes.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	dirLogger.Trace("Getting attributes for directory: %q", d.path)

	node, err := resolve(d.fs.index.Snapshot(), d.path)
	if err != nil {
		dirLogger.Debug("Stale directory node: %q", d.path)
		return ToFuseError(err)
	}
	d.fs.attr(a, node)
	return nil
}

// Lookup implements the NodeStringLookuper interface, finding a child node.
func (d *Dir) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	childPath := joinPath(d.path, name)
	dirLogger.Debug("Looking up %q in directory %q", name, d.path)

	node, err := resolve(d.fs.index.Snapshot(), childPath)
	if err != nil {
		dirLogger.Debug("Path not found: %q", childPath)
		return nil, ToFuseError(err)
	}

	switch node.(type) {
	case tree.Branch:
		return &Dir{fs: d.fs, path: childPath}, nil
	case tree.Alias:
		return &Symlink{fs: d.fs, path: childPath}, nil
	}
	return nil, syscall.EIO
}

// ReadDirAll implements the HandleReadDirAller interface, listing directory contents.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	return readDir(d.fs, d.path)
}

// Open implements the NodeOpener interface. A directory open carries no
// backing descriptor; the internal handle only serves listings.
func (d *Dir) Open(_ context.Context, _ *fuse.OpenRequest, _ *fuse.OpenResponse) (fusefs.Handle, error) {
	dirLogger.Debug("Opening directory %q", d.path)
	if _, err := resolve(d.fs.index.Snapshot(), d.path); err != nil {
		return nil, ToFuseError(err)
	}
	return &InternalHandle{fs: d.fs, path: d.path}, nil
}

// readDir produces one entry per mapping in the branch at path. Entry
// order is whatever the map yields; the kernel sorts where it cares.
func readDir(tfs *TagFS, path string) ([]fuse.Dirent, error) {
	dirLogger.Debug("Reading directory contents: %q", path)

	node, err := resolve(tfs.index.Snapshot(), path)
	if err != nil {
		return nil, ToFuseError(err)
	}
	branch, ok := node.(tree.Branch)
	if !ok {
		dirLogger.Debug("Listing attempted on alias: %q", path)
		return nil, ToFuseError(NewError(OpReadDir, path, ErrNotDirectory))
	}

	entries := []fuse.Dirent{
		{Name: ".", Type: fuse.DT_Dir},
		{Name: "..", Type: fuse.DT_Dir},
	}
	for name, child := range branch {
		entryType := fuse.DT_Dir
		if _, ok := child.(tree.Alias); ok {
			entryType = fuse.DT_Link
		}
		entries = append(entries, fuse.Dirent{Name: name, Type: entryType})
	}

	dirLogger.Debug("Directory %q contains %d entries", path, len(entries))
	return entries, nil
}
