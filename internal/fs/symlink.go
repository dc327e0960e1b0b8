package fs

import (
	"context"
	"os"

	"tagfs/internal/logging"
	"tagfs/internal/tree"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var linkLogger = logging.GetLogger().WithPrefix("link")

// Symlink is the terminal node of a combination path: a virtual symbolic
// link named after a tagged directory, pointing at the real directory.
type Symlink struct {
	fs   *TagFS
	path string
}

// Attr implements the Node interface, returning symlink attributes.
func (s *Symlink) Attr(_ context.Context, a *fuse.Attr) error {
	linkLogger.Trace("Getting attributes for symlink: %q", s.path)

	node, err := resolve(s.fs.index.Snapshot(), s.path)
	if err != nil {
		linkLogger.Debug("Stale symlink node: %q", s.path)
		return ToFuseError(err)
	}
	s.fs.attr(a, node)
	return nil
}

// Readlink implements the NodeReadlinker interface, returning the alias
// target. A branch has no target and reports invalid argument.
func (s *Symlink) Readlink(_ context.Context, _ *fuse.ReadlinkRequest) (string, error) {
	node, err := resolve(s.fs.index.Snapshot(), s.path)
	if err != nil {
		return "", ToFuseError(err)
	}

	alias, ok := node.(tree.Alias)
	if !ok {
		linkLogger.Debug("Readlink on a branch: %q", s.path)
		return "", ToFuseError(NewError(OpReadlink, s.path, ErrInvalidArgument))
	}

	linkLogger.Debug("Readlink %q -> %q", s.path, string(alias))
	return string(alias), nil
}

// Open implements the NodeOpener interface. Opening an alias opens its
// target as a real descriptor; errors from the real filesystem pass
// through unchanged. Should the path resolve to a branch by the time the
// open arrives, the caller gets an internal handle like any directory.
func (s *Symlink) Open(_ context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	node, err := resolve(s.fs.index.Snapshot(), s.path)
	if err != nil {
		return nil, ToFuseError(err)
	}

	alias, ok := node.(tree.Alias)
	if !ok {
		return &InternalHandle{fs: s.fs, path: s.path}, nil
	}

	linkLogger.Debug("Opening alias target %q with flags %v", string(alias), req.Flags)
	file, err := os.OpenFile(string(alias), int(req.Flags), 0)
	if err != nil {
		linkLogger.Debug("Target open failed: %v", err)
		return nil, err
	}

	resp.Flags |= fuse.OpenDirectIO
	return &ExternalHandle{file: file, path: s.path}, nil
}
