// internal/fs/interfaces.go

package fs

import (
	fusefs "bazil.org/fuse/fs"
)

// Directory is the callback set a virtual query directory satisfies.
type Directory interface {
	fusefs.Node
	fusefs.NodeStringLookuper
	fusefs.NodeOpener
	fusefs.HandleReadDirAller
}

// Link is the callback set a virtual symlink satisfies.
type Link interface {
	fusefs.Node
	fusefs.NodeReadlinker
	fusefs.NodeOpener
}

// Handle is the per-open contract shared by external and internal handles.
type Handle interface {
	fusefs.Handle
	fusefs.HandleReader
	fusefs.HandleWriter
	fusefs.HandleFlusher
	fusefs.HandleReleaser
}

var (
	_ fusefs.FS         = (*TagFS)(nil)
	_ fusefs.FSStatfser = (*TagFS)(nil)
	_ Directory         = (*Dir)(nil)
	_ Link              = (*Symlink)(nil)
	_ Handle            = (*ExternalHandle)(nil)
	_ Handle            = (*InternalHandle)(nil)
)
