package fs

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"tagfs/internal/index"
	"tagfs/internal/logging"
	"tagfs/internal/tree"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var vfsLogger = logging.GetLogger().WithPrefix("vfs")

// TagFS serves the published tag tree over FUSE. Every callback resolves
// its virtual path against the current snapshot, so in-flight requests
// see one consistent tree for their own duration while republishes land
// between requests.
type TagFS struct {
	index  *index.Index
	conn   *fuse.Conn
	served chan error
	uid    uint32 // Owner for synthesized attributes
	gid    uint32 // Group for synthesized attributes
}

// NewTagFS creates the FUSE adapter over an index. The uid/gid used for
// every synthesized attribute record are captured here, once.
func NewTagFS(ix *index.Index) *TagFS {
	uid := safeIntToUint32(os.Getuid())
	gid := safeIntToUint32(os.Getgid())

	if puidStr := os.Getenv("PUID"); puidStr != "" {
		if puid, err := strconv.ParseUint(puidStr, 10, 32); err == nil {
			uid = uint32(puid)
			vfsLogger.Debug("Using PUID from environment: %d", uid)
		}
	}
	if pgidStr := os.Getenv("PGID"); pgidStr != "" {
		if pgid, err := strconv.ParseUint(pgidStr, 10, 32); err == nil {
			gid = uint32(pgid)
			vfsLogger.Debug("Using PGID from environment: %d", gid)
		}
	}

	return &TagFS{
		index: ix,
		uid:   uid,
		gid:   gid,
	}
}

// Root implements the fusefs.FS interface, returning the root directory node.
func (tfs *TagFS) Root() (fusefs.Node, error) {
	vfsLogger.Trace("Getting root directory node")
	return &Dir{fs: tfs, path: "/"}, nil
}

// Statfs implements the FSStatfser interface. The virtual hierarchy has
// no real usage to report, so the record is constant.
func (tfs *TagFS) Statfs(_ context.Context, _ *fuse.StatfsRequest, resp *fuse.StatfsResponse) error {
	vfsLogger.Trace("Statfs")
	resp.Bsize = 512
	resp.Frsize = 512
	resp.Namelen = 255
	return nil
}

// attr fills the fixed attribute record shared by every virtual node:
// read+execute for everyone, link count 1, size 1, zero timestamps,
// ownership captured at startup.
func (tfs *TagFS) attr(a *fuse.Attr, node tree.Node) {
	a.Nlink = 1
	a.Size = 1
	a.Uid = tfs.uid
	a.Gid = tfs.gid
	switch node.(type) {
	case tree.Branch:
		a.Mode = os.ModeDir | 0o555
	case tree.Alias:
		a.Mode = os.ModeSymlink | 0o555
	}
}

func waitForMount(mountPoint string) error {
	for i := 0; i < 30; i++ {
		info, err := os.Stat(mountPoint)
		if err == nil && info.IsDir() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("mount point not available after 3 seconds")
}

// Mount mounts the filesystem and starts serving in the background. It
// returns once the mount point answers stat, or fails and cleans up.
func (tfs *TagFS) Mount(mountPoint string) error {
	vfsLogger.Info("Mounting virtual filesystem at %s", mountPoint)
	vfsLogger.Debug("UID: %d, GID: %d", tfs.uid, tfs.gid)

	mountOpts := []fuse.MountOption{
		fuse.FSName("tagfs"),
		fuse.Subtype("tagfs"),
		fuse.AllowOther(),
		fuse.DefaultPermissions(),
		fuse.AsyncRead(),
		fuse.AllowNonEmptyMount(),
	}

	c, err := fuse.Mount(mountPoint, mountOpts...)
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	tfs.conn = c
	tfs.served = make(chan error, 1)

	go func() {
		tfs.served <- fusefs.Serve(c, tfs)
	}()

	if err := waitForMount(mountPoint); err != nil {
		c.Close()
		vfsLogger.Error("Mount point not ready: %v", err)
		return fmt.Errorf("mount point failed to initialize: %w", err)
	}

	vfsLogger.Info("Filesystem mounted successfully")
	return nil
}

// Wait blocks until the FUSE server stops, returning its error.
func (tfs *TagFS) Wait() error {
	if tfs.served == nil {
		return fmt.Errorf("filesystem is not mounted")
	}
	return <-tfs.served
}

// Unmount cleanly unmounts the filesystem.
func (tfs *TagFS) Unmount(mountPoint string) error {
	vfsLogger.Info("Unmounting filesystem from: %s", mountPoint)
	if tfs.conn == nil {
		return nil
	}
	if err := fuse.Unmount(mountPoint); err != nil {
		vfsLogger.Error("Unmount failed: %v", err)
		return err
	}
	vfsLogger.Info("Unmount completed successfully")
	return tfs.conn.Close()
}
