package fs

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"tagfs/internal/index"

	"bazil.org/fuse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestFS builds a TagFS over a real source tree:
//
//	root/photos/vacation/tags  -> trip, outdoor
//	root/notes/tags            -> trip
func newTestFS(t *testing.T) (*TagFS, string) {
	t.Helper()
	root := t.TempDir()

	vacation := filepath.Join(root, "photos", "vacation")
	require.NoError(t, os.MkdirAll(vacation, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(vacation, "tags"), []byte("trip\noutdoor\n"), 0o644))

	notes := filepath.Join(root, "notes")
	require.NoError(t, os.MkdirAll(notes, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(notes, "tags"), []byte("trip\n"), 0o644))

	ix := index.New(root)
	require.NoError(t, ix.Bootstrap())
	return NewTagFS(ix), root
}

func direntNames(entries []fuse.Dirent) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

func TestRootListing(t *testing.T) {
	tfs, _ := newTestFS(t)
	rootNode, err := tfs.Root()
	require.NoError(t, err)
	root := rootNode.(*Dir)

	entries, err := root.ReadDirAll(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".", "..", "and", "vacation", "notes"}, direntNames(entries))

	for _, e := range entries {
		switch e.Name {
		case "vacation", "notes":
			assert.Equal(t, fuse.DT_Link, e.Type, e.Name)
		default:
			assert.Equal(t, fuse.DT_Dir, e.Type, e.Name)
		}
	}
}

func TestLookupReturnsNodeKinds(t *testing.T) {
	tfs, root := newTestFS(t)
	rootNode, _ := tfs.Root()
	dir := rootNode.(*Dir)

	node, err := dir.Lookup(context.Background(), "and")
	require.NoError(t, err)
	require.IsType(t, &Dir{}, node)

	node, err = dir.Lookup(context.Background(), "vacation")
	require.NoError(t, err)
	link := node.(*Symlink)

	target, err := link.Readlink(context.Background(), &fuse.ReadlinkRequest{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "photos", "vacation"), target)

	_, err = dir.Lookup(context.Background(), "missing")
	assert.Equal(t, syscall.ENOENT, err)
}

func TestLookupDescendsCombinations(t *testing.T) {
	tfs, root := newTestFS(t)
	rootNode, _ := tfs.Root()
	dir := rootNode.(*Dir)

	// /and/trip lists both tagged directories plus the next query point.
	node, err := dir.Lookup(context.Background(), "and")
	require.NoError(t, err)
	node, err = node.(*Dir).Lookup(context.Background(), "trip")
	require.NoError(t, err)
	trip := node.(*Dir)

	entries, err := trip.ReadDirAll(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".", "..", "and", "vacation", "notes"}, direntNames(entries))

	// Descending past and/outdoor narrows to the vacation directory.
	node, err = trip.Lookup(context.Background(), "and")
	require.NoError(t, err)
	node, err = node.(*Dir).Lookup(context.Background(), "outdoor")
	require.NoError(t, err)
	entries, err = node.(*Dir).ReadDirAll(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".", "..", "vacation"}, direntNames(entries))

	node, err = node.(*Dir).Lookup(context.Background(), "vacation")
	require.NoError(t, err)
	target, err := node.(*Symlink).Readlink(context.Background(), &fuse.ReadlinkRequest{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "photos", "vacation"), target)
}

func TestDirAttr(t *testing.T) {
	tfs, _ := newTestFS(t)
	rootNode, _ := tfs.Root()
	dir := rootNode.(*Dir)

	var attr fuse.Attr
	require.NoError(t, dir.Attr(context.Background(), &attr))
	assert.Equal(t, os.ModeDir|0o555, attr.Mode)
	assert.Equal(t, uint32(1), attr.Nlink)
	assert.Equal(t, uint64(1), attr.Size)
	assert.Equal(t, tfs.uid, attr.Uid)
	assert.Equal(t, tfs.gid, attr.Gid)
	assert.True(t, attr.Mtime.IsZero())
}

func TestSymlinkAttr(t *testing.T) {
	tfs, _ := newTestFS(t)
	link := &Symlink{fs: tfs, path: "/vacation"}

	var attr fuse.Attr
	require.NoError(t, link.Attr(context.Background(), &attr))
	assert.Equal(t, os.ModeSymlink|0o555, attr.Mode)
	assert.Equal(t, uint32(1), attr.Nlink)
	assert.Equal(t, uint64(1), attr.Size)
}

func TestReadlinkOnBranchIsInvalid(t *testing.T) {
	tfs, _ := newTestFS(t)
	link := &Symlink{fs: tfs, path: "/and"}

	_, err := link.Readlink(context.Background(), &fuse.ReadlinkRequest{})
	assert.Equal(t, syscall.EINVAL, err)
}

func TestReadDirOnAliasIsNotDirectory(t *testing.T) {
	tfs, _ := newTestFS(t)

	_, err := readDir(tfs, "/vacation")
	assert.Equal(t, syscall.ENOTDIR, err)
}

func TestDirOpenReturnsInternalHandle(t *testing.T) {
	tfs, _ := newTestFS(t)
	rootNode, _ := tfs.Root()
	dir := rootNode.(*Dir)

	handle, err := dir.Open(context.Background(), &fuse.OpenRequest{}, &fuse.OpenResponse{})
	require.NoError(t, err)
	internal := handle.(*InternalHandle)

	entries, err := internal.ReadDirAll(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".", "..", "and", "vacation", "notes"}, direntNames(entries))
}

func TestSymlinkOpenPassesThrough(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "doc")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tags"), []byte("text\n"), 0o644))

	ix := index.New(root)
	require.NoError(t, ix.Bootstrap())
	tfs := NewTagFS(ix)

	link := &Symlink{fs: tfs, path: "/doc"}
	handle, err := link.Open(context.Background(), &fuse.OpenRequest{Flags: fuse.OpenReadOnly}, &fuse.OpenResponse{})
	require.NoError(t, err)
	external := handle.(*ExternalHandle)
	defer external.close()
}

func TestSymlinkOpenMissingTarget(t *testing.T) {
	tfs, root := newTestFS(t)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "photos")))

	link := &Symlink{fs: tfs, path: "/vacation"}
	_, err := link.Open(context.Background(), &fuse.OpenRequest{Flags: fuse.OpenReadOnly}, &fuse.OpenResponse{})
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err), "real filesystem error passes through: %v", err)
}

func TestStatfsConstantRecord(t *testing.T) {
	tfs, _ := newTestFS(t)

	var resp fuse.StatfsResponse
	require.NoError(t, tfs.Statfs(context.Background(), &fuse.StatfsRequest{}, &resp))
	assert.Equal(t, uint32(512), resp.Bsize)
	assert.Zero(t, resp.Blocks)
	assert.Zero(t, resp.Files)
}
