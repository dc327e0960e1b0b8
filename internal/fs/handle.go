package fs

import (
	"context"
	"io"
	"os"
	"sync"
	"syscall"

	"tagfs/internal/logging"

	"bazil.org/fuse"
)

var handleLogger = logging.GetLogger().WithPrefix("handle")

// ExternalHandle wraps a real file descriptor opened against an alias
// target. Reads and writes forward verbatim as positioned I/O; flush and
// release close the descriptor best-effort.
type ExternalHandle struct {
	mu   sync.Mutex
	file *os.File
	path string // Virtual path, for logging
}

// Read implements the HandleReader interface, forwarding a positioned read.
func (h *ExternalHandle) Read(_ context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return syscall.EBADF
	}

	handleLogger.Trace("Reading %d bytes from %q at offset %d", req.Size, h.path, req.Offset)
	buf := make([]byte, req.Size)
	n, err := h.file.ReadAt(buf, req.Offset)
	if err != nil && err != io.EOF {
		handleLogger.Debug("Read failed on %q: %v", h.path, err)
		return err
	}
	resp.Data = buf[:n]
	return nil
}

// Write implements the HandleWriter interface, forwarding a positioned write.
func (h *ExternalHandle) Write(_ context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return syscall.EBADF
	}

	handleLogger.Trace("Writing %d bytes to %q at offset %d", len(req.Data), h.path, req.Offset)
	n, err := h.file.WriteAt(req.Data, req.Offset)
	resp.Size = n
	if err != nil {
		handleLogger.Debug("Write failed on %q: %v", h.path, err)
		return err
	}
	return nil
}

// Flush implements the HandleFlusher interface. The descriptor is closed
// here; a close failure is suppressed because real I/O errors have
// already surfaced from read or write.
func (h *ExternalHandle) Flush(_ context.Context, _ *fuse.FlushRequest) error {
	h.close()
	return nil
}

// Release implements the HandleReleaser interface.
func (h *ExternalHandle) Release(_ context.Context, _ *fuse.ReleaseRequest) error {
	h.close()
	return nil
}

func (h *ExternalHandle) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return
	}
	handleLogger.Debug("Closing handle for %q", h.path)
	if err := h.file.Close(); err != nil {
		handleLogger.Debug("Close failed on %q: %v", h.path, err)
	}
	h.file = nil
}

// InternalHandle marks a directory-like open with no backing descriptor.
// It serves listings and rejects file I/O.
type InternalHandle struct {
	fs   *TagFS
	path string
}

// ReadDirAll implements the HandleReadDirAller interface.
func (h *InternalHandle) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	return readDir(h.fs, h.path)
}

// Read implements the HandleReader interface; internal handles have
// nothing to read from.
func (h *InternalHandle) Read(_ context.Context, _ *fuse.ReadRequest, _ *fuse.ReadResponse) error {
	return ToFuseError(NewError(OpRead, h.path, ErrNotSupported))
}

// Write implements the HandleWriter interface; internal handles have
// nothing to write to.
func (h *InternalHandle) Write(_ context.Context, _ *fuse.WriteRequest, _ *fuse.WriteResponse) error {
	return ToFuseError(NewError(OpWrite, h.path, ErrNotSupported))
}

// Flush implements the HandleFlusher interface as a no-op.
func (h *InternalHandle) Flush(_ context.Context, _ *fuse.FlushRequest) error {
	return nil
}

// Release implements the HandleReleaser interface as a no-op.
func (h *InternalHandle) Release(_ context.Context, _ *fuse.ReleaseRequest) error {
	return nil
}
