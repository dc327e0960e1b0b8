package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"tagfs/internal/fs"
	"tagfs/internal/index"
	"tagfs/internal/logging"
	"tagfs/internal/watch"

	"golang.org/x/sync/errgroup"
)

var logger = logging.GetLogger()

func main() {
	// Parse command line flags
	mountPoint := flag.String("mount", "", "Mount point for the virtual filesystem")
	sourceRoot := flag.String("source", "", "Root directory scanned for tagged directories")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Parse()

	// Configure logging based on flags
	if *verbose {
		logger.SetLevel(logging.LevelDebug)
	}

	logger.Info("Starting tagfs...")
	logger.Debug("Mount point: %s", *mountPoint)
	logger.Debug("Source root: %s", *sourceRoot)

	if *mountPoint == "" || *sourceRoot == "" {
		logger.Error("Mount point and source root are required")
		os.Exit(1)
	}

	cleanMount := filepath.Clean(*mountPoint)
	cleanSource, err := filepath.Abs(*sourceRoot)
	if err != nil {
		logger.Error("Cannot resolve source root: %v", err)
		os.Exit(1)
	}

	logger.Info("Scanning %s for tags files...", cleanSource)
	ix := index.New(cleanSource)
	if err := ix.Bootstrap(); err != nil {
		logger.Error("Bootstrap scan failed: %v", err)
		os.Exit(1)
	}

	logger.Debug("Starting tags-file watcher...")
	watcher, err := watch.New(cleanSource)
	if err != nil {
		logger.Error("Failed to start watcher: %v", err)
		os.Exit(1)
	}

	logger.Info("Mounting filesystem...")
	tfs := fs.NewTagFS(ix)
	if err := tfs.Mount(cleanMount); err != nil {
		watcher.Close()
		logger.Error("Mount failed: %v", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		logger.Info("Serving filesystem...")
		err := tfs.Wait()
		logger.Debug("FUSE server stopped")
		return err
	})

	g.Go(func() error {
		for ev := range watcher.Events() {
			ix.Apply(ev)
		}
		logger.Debug("Watcher stopped")
		return nil
	})

	g.Go(func() error {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal %v", sig)
		case <-ctx.Done():
		}
		if err := watcher.Close(); err != nil {
			logger.Warn("Watcher close error: %v", err)
		}
		return tfs.Unmount(cleanMount)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Shutdown error: %v", err)
		os.Exit(1)
	}
	logger.Info("Clean shutdown complete")
}
