package services

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// DropFolderWatcher ingests PDF files placed into a watched directory.
// Files go through the same pipeline as uploads, duplicate guard
// included, and are removed once processed.
type DropFolderWatcher struct {
	ingest *IngestService
}

func NewDropFolderWatcher(ingest *IngestService) *DropFolderWatcher {
	return &DropFolderWatcher{ingest: ingest}
}

// Watch blocks until the context is cancelled, processing files as they
// appear. Errors on individual files are logged, never fatal.
func (w *DropFolderWatcher) Watch(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(strings.ToLower(event.Name), ".pdf") {
					continue
				}
				// Editors and download managers often fire Create then
				// Write for the same file; both mean "try to ingest".
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					w.handleDrop(ctx, event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching drop folder: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
		return
	}
	<-ctx.Done()
}

func (w *DropFolderWatcher) handleDrop(ctx context.Context, path string) {
	log.Printf("WATCHER: New file dropped: %s. Ingesting...", path)
	err := w.ingest.Ingest(ctx, path)
	switch {
	case errors.Is(err, ErrDuplicateSource):
		log.Printf("WATCHER: Skipping %s: already ingested.", path)
	case err != nil:
		log.Printf("WATCHER ERROR: Failed to ingest %s: %v", path, err)
		return
	}
	if err := os.Remove(path); err != nil {
		log.Printf("WATCHER WARN: Could not remove processed file %s: %v", path, err)
	}
}
