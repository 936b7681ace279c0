// Package filewatcher keeps the knowledge base in sync with the notes
// directory. Events are filtered to the loader's extensions so temp files
// and editor droppings never trigger a re-ingest.
package filewatcher

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/ports"
	"github.com/fsnotify/fsnotify"
)

// NoteWatcher implements ports.FileWatcher using fsnotify.
type NoteWatcher struct {
	watcher *fsnotify.Watcher
	exts    map[string]struct{} // empty means every file is watched
}

// New creates a watcher restricted to the given extensions, normally
// the loader's SupportedExtensions. An empty list watches all files.
func New(extensions []string) (*NoteWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &NoteWatcher{watcher: w, exts: exts}, nil
}

// Watch starts monitoring the directory and emits events until the context
// is canceled or the watcher is stopped.
func (w *NoteWatcher) Watch(ctx context.Context, dir string) (<-chan ports.FileEvent, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	events := make(chan ports.FileEvent, 100)
	go w.pump(ctx, events)
	return events, nil
}

func (w *NoteWatcher) pump(ctx context.Context, events chan<- ports.FileEvent) {
	defer close(events)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			op, relevant := w.classify(event)
			if !relevant {
				continue
			}
			select {
			case events <- ports.FileEvent{Path: event.Name, Operation: op}:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[WARN] file watcher: %v", err)
		}
	}
}

// classify maps an fsnotify event onto the port's operations. Renames count
// as deletions: the old path no longer backs any ingested document, and the
// new path arrives as its own Create event.
func (w *NoteWatcher) classify(event fsnotify.Event) (ports.FileOperation, bool) {
	if !w.watched(event.Name) {
		return 0, false
	}
	switch {
	case event.Op.Has(fsnotify.Create):
		return ports.FileCreated, true
	case event.Op.Has(fsnotify.Write):
		return ports.FileModified, true
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		return ports.FileDeleted, true
	}
	return 0, false
}

// Stop closes the watcher; the event channel drains and closes.
func (w *NoteWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *NoteWatcher) watched(path string) bool {
	if len(w.exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := w.exts[ext]
	return ok
}
