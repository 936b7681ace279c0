package cli

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Niso4ever/agentic-dispatch-go/internal/adapters/filewatcher"
	"github.com/Niso4ever/agentic-dispatch-go/internal/adapters/loader"
	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/ports"
	httpapi "github.com/Niso4ever/agentic-dispatch-go/internal/infrastructure/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dispatch API server",
	Long: `Starts the HTTP API. Knowledge notes are ingested from the configured
notes directory on startup and, when watching is enabled, re-ingested as
files change on disk.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	count, err := a.ingest.IngestDir(ctx, cfg.Retrieval.NotesDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("[WARN] notes dir %s does not exist, starting with an empty knowledge base", cfg.Retrieval.NotesDir)
		} else {
			return err
		}
	} else {
		log.Printf("[INFO] ingested %d knowledge notes from %s", count, cfg.Retrieval.NotesDir)
	}

	if cfg.Retrieval.Watch {
		watcher, err := filewatcher.New(a.noteExts)
		if err != nil {
			return err
		}
		defer watcher.Stop()

		events, err := watcher.Watch(ctx, cfg.Retrieval.NotesDir)
		if err != nil {
			log.Printf("[WARN] cannot watch %s: %v", cfg.Retrieval.NotesDir, err)
		} else {
			go reingestLoop(ctx, a, events)
		}
	}

	var weather httpapi.WeatherService
	if a.weather != nil {
		weather = a.weather
	}
	server := httpapi.NewServer(a.dispatch, weather, cfg.Server.Addr)
	return server.Start(ctx)
}

// reingestLoop keeps the knowledge base in sync with the notes directory.
func reingestLoop(ctx context.Context, a *app, events <-chan ports.FileEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Operation {
			case ports.FileDeleted:
				if err := a.ingest.Delete(ctx, loader.DocumentID(ev.Path)); err != nil {
					log.Printf("[ERROR] removing %s from knowledge base: %v", ev.Path, err)
				} else {
					log.Printf("[INFO] removed deleted note %s", ev.Path)
				}
			default:
				if err := a.ingest.IngestFile(ctx, ev.Path); err != nil {
					log.Printf("[ERROR] re-ingesting %s: %v", ev.Path, err)
				} else {
					log.Printf("[INFO] re-ingested %s", ev.Path)
				}
			}
		}
	}
}
