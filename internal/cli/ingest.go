package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var ingestReset bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Ingest knowledge notes into the vector store",
	Long: `Loads the given note files or directories, chunks and embeds their
content and stores the chunks for retrieval. Re-ingesting a file replaces
its previous chunks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestReset, "reset", false, "clear the vector store before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if ingestReset {
		if err := a.ingest.Reset(ctx); err != nil {
			return err
		}
	}
	total := 0
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			count, err := a.ingest.IngestDir(ctx, path)
			if err != nil {
				return err
			}
			total += count
			continue
		}
		if err := a.ingest.IngestFile(ctx, path); err != nil {
			return err
		}
		total++
	}

	fmt.Printf("Ingested %d document(s)\n", total)
	return nil
}
