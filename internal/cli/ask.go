package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/entities"
)

var askSoC float64

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Answer one operator query and exit",
	Long: `Runs the full pipeline for a single query against the already ingested
knowledge base and prints the grounded recommendation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Float64Var(&askSoC, "soc", -1, "override the battery state of charge (0..1)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	req := &entities.DispatchRequest{Query: strings.Join(args, " ")}
	if askSoC >= 0 {
		plant := a.dispatch.DefaultPlant()
		plant.SoC = askSoC
		req.PlantMeta = &plant
	}

	resp, err := a.dispatch.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	fmt.Println(resp.Answer)
	return nil
}
