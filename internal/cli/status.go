package cli

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adiwijaya/mitra/internal/config"
	"github.com/adiwijaya/mitra/internal/devcontext"
	"github.com/adiwijaya/mitra/pkg/memory"
	"github.com/adiwijaya/mitra/pkg/template"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and memory status",
	Long: `Show the effective configuration, available prompt templates, stored
learnings, and the development context of the current directory.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Printf("Config: %s\n", config.NewLoader(cfgFile).GetConfigPath())
	fmt.Printf("Model: %s\n", cfg.ResolveModel(""))
	fmt.Printf("Profiles: %d\n", len(cfg.AI.Profiles))

	registry, _ := template.NewRegistry(template.Config{
		Path:   cfg.Templates.Path,
		Logger: zerolog.Nop(),
	})
	fmt.Printf("Templates: %s\n", strings.Join(registry.Names(), ", "))

	store, err := memory.NewStore(memory.Config{
		Path:   cfg.Memory.Path,
		Logger: zerolog.Nop(),
	})
	if err == nil {
		learnings := store.RecentLearnings(maxLearningsShown)
		fmt.Printf("Memory: %s\n", store.Path())
		fmt.Printf("Recent learnings: %d\n", len(learnings))
		for _, l := range learnings {
			fmt.Printf("  - [%s] %s\n", l.Timestamp.Format("2006-01-02"), l.Learning)
		}
	}

	dc := devcontext.Analyze(cmd.Context(), ".", zerolog.Nop())
	fmt.Printf("\n%s\n", dc.Summary())

	return nil
}

const maxLearningsShown = 5
