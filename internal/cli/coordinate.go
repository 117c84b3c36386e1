package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adiwijaya/mitra/pkg/agent"
)

var (
	coordinateAgents      string
	coordinateSession     string
	coordinateProjectName string
	coordinateProjectDesc string
)

var coordinateCmd = &cobra.Command{
	Use:   "coordinate [task]",
	Short: "Run multiple agents on a task",
	Long: `Run a task through a chain of specialized agents. Agents run in the
requested order and each later agent sees a summary of the earlier work.
Known agents: architect, reviewer, code_reviewer, assistant.`,
	Args: cobra.ExactArgs(1),
	RunE: runCoordinate,
}

func init() {
	coordinateCmd.Flags().StringVarP(&coordinateAgents, "agents", "a", "architect,reviewer", "comma-separated agent list")
	coordinateCmd.Flags().StringVarP(&coordinateSession, "session", "s", "", "base session identifier")
	coordinateCmd.Flags().StringVar(&coordinateProjectName, "project", "", "project name for prompt context")
	coordinateCmd.Flags().StringVar(&coordinateProjectDesc, "project-description", "", "project description for prompt context")

	rootCmd.AddCommand(coordinateCmd)
}

func runCoordinate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID := coordinateSession
	if sessionID == "" {
		sessionID = fmt.Sprintf("coordinate_%s", time.Now().Format("20060102_150405"))
	}

	agentNames := []string{}
	for _, name := range strings.Split(coordinateAgents, ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			agentNames = append(agentNames, trimmed)
		}
	}
	if len(agentNames) == 0 {
		return fmt.Errorf("no agents specified")
	}

	var project *agent.ProjectContext
	if coordinateProjectName != "" {
		project = &agent.ProjectContext{
			Name:        coordinateProjectName,
			Description: coordinateProjectDesc,
		}
	}

	runs, err := a.coordinator.Coordinate(cmd.Context(), args[0], sessionID, agentNames, project)

	// Completed runs are printed even when a later agent failed
	for _, run := range runs {
		fmt.Printf("\n=== %s ===\n", strings.ToUpper(run.Agent))
		fmt.Println(run.Result.Response)
	}

	if err != nil {
		return err
	}

	fmt.Printf("\nCompleted %d agent(s) in session %s\n", len(runs), sessionID)
	return nil
}
