package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adiwijaya/mitra/internal/devcontext"
	"github.com/adiwijaya/mitra/pkg/agent"
)

var (
	chatTemplate    string
	chatSession     string
	chatStream      bool
	chatProjectName string
	chatProjectDesc string
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a message to the assistant",
	Long: `Send a single message to the assistant and print the response.
Conversation history is kept per session for the lifetime of the process;
use --session to address a named conversation.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatTemplate, "template", "t", "", "prompt template (general_assistant, code_reviewer, architect)")
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "session identifier (default derives from timestamp)")
	chatCmd.Flags().BoolVar(&chatStream, "stream", false, "stream the response as it arrives")
	chatCmd.Flags().StringVar(&chatProjectName, "project", "", "project name for prompt context")
	chatCmd.Flags().StringVar(&chatProjectDesc, "project-description", "", "project description for prompt context")

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID := chatSession
	if sessionID == "" {
		sessionID = fmt.Sprintf("chat_%s", time.Now().Format("20060102_150405"))
	}

	params := agent.Params{
		Message:   args[0],
		SessionID: sessionID,
		Template:  chatTemplate,
		Project:   chatProject(cmd),
	}

	if chatStream {
		result, err := a.executor.ExecuteStream(cmd.Context(), params, func(delta string) {
			fmt.Fprint(os.Stdout, delta)
		})
		if err != nil {
			return err
		}
		fmt.Println()
		a.printUsage(result)
		return nil
	}

	result, err := a.executor.Execute(cmd.Context(), params)
	if err != nil {
		return err
	}

	fmt.Println(result.Response)
	a.printUsage(result)
	return nil
}

// chatProject builds the project context from flags, falling back to the
// development context of the working directory
func chatProject(cmd *cobra.Command) *agent.ProjectContext {
	if chatProjectName != "" {
		return &agent.ProjectContext{
			Name:        chatProjectName,
			Description: chatProjectDesc,
		}
	}

	dc := devcontext.Analyze(cmd.Context(), ".", zerolog.Nop())
	return &agent.ProjectContext{
		Name:        filepath.Base(dc.Root),
		Description: dc.Summary(),
	}
}

func (a *app) printUsage(result *agent.Result) {
	cost := float64(result.Usage.InputTokens)/1000*a.cfg.Pricing.InputPer1K +
		float64(result.Usage.OutputTokens)/1000*a.cfg.Pricing.OutputPer1K

	fmt.Printf("\n[%s] tokens: %d in / %d out, cost: $%.4f, elapsed: %s\n",
		result.SessionID,
		result.Usage.InputTokens,
		result.Usage.OutputTokens,
		cost,
		result.Elapsed.Round(time.Millisecond))
}
