package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pathways-2/Agent-Chatbot/internal/agent"
	"github.com/pathways-2/Agent-Chatbot/internal/config"
	"github.com/pathways-2/Agent-Chatbot/internal/guardrails"
	"github.com/pathways-2/Agent-Chatbot/internal/llm"
	"github.com/pathways-2/Agent-Chatbot/internal/memory"
)

var chatSessionID string

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the HR assistant from the terminal",
	Long: `Chat sends a message through the full pipeline (guardrails, tools,
memory, post-processing) without starting the HTTP server.

With a message argument it answers once and exits. Without arguments it
starts an interactive session; type "exit" to leave.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSessionID, "session", "cli", "session identifier for conversation memory")
	rootCmd.AddCommand(chatCmd)
}

func buildRunner(cfg *config.Config, store *memory.Store) (*agent.Runner, error) {
	engine, err := guardrails.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("guardrail engine: %w", err)
	}
	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return agent.NewRunner(agent.RunnerConfig{
		Guardrails: engine,
		Memory:     store,
		Provider:   llm.NewOpenAIProvider(cfg.OpenAIAPIKey),
		Registry:   registry,
		Model:      cfg.OpenAIModel,
	}), nil
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "chat")
	defer span.End()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("HRBOT_OPENAI_API_KEY is not set")
	}

	store := memory.NewStore(
		memory.WithMaxMessages(cfg.MaxMessages),
		memory.WithSessionTimeout(cfg.SessionTimeout),
		memory.WithContextStaleness(cfg.ContextStaleness),
	)
	runner, err := buildRunner(cfg, store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(args) > 0 {
		runTurn(ctx, runner, store, strings.Join(args, " "), out)
		return nil
	}

	fmt.Fprintln(out, "TechCorp HR Assistant. Type a question, or \"exit\" to leave.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		runTurn(ctx, runner, store, line, out)
	}
	return scanner.Err()
}

// runTurn executes one message and records refused exchanges as plain
// turns, matching the HTTP handler.
func runTurn(ctx context.Context, runner *agent.Runner, store *memory.Store, message string, out io.Writer) {
	result := runner.Run(ctx, &agent.RunRequest{SessionID: chatSessionID, Message: message})
	if result.Blocked() {
		store.Append(ctx, chatSessionID, memory.RoleUser, message, nil)
		store.Append(ctx, chatSessionID, memory.RoleAssistant, result.Response, nil)
	}
	printResult(out, result)
}

func printResult(out io.Writer, result *agent.Result) {
	fmt.Fprintln(out, result.Response)
	if len(result.Sources) > 0 {
		titles := make([]string, 0, len(result.Sources))
		for _, src := range result.Sources {
			if src.Title != "" {
				titles = append(titles, src.Title)
			} else {
				titles = append(titles, src.Type)
			}
		}
		fmt.Fprintf(out, "\nSources: %s\n", strings.Join(titles, ", "))
	}
}
