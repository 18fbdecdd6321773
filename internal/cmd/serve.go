package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pathways-2/Agent-Chatbot/internal/agent"
	"github.com/pathways-2/Agent-Chatbot/internal/audit"
	"github.com/pathways-2/Agent-Chatbot/internal/config"
	"github.com/pathways-2/Agent-Chatbot/internal/guardrails"
	"github.com/pathways-2/Agent-Chatbot/internal/llm"
	"github.com/pathways-2/Agent-Chatbot/internal/memory"
	"github.com/pathways-2/Agent-Chatbot/internal/server"
	"github.com/pathways-2/Agent-Chatbot/internal/tools"
	"github.com/pathways-2/Agent-Chatbot/internal/tools/calc"
	"github.com/pathways-2/Agent-Chatbot/internal/tools/employee"
	"github.com/pathways-2/Agent-Chatbot/internal/tools/policysearch"
	"github.com/pathways-2/Agent-Chatbot/web"
)

var (
	servePort     int
	serveChatPage bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HR assistant HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP server port (default from config)")
	serveCmd.Flags().BoolVar(&serveChatPage, "chat-page", true, "Serve the embedded chat UI at /")
	rootCmd.AddCommand(serveCmd)
}

func buildDirectory(cfg *config.Config) (*employee.Directory, error) {
	if cfg.EmployeeData == "" {
		return employee.NewDirectory()
	}
	data, err := os.ReadFile(cfg.EmployeeData)
	if err != nil {
		return nil, fmt.Errorf("reading employee data: %w", err)
	}
	return employee.NewDirectoryFromCSV(data)
}

func buildRegistry(cfg *config.Config) (*tools.Registry, error) {
	dir, err := buildDirectory(cfg)
	if err != nil {
		return nil, err
	}
	corpus, err := policysearch.NewCorpus()
	if err != nil {
		return nil, fmt.Errorf("loading policy corpus: %w", err)
	}

	var policyOpts []policysearch.Option
	if cfg.VectorConfigured() {
		policyOpts = append(policyOpts, policysearch.WithVectorClient(
			policysearch.NewVectorClient(cfg.VectorEndpoint, cfg.VectorAPIKey, cfg.VectorIndex)))
	}

	registry := tools.NewRegistry()
	registry.Register(employee.NewLookupTool(dir))
	registry.Register(calc.NewTool())
	registry.Register(policysearch.NewTool(corpus, policyOpts...))
	return registry, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	auditStore, err := audit.NewStore(cfg.AuditDBPath())
	if err != nil {
		return fmt.Errorf("initializing audit store: %w", err)
	}
	defer auditStore.Close()

	engine, err := guardrails.NewEngine(guardrails.WithAuditor(auditStore))
	if err != nil {
		return fmt.Errorf("guardrail engine: %w", err)
	}

	memStore := memory.NewStore(
		memory.WithMaxMessages(cfg.MaxMessages),
		memory.WithSessionTimeout(cfg.SessionTimeout),
		memory.WithContextStaleness(cfg.ContextStaleness),
	)
	sweeper, err := memory.NewSweeper(memStore, cfg.SweepInterval)
	if err != nil {
		return fmt.Errorf("session sweeper: %w", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	if cfg.OpenAIAPIKey == "" {
		log.Warn().Msg("HRBOT_OPENAI_API_KEY not set — chat requests will fail until it is configured")
	}
	provider := llm.NewOpenAIProvider(cfg.OpenAIAPIKey)

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	runner := agent.NewRunner(agent.RunnerConfig{
		Guardrails: engine,
		Memory:     memStore,
		Provider:   provider,
		Registry:   registry,
		Model:      cfg.OpenAIModel,
	})

	opts := []server.Option{
		server.WithCORSOrigins([]string{cfg.FrontendOrigin}),
		server.WithComponentStatus(cfg.OpenAIAPIKey != "", cfg.VectorConfigured()),
	}
	if serveChatPage {
		opts = append(opts, server.WithChatPage(web.ChatHTML))
	}

	srv := server.NewServer(runner, memStore, opts...)

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().
		Str("addr", addr).
		Str("model", cfg.OpenAIModel).
		Bool("vector_search", cfg.VectorConfigured()).
		Bool("chat_page", serveChatPage).
		Msg("hrbot_serve_started")

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown_signal_received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server_stopped")
	return nil
}
