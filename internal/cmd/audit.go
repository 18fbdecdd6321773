package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pathways-2/Agent-Chatbot/internal/audit"
	"github.com/pathways-2/Agent-Chatbot/internal/config"
)

var (
	auditFrom  string
	auditTo    string
	auditLimit int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the guardrail violation audit trail",
	RunE:  auditList,
}

func init() {
	auditCmd.Flags().StringVar(&auditFrom, "from", "", "Start date (YYYY-MM-DD)")
	auditCmd.Flags().StringVar(&auditTo, "to", "", "End date (YYYY-MM-DD)")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "Maximum records to show")
	rootCmd.AddCommand(auditCmd)
}

func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", value)
	}
	return t, nil
}

func auditList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	store, err := audit.NewStore(cfg.AuditDBPath())
	if err != nil {
		return fmt.Errorf("initializing audit store: %w", err)
	}
	defer store.Close()

	from, err := parseDateFlag(auditFrom)
	if err != nil {
		return err
	}
	to, err := parseDateFlag(auditTo)
	if err != nil {
		return err
	}

	records, err := store.List(ctx, from, to, auditLimit)
	if err != nil {
		return fmt.Errorf("querying violations: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No guardrail violations recorded.")
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(out, "%s  %-20s %-8s %s\n",
			rec.Timestamp.Format(time.RFC3339), rec.Violation, rec.Severity, rec.Message)
	}

	total, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting violations: %w", err)
	}
	fmt.Fprintf(out, "\n%d shown, %d total\n", len(records), total)
	return nil
}
