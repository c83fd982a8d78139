package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/advisor-sim/internal/backend"
	"github.com/danielpatrickdp/advisor-sim/internal/config"
)

// probeCmd checks which candidates the endpoint serves.
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "List the endpoint's models and check every candidate against them",
	RunE:  runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	t, err := newTransport(cfg)
	if err != nil {
		return err
	}
	if c, ok := t.(interface{ Close() error }); ok {
		defer c.Close()
	}

	out := cmd.OutOrStdout()
	if g, ok := t.(*backend.GRPCTransport); ok {
		if err := g.Health(ctx); err != nil {
			return fmt.Errorf("health check: %w", err)
		}
		fmt.Fprintln(out, "health: SERVING")
	}

	names := candidates(cfg).Names()
	report, err := backend.Probe(ctx, t, names)
	if err != nil {
		return err
	}
	logger.Debug("[PROBE] done", zap.Int("models", len(report.Models)), zap.Strings("unknown", report.Unknown))

	fmt.Fprintf(out, "endpoint serves %d model(s)\n\n", len(report.Models))
	avail := make(map[string]bool, len(report.Available))
	for _, n := range report.Available {
		avail[n] = true
	}
	for i, n := range names {
		status := "missing"
		if avail[n] {
			status = "ok"
		}
		fmt.Fprintf(out, "  %d. %-32s %s\n", i+1, n, status)
	}
	if len(report.Unknown) > 0 && cfg.StrictModels {
		fmt.Fprintf(out, "\n%d candidate(s) are unknown; with ADVISOR_STRICT_MODELS an unknown model stops the candidate loop\n", len(report.Unknown))
	}
	return nil
}
