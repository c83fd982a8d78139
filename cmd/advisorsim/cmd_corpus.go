package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/advisor-sim/internal/config"
	"github.com/danielpatrickdp/advisor-sim/internal/corpus"
	"github.com/danielpatrickdp/advisor-sim/internal/state"
)

var corpusImport bool

// corpusCmd reports on the reference exchanges.
var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Show reference exchange counts, optionally importing files into the database",
	Long: `Loads CORPUS_CSV, CORPUS_JSON and the imported database table, and prints
counts per persona and intent. With --import the file exchanges are first
copied into the database so later runs work without the files.`,
	RunE: runCorpus,
}

func init() {
	corpusCmd.Flags().BoolVar(&corpusImport, "import", false, "Import CORPUS_CSV/CORPUS_JSON into ADVISOR_DB")
}

func runCorpus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := config.Read()
	store, err := state.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if corpusImport {
		files := corpusSource(cfg, nil, logger)
		exchanges, err := files.Load(ctx)
		if err != nil {
			return err
		}
		n, err := corpus.Import(ctx, store.DB(), exchanges)
		if err != nil {
			return err
		}
		logger.Info("[CORPUS] imported", zap.Int("exchanges", n), zap.String("db", cfg.DBPath))
		fmt.Fprintf(out, "imported %d exchange(s) into %s\n\n", n, cfg.DBPath)
	}

	c, err := corpus.Load(ctx, corpusSource(cfg, store, logger), logger)
	if err != nil {
		return err
	}
	printStats(out, c.Stats())
	return nil
}

func printStats(w io.Writer, s corpus.Stats) {
	fmt.Fprintf(w, "%d exchange(s), %d for any persona\n", s.Total, s.Wildcards)
	printCounts(w, "By persona", s.ByPersona)
	printCounts(w, "By intent", s.ByIntent)
}

func printCounts(w io.Writer, title string, m map[string]int) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-40s %d\n", dash(k), m[k])
	}
}
