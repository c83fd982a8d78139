package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/advisor-sim/internal/logging"
)

var (
	// Global flags
	verbose bool
	envFile string
	timeout time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "advisorsim",
	Short: "Simulated MAE students for peer-advisor practice",
	Long: `advisorsim plays one of four simulated students (alpha, beta, delta, echo)
in a conversation with a peer advisor. Replies are generated by a list of
candidate models behind one OpenAI-compatible or gRPC endpoint, grounded on
reference exchanges, and fall back to canned persona replies when every
candidate fails.

Configuration is read from the environment (and a .env file when present).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}

		v := verbose
		if !cmd.Flags().Changed("verbose") {
			v = strings.EqualFold(os.Getenv("LOG_VERBOSE"), "true")
		}
		var err error
		logger, err = logging.NewLogger(v)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging (or set LOG_VERBOSE)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load if present")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall timeout for one-shot commands")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(corpusCmd)
	rootCmd.AddCommand(intentCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
