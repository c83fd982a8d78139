package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/advisor-sim/internal/intent"
)

// intentCmd labels advisor text.
var intentCmd = &cobra.Command{
	Use:   "intent [advisor text]",
	Short: "Classify an advisor turn into one of the five intents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := intent.Classify(joinArgs(args))
		fmt.Fprintf(cmd.OutOrStdout(), "%s (confidence %.2f)\n", r.Label, r.Confidence)
		return nil
	},
}
