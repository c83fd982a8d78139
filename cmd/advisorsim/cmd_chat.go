package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/advisor-sim/internal/config"
	"github.com/danielpatrickdp/advisor-sim/internal/orchestrator"
	"github.com/danielpatrickdp/advisor-sim/internal/prompt"
)

var (
	chatPersona   string
	chatIntent    string
	chatCandidate string
	chatOpening   bool
)

// chatCmd runs an interactive advising session.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Practice advising a simulated student in the terminal",
	Long: `Reads advisor turns from stdin and prints the simulated student's reply.
Type 'quit' or 'exit' to stop. When --intent is not set, each advisor turn is
classified and the label is used when the classifier is confident.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatPersona, "persona", "p", "alpha", "Student persona: alpha, beta, delta or echo")
	chatCmd.Flags().StringVar(&chatIntent, "intent", "", "Fixed advisor intent label for every turn")
	chatCmd.Flags().StringVar(&chatCandidate, "candidate", "", "Candidate to try first")
	chatCmd.Flags().BoolVar(&chatOpening, "opening", true, "Let the student open with a question")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	profile, err := a.personas.Get(chatPersona)
	if err != nil {
		return err
	}
	return chatLoop(ctx, a, profile.ID, cmd.InOrStdin(), cmd.OutOrStdout())
}

// chatLoop is the REPL body, separated from wiring for tests.
func chatLoop(ctx context.Context, a *app, personaID string, in io.Reader, out io.Writer) error {
	label := strings.ToUpper(personaID)
	var history []prompt.Turn

	fmt.Fprintf(out, "Advising session with student %s. Type 'quit' to exit.\n", label)
	if chatOpening {
		if q, err := a.personas.OpeningQuestion(personaID, a.rand); err == nil {
			fmt.Fprintf(out, "\nStudent (%s): %s\n\n", label, q)
			history = append(history, prompt.Turn{Role: prompt.RoleStudent, Text: q})
		}
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Advisor> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		history = append(history, prompt.Turn{Role: prompt.RoleAdvisor, Text: line})

		intentLabel := chatIntent
		if intentLabel == "" {
			if l, conf := a.orch.ClassifyIntent(line); conf > 0.5 {
				intentLabel = l
			}
		}

		reply, err := a.orch.GenerateReply(ctx, orchestrator.Request{
			Persona:            personaID,
			Intent:             intentLabel,
			KnowledgeContext:   a.knowledgeContext(line),
			PreferredCandidate: chatCandidate,
			Context:            history,
		})
		if err != nil {
			return err
		}
		history = append(history, prompt.Turn{Role: prompt.RoleStudent, Text: reply.Text})

		fmt.Fprintf(out, "\nStudent (%s): %s\n", label, reply.Text)
		logger.Debug("[CHAT] reply",
			zap.String("reply_id", reply.ID), zap.String("source", string(reply.Source)),
			zap.String("candidate", reply.Candidate), zap.String("intent", intentLabel))
		fmt.Fprintf(out, "  [%s%s, %d attempt(s)]\n\n", reply.Source, candidateSuffix(reply), len(reply.Attempts))
	}
	return scanner.Err()
}

func candidateSuffix(r orchestrator.Reply) string {
	if r.Candidate == "" {
		return ""
	}
	return " via " + r.Candidate
}
