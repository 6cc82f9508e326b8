package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/completion"
	"mercator-hq/callisto/pkg/ledger"
)

var completeFlags struct {
	tier            string
	system          string
	maxTokens       int
	reasoningBudget int
	session         string
	turn            string
	operation       string
	fixture         string
	index           int
	noStream        bool
	deterministic   bool
}

var completeCmd = &cobra.Command{
	Use:   "complete [prompt...]",
	Short: "Run a one-shot completion",
	Long: `Run one completion against the configured provider and print the
response. Streaming is the default: text fragments appear as they arrive
and the usage summary goes to stderr when the stream finishes.

With no API key configured the command degrades to a null completion
rather than failing; with --deterministic (or the config equivalent) the
response comes from a fixture instead of the network.

Examples:
  # Fast-tier completion, streamed
  callisto complete --operation demo "What is the capital of France?"

  # Quality tier with extended reasoning
  callisto complete --tier quality --reasoning-budget 2048 --operation demo "Why?"

  # Non-streaming, reading the prompt from stdin
  echo "Summarize this" | callisto complete --no-stream --operation summarize

  # Deterministic run against a fixture's second canned response
  callisto complete --deterministic --fixture demo-session --index 1 --operation demo "hi"`,
	RunE: runComplete,
}

func init() {
	rootCmd.AddCommand(completeCmd)

	completeCmd.Flags().StringVar(&completeFlags.tier, "tier", completion.TierFast, "model tier: fast, quality")
	completeCmd.Flags().StringVar(&completeFlags.system, "system", "", "system prompt")
	completeCmd.Flags().IntVar(&completeFlags.maxTokens, "max-tokens", 0, "output token cap (0 = default)")
	completeCmd.Flags().IntVar(&completeFlags.reasoningBudget, "reasoning-budget", 0, "extended reasoning tokens (quality tier only)")
	completeCmd.Flags().StringVar(&completeFlags.session, "session", "cli", "session identifier for cost attribution")
	completeCmd.Flags().StringVar(&completeFlags.turn, "turn", "", "turn identifier (default: random)")
	completeCmd.Flags().StringVar(&completeFlags.operation, "operation", "", "operation name for cost attribution (required)")
	completeCmd.Flags().StringVar(&completeFlags.fixture, "fixture", "", "fixture id for deterministic operation")
	completeCmd.Flags().IntVar(&completeFlags.index, "index", -1, "canned response index within the fixture")
	completeCmd.Flags().BoolVar(&completeFlags.noStream, "no-stream", false, "wait for the full response instead of streaming")
	completeCmd.Flags().BoolVar(&completeFlags.deterministic, "deterministic", false, "serve the completion from fixtures")
	_ = completeCmd.MarkFlagRequired("operation")
}

func runComplete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}
	if completeFlags.deterministic {
		cfg.Completion.Deterministic = true
	}

	prompt, err := readPrompt(args)
	if err != nil {
		return err
	}

	orchestrator, cleanup, err := buildOrchestrator(cfg)
	if err != nil {
		return cli.NewCommandError("complete", err)
	}
	defer cleanup()

	req := completion.Request{
		System:          completeFlags.system,
		Messages:        []completion.Message{{Role: completion.RoleUser, Content: prompt}},
		Tier:            completeFlags.tier,
		MaxTokens:       completeFlags.maxTokens,
		ReasoningBudget: completeFlags.reasoningBudget,
		Session:         completeFlags.session,
		Turn:            completeFlags.turn,
		Operation:       completeFlags.operation,
		FixtureID:       completeFlags.fixture,
	}
	if req.Turn == "" {
		req.Turn = uuid.New().String()
	}
	if completeFlags.index >= 0 {
		index := completeFlags.index
		req.ResponseIndex = &index
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	if completeFlags.noStream {
		text, err := orchestrator.Complete(ctx, req)
		if err != nil {
			return cli.NewCommandError("complete", err)
		}
		if text == nil {
			fmt.Fprintln(os.Stderr, "no completion available (no client configured, call failed, or no fixture content)")
			return nil
		}
		fmt.Println(*text)
		return nil
	}

	results, err := orchestrator.CompleteStreaming(ctx, req)
	if err != nil {
		return cli.NewCommandError("complete", err)
	}

	for result := range results {
		if result.Err != nil {
			fmt.Println()
			return cli.NewCommandError("complete", result.Err)
		}

		switch event := result.Event.(type) {
		case completion.Text:
			fmt.Print(event.Fragment)

		case completion.ToolUse:
			input, _ := json.Marshal(event.Input)
			fmt.Fprintf(os.Stderr, "\n[tool_use %s id=%s] %s\n", event.Name, event.ID, input)

		case completion.Done:
			fmt.Println()
			printUsage(os.Stderr, event.Usage)
		}
	}

	return nil
}

// readPrompt takes the prompt from the arguments, falling back to stdin
// when none are given (so the command composes in pipelines).
func readPrompt(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("no prompt arguments and stdin unreadable: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("empty prompt")
	}
	return prompt, nil
}

func printUsage(w *os.File, usage ledger.Usage) {
	if usage.IsZero() {
		return
	}
	fmt.Fprintf(w, "tokens: input=%d (cache_read=%d cache_write=%d) output=%d\n",
		usage.InputTokens,
		usage.CacheReadTokens,
		usage.CacheWriteTokens,
		usage.OutputTokens,
	)
}
