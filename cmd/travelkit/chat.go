package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/rickchristie/travelkit/agent"
	"github.com/rickchristie/travelkit/config"
	"github.com/rickchristie/travelkit/tools"
	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

func newChatCmd(opts *options) *cobra.Command {
	var (
		format   string
		maxSteps int
		maxTurns int
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a travel agent that calls the tools",
		Long:  `chat starts an interactive session with an OpenAI-compatible model (Groq by default). Type 'exit' or 'quit' to end the session and 'reset' to start over.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := tools.ParseFormat(format)
			if err != nil {
				return err
			}

			e, err := opts.newEnv(cmd, true)
			if err != nil {
				return err
			}
			defer e.closeLog()

			llm, err := newModel(e.cfg.LLM)
			if err != nil {
				return err
			}

			session := agent.NewSession(llm, e.registry, agent.Config{Format: f, MaxSteps: maxSteps, MaxTurns: maxTurns})
			if e.logger != nil {
				session.RegisterHook(e.logger)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rl, err := readline.New(pterm.FgCyan.Sprint("You: "))
			if err != nil {
				return fmt.Errorf("failed to create readline: %w", err)
			}
			defer rl.Close()

			return chatLoop(ctx, rl, cmd.OutOrStdout(), session)
		},
	}
	cmd.Flags().StringVar(&format, "tool-format", "json", "how tool results are shown to the model: json or yaml")
	cmd.Flags().IntVar(&maxSteps, "max-steps", agent.DefaultMaxSteps, "model turns allowed per message")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 0, "past user turns sent to the model (0 keeps all)")
	return cmd
}

func newModel(cfg config.LLMConfig) (llms.Model, error) {
	if cfg.APIKey == "" {
		return nil, &config.ConfigurationError{Missing: []string{config.EnvPrefix + "_LLM_API_KEY"}}
	}
	llm, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	return llm, nil
}

// lineReader is the part of readline.Instance the chat loop uses.
type lineReader interface {
	Readline() (string, error)
}

// sender is the part of agent.Session the chat loop uses.
type sender interface {
	Send(ctx context.Context, text string) (string, error)
	Reset()
}

func chatLoop(ctx context.Context, rl lineReader, out io.Writer, s sender) error {
	fmt.Fprintln(out, pterm.FgGray.Sprint("Ask for flights, buses, trains or cabs. Type 'exit' to end the chat."))

	for {
		input, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out, pterm.FgYellow.Sprint("Chat cancelled."))
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, pterm.FgGreen.Sprint("Ending chat session. Goodbye!"))
			return nil
		case "reset":
			s.Reset()
			fmt.Fprintln(out, pterm.FgGray.Sprint("Conversation cleared."))
			continue
		}

		if err := ctx.Err(); err != nil {
			fmt.Fprintln(out, pterm.FgYellow.Sprint("Chat cancelled."))
			return nil
		}

		answer, err := s.Send(ctx, input)
		if err != nil {
			fmt.Fprintln(out, pterm.FgRed.Sprintf("Error processing message: %v", err))
			continue
		}
		fmt.Fprintf(out, "%s %s\n", pterm.FgMagenta.Sprint("Agent:"), answer)
	}
}
