package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vkotliar/gavel/internal/memory"
	"github.com/vkotliar/gavel/internal/rag"
)

var chatTurnTimeout time.Duration

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive session over the ingested judgment",
	Long: `Chat starts an interactive question-answering session. The last
few turns are kept as conversation memory, so follow-up questions like
"and the sentence?" resolve against earlier answers.

Commands inside the session:
  /clear   drop the conversation history
  /exit    leave the session`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().DurationVar(&chatTurnTimeout, "turn-timeout", 2*time.Minute, "timeout per question")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	hydrateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	err = a.hydrateIndex(hydrateCtx)
	cancel()
	if err != nil {
		return err
	}

	engine, err := a.newEngine()
	if err != nil {
		return err
	}

	sessionID := memory.NewSessionID()
	fmt.Printf("Session %s. Ask about the judgment (/exit to quit).\n\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/exit", "/quit":
			return nil
		case "/clear":
			sessionID = memory.NewSessionID()
			fmt.Println("History cleared.")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), chatTurnTimeout)
		result, err := engine.Ask(ctx, rag.Request{Query: line, SessionID: sessionID})
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		fmt.Println()
		if err := printResult(result); err != nil {
			return err
		}
		fmt.Println()
	}

	return scanner.Err()
}
