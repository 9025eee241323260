package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vkotliar/gavel/internal/model"
	"github.com/vkotliar/gavel/internal/rag"
)

var (
	queryTimeout time.Duration
	numResults   int
	jsonOutput   bool
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask a single question about the ingested judgment",
	Long: `Query retrieves the most relevant judgment chunks, generates a
grounded answer and prints it with its source citations.

Example:
  gavel query "What was the verdict?"
  gavel query "What crimes was Yekatom convicted of?" --results 10 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 5*time.Minute, "overall query timeout")
	queryCmd.Flags().IntVar(&numResults, "results", 0, "number of chunks to retrieve (0 uses the configured default)")
	queryCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full result as JSON")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	if err := a.hydrateIndex(ctx); err != nil {
		return err
	}
	engine, err := a.newEngine()
	if err != nil {
		return err
	}

	result, err := engine.Ask(ctx, rag.Request{Query: args[0], NumResults: numResults})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	return printResult(result)
}

func printResult(result *model.QueryResult) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Println(result.Response)

	if len(result.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, c := range result.Citations {
			fmt.Printf("  [%d] %s, pp. %d-%d (%s)\n", c.Index, c.Section, c.PageStart, c.PageEnd, c.ChunkID)
		}
	}
	if result.ContextFree {
		fmt.Println("\nNote: no judgment text was retrieved for this question; the answer is not grounded.")
	} else if result.LowConfidence {
		fmt.Println("\nNote: one or more citations failed validation and were removed.")
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "\nmodel=%s context=%d tokens=%d session=%s\n",
			result.Model, result.ContextUsed, result.TokensUsed, result.SessionID)
	}
	return nil
}
