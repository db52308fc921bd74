// Command safestudy generates, scores and breach-checks passwords from the
// terminal, and applies the database schema for the API server.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "safestudy",
		Short:         "Password generator, strength analyzer and breach checker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newGenerateCmd(),
		newAnalyzeCmd(),
		newCheckCmd(),
		newMigrateCmd(),
	)
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// readPasswords returns args, or one password per non-empty stdin line when
// no args are given. Reading from stdin keeps secrets out of shell history.
func readPasswords(in io.Reader, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	var out []string
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), "\r"); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no password given: pass it as an argument or on stdin")
	}
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
