package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/easyapply/internal/answers"
	"github.com/jonathan/easyapply/internal/observability"
)

var answersCmd = &cobra.Command{
	Use:   "answers",
	Short: "Inspect and edit the stored answer table",
}

var answersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored question-answer pairs",
	Args:  cobra.NoArgs,
	RunE:  runAnswersList,
}

var answersLookupCmd = &cobra.Command{
	Use:   "lookup <question>",
	Short: "Show the stored answer a question would receive",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnswersLookup,
}

var answersAddCmd = &cobra.Command{
	Use:   "add <question> <answer>",
	Short: "Store an answer for a question",
	Long:  "Stores an answer for a question. A question that already has an answer keeps it.",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnswersAdd,
}

func init() {
	answersCmd.AddCommand(answersListCmd, answersLookupCmd, answersAddCmd)
	rootCmd.AddCommand(answersCmd)
}

// commandLogger logs to stderr for the inspection commands, which keep no log file.
func commandLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// openAnswers loads the answer table named by the config.
func openAnswers(cmd *cobra.Command) (*answers.Store, func(), error) {
	cfg, err := loadConfig(configPath, false)
	if err != nil {
		return nil, nil, err
	}
	logger := commandLogger()
	store, err := openStorage(cmd.Context(), cfg, false, logger)
	if err != nil {
		return nil, nil, err
	}
	cache := answers.NewStore(store.answers, logger)
	if err := cache.Load(cmd.Context()); err != nil {
		store.Close()
		return nil, nil, err
	}
	return cache, store.Close, nil
}

func runAnswersList(cmd *cobra.Command, _ []string) error {
	cache, done, err := openAnswers(cmd)
	if err != nil {
		return err
	}
	defer done()

	observability.NewPrinter(cmd.OutOrStdout()).PrintAnswers(cache.Entries())
	return nil
}

func runAnswersLookup(cmd *cobra.Command, args []string) error {
	cache, done, err := openAnswers(cmd)
	if err != nil {
		return err
	}
	defer done()

	answer, ok := cache.Lookup(args[0])
	if !ok {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No stored answer for %q\n", args[0])
		return nil
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

func runAnswersAdd(cmd *cobra.Command, args []string) error {
	cache, done, err := openAnswers(cmd)
	if err != nil {
		return err
	}
	defer done()

	added, err := cache.Commit(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	if !added {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Question %q already has an answer; kept the existing one\n", args[0])
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored answer for %q\n", args[0])
	return nil
}
