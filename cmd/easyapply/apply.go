package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/easyapply/internal/answers"
	"github.com/jonathan/easyapply/internal/browser"
	"github.com/jonathan/easyapply/internal/config"
	"github.com/jonathan/easyapply/internal/heuristic"
	"github.com/jonathan/easyapply/internal/jobs"
	"github.com/jonathan/easyapply/internal/ledger"
	"github.com/jonathan/easyapply/internal/observability"
	"github.com/jonathan/easyapply/internal/resolver"
	"github.com/jonathan/easyapply/internal/wizard"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Search jobs and apply through Easy Apply",
	Long:  "Log in, search every configured (position, location) pair and walk the Easy Apply dialog of each eligible job, recording one ledger row per attempt.",
	Args:  cobra.NoArgs,
	RunE:  runApply,
}

var (
	applyHeadless      bool
	applyPositions     []string
	applyLocations     []string
	applyMaxSearchTime time.Duration
	applyFallback      string
	applyStorage       string
	applyDatabaseURL   string
	applyAPIKey        string
)

func init() {
	applyCmd.Flags().BoolVar(&applyHeadless, "headless", false, "Run the browser without a window")
	applyCmd.Flags().StringSliceVar(&applyPositions, "positions", nil, "Positions to search (overrides config)")
	applyCmd.Flags().StringSliceVar(&applyLocations, "locations", nil, "Locations to search (overrides config)")
	applyCmd.Flags().DurationVar(&applyMaxSearchTime, "max-search-time", 0, "Time budget per (position, location) search")
	applyCmd.Flags().StringVar(&applyFallback, "fallback", "", "Unknown question strategy: prompt, static, defer or llm")
	applyCmd.Flags().StringVar(&applyStorage, "storage", "", "Storage backend: csv or postgres")
	applyCmd.Flags().StringVar(&applyDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")
	applyCmd.Flags().StringVar(&applyAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")

	rootCmd.AddCommand(applyCmd)
}

// applyOverrides copies flags that were set onto cfg.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("headless") {
		cfg.Browser.Headless = applyHeadless
	}
	if len(applyPositions) > 0 {
		cfg.Positions = append([]string(nil), applyPositions...)
	}
	if len(applyLocations) > 0 {
		cfg.Locations = append([]string(nil), applyLocations...)
	}
	if applyMaxSearchTime > 0 {
		cfg.Search.MaxSearchTime = applyMaxSearchTime
	}
	if applyFallback != "" {
		cfg.Answers.Fallback = applyFallback
	}
	if applyStorage != "" {
		cfg.Storage.Backend = applyStorage
	}
	if applyDatabaseURL != "" {
		cfg.Storage.DatabaseURL = applyDatabaseURL
	}
	if applyAPIKey != "" {
		cfg.LLM.APIKey = applyAPIKey
	}
}

func runApply(cmd *cobra.Command, _ []string) error {
	// flags may supply required fields, so validation waits until they are applied
	if _, err := os.Stat(configPath); err != nil {
		return describeConfigError(configPath, err)
	}
	cfg, err := loadConfig(configPath, false)
	if err != nil {
		return err
	}
	applyOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := observability.NewLogger(observability.LoggerOptions{Dir: cfg.LogDir, Verbose: cfg.Verbose})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, true, logger.Logger)
	if err != nil {
		return err
	}
	defer store.Close()
	log := logger.With("run_id", store.runID.String())
	log.Info("please wait while we prepare the bot for you", "log_file", logger.Path)
	observability.NewPrinter(cmd.OutOrStdout()).PrintRunConfig(cfg)

	cache := answers.NewStore(store.answers, log)
	if err := cache.Load(ctx); err != nil {
		return err
	}
	log.Info("answers loaded", "count", cache.Len())

	fb, err := buildFallback(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), log)
	if err != nil {
		return err
	}
	defer func() { _ = fb.Close() }()

	rules := cfg.Answers.Rules
	if len(rules) == 0 {
		rules = heuristic.DefaultRules()
	}
	answerer, err := heuristic.New(rules, cfg.TemplateVars(), fb, log)
	if err != nil {
		return err
	}
	res := resolver.New(cache, answerer, log)
	if fb.deferred != nil {
		res.WithPending(fb.deferred)
	}

	recent, err := ledger.Recent(ctx, store.ledger, time.Now(), ledger.DefaultWindow)
	if err != nil {
		return fmt.Errorf("failed to load recent applications: %w", err)
	}
	log.Info("recent applications loaded", "count", len(recent))

	session, err := browser.Launch(ctx, browser.Options{
		Headless:    cfg.Browser.Headless,
		UserDataDir: cfg.Browser.UserDataDir,
		BaseURL:     cfg.Browser.BaseURL,
		Timeout:     cfg.Browser.Timeout,
		Logger:      log,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Login(ctx, cfg.Username, cfg.Password); err != nil {
		return err
	}

	walkOpts := wizard.DefaultOptions()
	walkOpts.ResumePath = cfg.Uploads.Resume
	walkOpts.CoverLetterPath = cfg.Uploads.CoverLetter
	walkOpts.Logger = log

	it := jobs.NewIterator(session, wizard.New(session, res, walkOpts), store.ledger, recent, jobs.Options{
		BaseURL:         cfg.Browser.BaseURL,
		Positions:       cfg.Positions,
		Locations:       cfg.Locations,
		Levels:          cfg.ExperienceLevel,
		Blacklist:       cfg.Blacklist,
		BlacklistTitles: cfg.BlacklistTitles,
		PhoneNumber:     cfg.PhoneNumber,
		PageSize:        cfg.Search.PageSize,
		MaxCombos:       cfg.Search.MaxCombos,
		MaxSearchTime:   cfg.Search.MaxSearchTime,
		EmptyPageLimit:  cfg.Search.EmptyPageLimit,
		AttemptTimeout:  cfg.Search.AttemptTimeout,
		SettleDelay:     time.Second,
		Logger:          log,
	})

	started := time.Now()
	stats, runErr := it.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		log.Info("run interrupted")
	}

	// wrap-up must not be skipped because the run context was cancelled
	finishCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.finish(finishCtx, stats, runErr); err != nil {
		log.Error("failed to finish run", "error", err)
	}
	pending := fb.writePending(cfg.Answers.PendingFile, log)
	observability.NewPrinter(cmd.OutOrStdout()).PrintRunSummary(stats, pending, time.Since(started))

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
