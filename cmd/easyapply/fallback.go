package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/jonathan/easyapply/internal/config"
	"github.com/jonathan/easyapply/internal/heuristic"
	"github.com/jonathan/easyapply/internal/llm"
)

// fallbacks is the unknown-question strategy of a run.
type fallbacks struct {
	heuristic.Fallback
	// deferred collects questions answered with the default; nil unless queued
	deferred *heuristic.DeferredFallback
	closers  []io.Closer
}

func (f *fallbacks) Close() error {
	var first error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// buildFallback returns the strategy named by answers.fallback.
func buildFallback(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, logger *slog.Logger) (*fallbacks, error) {
	f := &fallbacks{}
	switch cfg.Answers.Fallback {
	case config.FallbackStatic:
		f.Fallback = heuristic.StaticFallback(cfg.Answers.DefaultAnswer)

	case config.FallbackDefer:
		f.deferred = heuristic.NewDeferredFallback(cfg.Answers.DefaultAnswer)
		f.Fallback = f.deferred

	case config.FallbackLLM:
		client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig().WithModel(cfg.LLM.Model), cfg.LLM.APIKey)
		if err != nil {
			return nil, err
		}
		f.closers = append(f.closers, client)
		f.deferred = heuristic.NewDeferredFallback(cfg.Answers.DefaultAnswer)
		// questions the model cannot answer are queued for review
		f.Fallback = heuristic.Chain{
			llm.NewAnswerer(client, llm.DefaultConfig().WithModel(cfg.LLM.Model), cfg.TemplateVars(), logger),
			f.deferred,
		}

	default:
		f.Fallback = heuristic.NewPromptFallback(in, out)
	}
	return f, nil
}

// writePending saves queued questions so they can be answered before the next run.
func (f *fallbacks) writePending(path string, logger *slog.Logger) int {
	if f.deferred == nil {
		return 0
	}
	n, err := f.deferred.WritePending(path)
	if err != nil {
		logger.Error("failed to write pending questions", "path", path, "error", err)
		return 0
	}
	if n > 0 {
		logger.Info("questions queued for review", "path", path, "count", n)
	}
	return n
}
