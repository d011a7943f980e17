package jobs

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/jonathan/easyapply/internal/ledger"
	"github.com/jonathan/easyapply/internal/types"
	"github.com/jonathan/easyapply/internal/wizard"
)

// Options configures a search run.
type Options struct {
	BaseURL         string
	Positions       []string
	Locations       []string
	Levels          []types.ExperienceLevel
	Blacklist       []string
	BlacklistTitles []string
	PhoneNumber     string

	PageSize       int
	MaxCombos      int
	MaxSearchTime  time.Duration
	EmptyPageLimit int
	AttemptTimeout time.Duration
	SettleDelay    time.Duration

	Sleep  wizard.SleepFunc
	Now    func() time.Time
	Rand   *rand.Rand
	Logger *slog.Logger
}

// Stats counts apply attempts over a run.
type Stats struct {
	Combos    int
	Pages     int
	Attempted int
	Applied   int
	Failed    int
}

// Iterator visits search pages and applies to every eligible job on them.
type Iterator struct {
	browser Browser
	walker  Walker
	ledger  ledger.Store
	recent  map[string]struct{}
	opts    Options
	now     func() time.Time
	sleep   wizard.SleepFunc
	rng     *rand.Rand
	logger  *slog.Logger
	stats   Stats
}

// NewIterator creates an Iterator. recent seeds the set of job IDs to skip and is
// extended as jobs are attempted.
func NewIterator(b Browser, w Walker, l ledger.Store, recent map[string]struct{}, opts Options) *Iterator {
	if opts.PageSize <= 0 {
		opts.PageSize = 25
	}
	if opts.MaxCombos <= 0 {
		opts.MaxCombos = 500
	}
	if opts.MaxSearchTime <= 0 {
		opts.MaxSearchTime = time.Hour
	}
	if opts.EmptyPageLimit <= 0 {
		opts.EmptyPageLimit = 3
	}
	if opts.Sleep == nil {
		opts.Sleep = wizard.Sleep
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if recent == nil {
		recent = map[string]struct{}{}
	}
	return &Iterator{
		browser: b,
		walker:  w,
		ledger:  l,
		recent:  recent,
		opts:    opts,
		now:     opts.Now,
		sleep:   opts.Sleep,
		rng:     opts.Rand,
		logger:  logger,
	}
}

// Stats returns the counters collected so far.
func (it *Iterator) Stats() Stats {
	return it.stats
}

// Combo is one (position, location) search.
type Combo struct {
	Position string
	Location string
}

// Combos returns every (position, location) pair once in random order, capped at
// MaxCombos.
func (it *Iterator) Combos() []Combo {
	all := make([]Combo, 0, len(it.opts.Positions)*len(it.opts.Locations))
	for _, p := range it.opts.Positions {
		for _, l := range it.opts.Locations {
			all = append(all, Combo{Position: p, Location: l})
		}
	}
	it.rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if len(all) > it.opts.MaxCombos {
		all = all[:it.opts.MaxCombos]
	}
	return all
}

// Run searches every combination until done or ctx ends. Only cancellation is returned
// as an error; page and attempt failures are logged.
func (it *Iterator) Run(ctx context.Context) (Stats, error) {
	it.logger.Info("searching", "levels", types.DescribeLevels(it.opts.Levels))
	for _, c := range it.Combos() {
		if err := ctx.Err(); err != nil {
			return it.stats, err
		}
		it.stats.Combos++
		it.logger.Info("applying", "position", c.Position, "location", c.Location)
		if err := it.search(ctx, c); err != nil {
			return it.stats, err
		}
	}
	return it.stats, nil
}

// search pages through the results of one combination until its time budget is spent
// or too many pages in a row come back empty.
func (it *Iterator) search(ctx context.Context, c Combo) error {
	start := it.now()
	empty := 0
	for offset := 0; ; offset += it.opts.PageSize {
		elapsed := it.now().Sub(start)
		if elapsed >= it.opts.MaxSearchTime {
			it.logger.Info("search time budget spent", "position", c.Position, "location", c.Location)
			return nil
		}
		it.logger.Info("looking for jobs", "minutes_left", int((it.opts.MaxSearchTime - elapsed).Minutes()), "start", offset)

		n, err := it.page(ctx, c, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			it.logger.Warn("results page failed", "start", offset, "error", err)
		}
		if n == 0 {
			empty++
			if empty >= it.opts.EmptyPageLimit {
				it.logger.Info("no more results", "position", c.Position, "location", c.Location)
				return nil
			}
			continue
		}
		empty = 0
	}
}

// page loads one results page, applies to its eligible jobs and returns the number of
// cards it showed.
func (it *Iterator) page(ctx context.Context, c Combo, offset int) (int, error) {
	it.stats.Pages++
	url := SearchURL(it.opts.BaseURL, c.Position, c.Location, offset, it.opts.Levels)
	if err := it.browser.Navigate(ctx, url); err != nil {
		return 0, err
	}
	if err := it.browser.ScrollPage(ctx); err != nil {
		return 0, err
	}
	if err := it.browser.ScrollResults(ctx); err != nil {
		return 0, err
	}
	src, err := it.browser.PageSource(ctx)
	if err != nil {
		return 0, err
	}
	cards, err := ParseCards(src)
	if err != nil {
		return 0, err
	}

	queue := Filter(cards, it.opts.Blacklist, it.recent)
	it.logger.Debug("results page parsed", "cards", len(cards), "queued", len(queue))
	for i := range queue {
		if queue[i].Status != types.StatusToBeProcessed {
			continue
		}
		if err := ctx.Err(); err != nil {
			return len(cards), err
		}
		att := it.ApplyToJob(ctx, &queue[i])
		if att.Record.Result {
			it.logger.Info("applied", "job_id", queue[i].JobID)
		} else {
			it.logger.Info("failed to apply", "job_id", queue[i].JobID)
		}
		if err := ctx.Err(); err != nil {
			return len(cards), err
		}
	}
	return len(cards), nil
}
