// Package scrape populates the catalog from the film site: it reads the
// top listing, scrapes every detail page it links to under one of three
// concurrency strategies, and hands the results to a Sink in one call.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/kinocat/internal/events"
	"github.com/vmunix/kinocat/internal/metrics"
	"github.com/vmunix/kinocat/pkg/kino"
)

const (
	DefaultBaseURL     = "https://kino.mail.ru"
	DefaultListingPath = "/cinema/top/"
	DefaultPoolSize    = 5
)

// Config holds the orchestrator settings.
type Config struct {
	BaseURL     string
	ListingPath string
	PoolSize    int
}

// Failure describes one detail page that could not be scraped.
type Failure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Result summarises a completed run.
type Result struct {
	Strategy Strategy      `json:"strategy"`
	Found    int           `json:"found"`
	Created  int           `json:"created"`
	Failed   []Failure     `json:"failed"`
	Elapsed  time.Duration `json:"-"`
}

// Orchestrator runs populate jobs. It is safe for concurrent use; each Run
// gets its own Batch.
type Orchestrator struct {
	fetcher Fetcher
	sink    Sink
	bus     *events.Bus
	logger  *slog.Logger
	base    *url.URL
	listing string
	pool    int
	runs    atomic.Int64
}

// NewOrchestrator validates cfg and returns an Orchestrator. bus may be nil.
func NewOrchestrator(cfg Config, fetcher Fetcher, sink Sink, bus *events.Bus, logger *slog.Logger) (*Orchestrator, error) {
	if fetcher == nil || sink == nil {
		return nil, fmt.Errorf("orchestrator needs a fetcher and a sink")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ListingPath == "" {
		cfg.ListingPath = DefaultListingPath
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = DefaultPoolSize
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	listing, err := base.Parse(cfg.ListingPath)
	if err != nil {
		return nil, fmt.Errorf("invalid listing path %q: %w", cfg.ListingPath, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		fetcher: fetcher,
		sink:    sink,
		bus:     bus,
		logger:  logger.With("component", "scrape"),
		base:    base,
		listing: listing.String(),
		pool:    cfg.PoolSize,
	}, nil
}

// ListingURL is the absolute address of the top listing.
func (o *Orchestrator) ListingURL() string { return o.listing }

// Run scrapes the listing with the given strategy and stores what it found.
// Sequential and pool runs return the first failure in listing order and
// store nothing; fan-out runs store every success and list failures in the
// Result.
func (o *Orchestrator) Run(ctx context.Context, strategy Strategy) (*Result, error) {
	runID := o.runs.Add(1)
	start := time.Now()
	log := o.logger.With("run", runID, "strategy", string(strategy))

	res, err := o.run(ctx, runID, strategy, log)
	elapsed := time.Since(start)

	created := 0
	if res != nil {
		res.Elapsed = elapsed
		created = res.Created
	}
	metrics.ObservePopulate(string(strategy), created, elapsed, err)
	o.publishCompleted(ctx, runID, strategy, res, elapsed, err)

	if err != nil {
		log.Error("populate failed", "error", err, "duration_ms", elapsed.Milliseconds())
		return nil, err
	}
	log.Info("populate complete",
		"found", res.Found,
		"created", res.Created,
		"failed", len(res.Failed),
		"duration_ms", elapsed.Milliseconds())
	return res, nil
}

func (o *Orchestrator) run(ctx context.Context, runID int64, strategy Strategy, log *slog.Logger) (*Result, error) {
	var runBatch func(context.Context, *Batch) error
	switch strategy {
	case StrategySequential:
		runBatch = o.runSequential
	case StrategyFanout:
		runBatch = o.runFanout
	case StrategyPool:
		runBatch = o.runPool
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, string(strategy))
	}

	page, err := o.fetcher.Fetch(ctx, o.listing)
	if err != nil {
		return nil, err
	}
	links, err := kino.ParseListing(page)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		log.Warn("listing matched no film links", "url", o.listing)
	}

	batch := newBatch(links)
	o.publish(ctx, &events.PopulateStarted{
		BaseEvent: events.NewBaseEvent(events.EventPopulateStarted, events.EntityPopulate, runID),
		Strategy:  string(strategy),
		Listing:   o.listing,
		Found:     batch.Len(),
	})
	log.Info("populate started", "found", batch.Len(), "listing", o.listing)

	runErr := runBatch(ctx, batch)
	failures := batch.Failures()
	for _, j := range failures {
		log.Warn("scrape job failed", "index", j.Index, "url", j.URL, "error", j.Err)
		o.publish(ctx, &events.ScrapeJobFailed{
			BaseEvent: events.NewBaseEvent(events.EventScrapeJobFailed, events.EntityFilmPage, int64(j.Index)),
			RunID:     runID,
			URL:       j.URL,
			Error:     j.Err.Error(),
		})
	}
	if runErr != nil {
		return nil, runErr
	}

	created, err := o.sink.BulkCreateFilms(ctx, batch.Records())
	if err != nil {
		return nil, fmt.Errorf("store films: %w", err)
	}

	res := &Result{
		Strategy: strategy,
		Found:    batch.Len(),
		Created:  created,
		Failed:   []Failure{},
	}
	for _, j := range failures {
		res.Failed = append(res.Failed, Failure{URL: j.URL, Error: j.Err.Error()})
	}
	return res, nil
}

// runSequential scrapes in listing order and stops at the first failure.
func (o *Orchestrator) runSequential(ctx context.Context, b *Batch) error {
	for i := range b.jobs {
		o.scrape(ctx, &b.jobs[i])
		if err := b.jobs[i].Err; err != nil {
			return err
		}
	}
	return nil
}

// runFanout starts a goroutine per job and waits for all of them. Each
// goroutine writes only its own Batch slot, so results need no lock and
// none can be lost to a concurrent append. Job failures are left in the
// batch; only cancellation aborts the run.
func (o *Orchestrator) runFanout(ctx context.Context, b *Batch) error {
	var wg sync.WaitGroup
	for i := range b.jobs {
		wg.Add(1)
		go func(j *Job) {
			defer wg.Done()
			o.scrape(ctx, j)
		}(&b.jobs[i])
	}
	wg.Wait()
	return ctx.Err()
}

// runPool keeps at most o.pool jobs in flight, waits for every job, then
// reports the first failure in listing order.
func (o *Orchestrator) runPool(ctx context.Context, b *Batch) error {
	var g errgroup.Group
	g.SetLimit(o.pool)
	for i := range b.jobs {
		j := &b.jobs[i]
		g.Go(func() error {
			o.scrape(ctx, j)
			return nil
		})
	}
	_ = g.Wait()
	return b.Err()
}

// scrape fills one job slot.
func (o *Orchestrator) scrape(ctx context.Context, j *Job) {
	defer func() { j.done = true }()

	ref, err := url.Parse(strings.TrimSpace(j.URL))
	if err != nil {
		j.Err = &kino.ParseError{Field: kino.FieldListing, Reason: "bad link " + j.URL, Err: err}
		return
	}
	j.URL = o.base.ResolveReference(ref).String()

	metrics.FetchInFlight.Inc()
	page, err := o.fetcher.Fetch(ctx, j.URL)
	metrics.FetchInFlight.Dec()
	if err != nil {
		j.Err = err
		return
	}

	film, err := kino.ParseDetail(page)
	if err != nil {
		j.Err = fmt.Errorf("%s: %w", j.URL, err)
		return
	}
	j.Film = film
}

func (o *Orchestrator) publish(ctx context.Context, e events.Event) {
	if o.bus == nil {
		return
	}
	_ = o.bus.Publish(context.WithoutCancel(ctx), e)
}

func (o *Orchestrator) publishCompleted(ctx context.Context, runID int64, strategy Strategy, res *Result, elapsed time.Duration, err error) {
	e := &events.PopulateCompleted{
		BaseEvent: events.NewBaseEvent(events.EventPopulateCompleted, events.EntityPopulate, runID),
		Strategy:  string(strategy),
		ElapsedMS: elapsed.Milliseconds(),
		Seconds:   elapsed.Seconds(),
	}
	if res != nil {
		e.Found = res.Found
		e.Created = res.Created
		e.Failed = len(res.Failed)
	}
	if err != nil {
		e.Error = err.Error()
	}
	o.publish(ctx, e)
}
