package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/corey/goodadvice/internal/domain/sentiment"
	"github.com/corey/goodadvice/internal/ports"
	"golang.org/x/sync/errgroup"
)

// Pipeline pulls articles, asks the advisor about each one and stores the reports.
type Pipeline struct {
	feed        ports.FeedFetcher
	advisor     ports.Advisor
	store       ports.ReportStore
	log         *slog.Logger
	concurrency int
	interval    time.Duration
	now         func() time.Time

	// OnReport, when set, is called after each report is saved.
	// It may be called from several goroutines at once.
	OnReport func(a ports.Article, r *ports.Report)
}

// PipelineConfig sets the pipeline's pacing.
type PipelineConfig struct {
	Concurrency int
	Interval    time.Duration
}

// Summary counts what one pull cycle did.
type Summary struct {
	Pulled   int
	Saved    int
	Failed   int // advisor or store errors
	Unparsed int // saved with a zero sentiment
}

// NewPipeline wires a pipeline from its ports.
func NewPipeline(feed ports.FeedFetcher, advisor ports.Advisor, store ports.ReportStore, cfg PipelineConfig, log *slog.Logger) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		feed:        feed,
		advisor:     advisor,
		store:       store,
		log:         log,
		concurrency: cfg.Concurrency,
		interval:    cfg.Interval,
		now:         time.Now,
	}
}

// RunOnce runs a single pull cycle. A failing article is logged and counted;
// only a failed pull or a canceled context is returned as an error.
func (p *Pipeline) RunOnce(ctx context.Context) (Summary, error) {
	articles, err := p.feed.Pull(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("pull: %w", err)
	}

	var (
		mu  sync.Mutex
		sum = Summary{Pulled: len(articles)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, a := range articles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			saved, parsed, err := p.process(gctx, a)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil && ctx.Err() != nil:
				return ctx.Err()
			case err != nil:
				sum.Failed++
				p.log.Error("article failed", slog.String("article", a.ID), slog.Any("error", err))
			case saved:
				sum.Saved++
				if !parsed {
					sum.Unparsed++
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return sum, err
	}

	p.log.Info("pull cycle done",
		slog.Int("pulled", sum.Pulled),
		slog.Int("saved", sum.Saved),
		slog.Int("failed", sum.Failed),
		slog.Int("unparsed", sum.Unparsed))
	return sum, nil
}

func (p *Pipeline) process(ctx context.Context, a ports.Article) (saved, parsed bool, err error) {
	reply, err := p.advisor.AdviseAbout(ctx, a.Title+"\n"+a.Text)
	if err != nil {
		return false, false, fmt.Errorf("advise: %w", err)
	}

	s, perr := sentiment.Parse(reply)
	if perr != nil {
		p.log.Warn("unparsed sentiment, saving zero estimate",
			slog.String("article", a.ID),
			slog.Any("error", perr))
	}

	r := &ports.Report{
		ResourceID: a.ID,
		Title:      a.Title,
		Origin:     a.Source,
		Text:       a.Text,
		Link:       a.Link,
		CreatedAt:  p.now(),
		Coins:      a.Coins,
		Keywords:   a.Keywords,
		Sentiment:  s,
		Advice:     reply,
	}
	if _, err := p.store.Save(ctx, r); err != nil {
		return false, false, fmt.Errorf("save: %w", err)
	}

	p.log.Debug("report saved",
		slog.String("id", r.ID),
		slog.String("article", a.ID),
		slog.Any("coins", a.Coins),
		slog.String("sentiment", sentiment.Dominant(s)))

	if p.OnReport != nil {
		p.OnReport(a, r)
	}
	return true, perr == nil, nil
}

// Run runs a cycle immediately and then once per interval until ctx is done.
// A failed cycle is logged and the loop waits for the next tick.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.interval <= 0 {
		return fmt.Errorf("pipeline interval must be > 0 (got %v)", p.interval)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if _, err := p.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.log.Error("pull cycle failed", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
