package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/corey/goodadvice/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Pull pipeline: pull, advise, parse, save; failures are per article
// =============================================================================

type fakeFeed struct {
	articles []ports.Article
	err      error
	calls    atomic.Int32
}

func (f *fakeFeed) Pull(ctx context.Context) ([]ports.Article, error) {
	f.calls.Add(1)
	return f.articles, f.err
}

type fakeAdvisor struct {
	mu       sync.Mutex
	msgs     []string
	reply    func(msg string) (string, error)
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeAdvisor) AdviseAbout(ctx context.Context, msg string) (string, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.msgs = append(f.msgs, msg)
	f.mu.Unlock()
	if f.reply == nil {
		return `{"negative":0.1,"neutral":0.2,"positive":0.7}`, nil
	}
	return f.reply(msg)
}

type memStore struct {
	mu      sync.Mutex
	reports []*ports.Report
	err     error
}

func (m *memStore) Save(ctx context.Context, r *ports.Report) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = "r" + string(rune('a'+len(m.reports)))
	}
	cp := *r
	m.reports = append(m.reports, &cp)
	return r.ID, nil
}

func (m *memStore) ReadByID(ctx context.Context, id string) (*ports.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (m *memStore) ReadFromTime(ctx context.Context, since time.Time) ([]*ports.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ports.Report, 0)
	for _, r := range m.reports {
		if !r.CreatedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

func articles(n int) []ports.Article {
	out := make([]ports.Article, n)
	for i := range out {
		out[i] = ports.Article{
			ID:     "a" + string(rune('0'+i)),
			Title:  "Bitcoin news",
			Text:   "(btc) moves",
			Coins:  []string{"bitcoin", "btc"},
			Source: "https://newsdata.io",
		}
	}
	return out
}

func TestRunOnce_SavesReports(t *testing.T) {
	feed := &fakeFeed{articles: articles(3)}
	adv := &fakeAdvisor{}
	store := &memStore{}
	p := NewPipeline(feed, adv, store, PipelineConfig{Concurrency: 1}, nil)

	var seen atomic.Int32
	p.OnReport = func(a ports.Article, r *ports.Report) { seen.Add(1) }

	sum, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Pulled: 3, Saved: 3}, sum)
	assert.Equal(t, int32(3), seen.Load())

	require.Len(t, store.reports, 3)
	r := store.reports[0]
	assert.Equal(t, "https://newsdata.io", r.Origin)
	assert.Equal(t, []string{"bitcoin", "btc"}, r.Coins)
	assert.Equal(t, ports.Sentiment{Negative: 0.1, Neutral: 0.2, Positive: 0.7}, r.Sentiment)
	assert.False(t, r.CreatedAt.IsZero())

	assert.Equal(t, "Bitcoin news\n(btc) moves", adv.msgs[0])
}

func TestRunOnce_UnparsedReplyStillSaved(t *testing.T) {
	feed := &fakeFeed{articles: articles(1)}
	adv := &fakeAdvisor{reply: func(string) (string, error) { return "no idea", nil }}
	store := &memStore{}
	p := NewPipeline(feed, adv, store, PipelineConfig{}, nil)

	sum, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Pulled: 1, Saved: 1, Unparsed: 1}, sum)
	assert.Equal(t, ports.Sentiment{}, store.reports[0].Sentiment)
	assert.Equal(t, "no idea", store.reports[0].Advice)
}

func TestRunOnce_ArticleFailureDoesNotAbort(t *testing.T) {
	feed := &fakeFeed{articles: articles(4)}
	adv := &fakeAdvisor{reply: func(msg string) (string, error) {
		return "", errors.New("rate limited")
	}}
	store := &memStore{}
	p := NewPipeline(feed, adv, store, PipelineConfig{Concurrency: 2}, nil)

	sum, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Failed)
	assert.Equal(t, 0, sum.Saved)
}

func TestRunOnce_StoreFailure(t *testing.T) {
	feed := &fakeFeed{articles: articles(2)}
	store := &memStore{err: errors.New("disk full")}
	p := NewPipeline(feed, &fakeAdvisor{}, store, PipelineConfig{}, nil)

	sum, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Failed)
}

func TestRunOnce_PullError(t *testing.T) {
	feed := &fakeFeed{err: errors.New("status error")}
	p := NewPipeline(feed, &fakeAdvisor{}, &memStore{}, PipelineConfig{}, nil)

	_, err := p.RunOnce(context.Background())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "pull:"))
}

func TestRunOnce_ConcurrencyBounded(t *testing.T) {
	feed := &fakeFeed{articles: articles(10)}
	adv := &fakeAdvisor{}
	p := NewPipeline(feed, adv, &memStore{}, PipelineConfig{Concurrency: 3}, nil)

	sum, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, sum.Saved)
	assert.LessOrEqual(t, adv.maxSeen.Load(), int32(3))
}

func TestRunOnce_Canceled(t *testing.T) {
	feed := &fakeFeed{articles: articles(3)}
	ctx, cancel := context.WithCancel(context.Background())
	adv := &fakeAdvisor{reply: func(string) (string, error) {
		cancel()
		return "", context.Canceled
	}}
	p := NewPipeline(feed, adv, &memStore{}, PipelineConfig{}, nil)

	_, err := p.RunOnce(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_TicksAndStops(t *testing.T) {
	feed := &fakeFeed{err: errors.New("flaky")}
	p := NewPipeline(feed, &fakeAdvisor{}, &memStore{}, PipelineConfig{Interval: 20 * time.Millisecond}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	// Immediate run plus several ticks; failures do not stop the loop.
	assert.GreaterOrEqual(t, feed.calls.Load(), int32(3))
}

func TestRun_RejectsZeroInterval(t *testing.T) {
	p := NewPipeline(&fakeFeed{}, &fakeAdvisor{}, &memStore{}, PipelineConfig{}, nil)
	assert.Error(t, p.Run(context.Background()))
}
