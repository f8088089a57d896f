// Package newsdata pulls the latest articles from the newsdata.io REST API.
package newsdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/corey/goodadvice/internal/ports"
)

// Origin is recorded as the source of every article this client returns.
const Origin = "https://newsdata.io"

// DefaultBaseURL is the "latest news" endpoint.
const DefaultBaseURL = "https://newsdata.io/api/1/latest"

const statusSuccess = "success"

// pubDate layout; newsdata.io reports UTC.
const pubDateLayout = "2006-01-02 15:04:05"

// maxBody caps a response read; a full page is well under a megabyte.
const maxBody = 8 << 20

// ErrStatus is returned when the API answers with a status other than "success".
var ErrStatus = errors.New("newsdata: unsuccessful status")

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string // DefaultBaseURL when empty
	Query   string
	Timeout time.Duration
}

// Client implements ports.FeedFetcher.
type Client struct {
	hc        *http.Client
	endpoint  string
	apiKey    string
	query     string
	languages ports.LanguageValidator
	coins     ports.EntityExtractor
	log       *slog.Logger
}

// New builds a client. Articles whose language languages rejects are dropped;
// coins tags the rest.
func New(opts Options, languages ports.LanguageValidator, coins ports.EntityExtractor, log *slog.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("newsdata: api key is required")
	}
	if languages == nil || coins == nil {
		return nil, errors.New("newsdata: language validator and coin extractor are required")
	}
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("newsdata: base url: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		hc:        &http.Client{Timeout: timeout},
		endpoint:  base,
		apiKey:    opts.APIKey,
		query:     opts.Query,
		languages: languages,
		coins:     coins,
		log:       log,
	}, nil
}

type response struct {
	Status       string          `json:"status"`
	TotalResults int             `json:"totalResults"`
	Results      json.RawMessage `json:"results"` // an object on error
	NextPage     string          `json:"nextPage"`
}

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type article struct {
	ArticleID   string   `json:"article_id"`
	Title       *string  `json:"title"`
	Link        *string  `json:"link"`
	Keywords    []string `json:"keywords"`
	Description *string  `json:"description"`
	PubDate     *string  `json:"pubDate"`
	SourceID    *string  `json:"source_id"`
	Language    *string  `json:"language"`
	Duplicate   bool     `json:"duplicate"`
}

// Pull fetches one page of the latest articles.
func (c *Client) Pull(ctx context.Context) ([]ports.Article, error) {
	resp, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if resp.Status != statusSuccess {
		var ae apiError
		_ = json.Unmarshal(resp.Results, &ae)
		if ae.Message != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrStatus, resp.Status, ae.Message)
		}
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	var raw []article
	if len(resp.Results) > 0 && string(resp.Results) != "null" {
		if err := json.Unmarshal(resp.Results, &raw); err != nil {
			return nil, fmt.Errorf("newsdata: decode results: %w", err)
		}
	}

	out := make([]ports.Article, 0, len(raw))
	dropped := 0
	for _, a := range raw {
		lang := deref(a.Language)
		if lang == "" || !c.languages.IsValid(lang) {
			dropped++
			continue
		}
		out = append(out, c.convert(a))
	}

	c.log.Debug("newsdata: pulled",
		slog.Int("received", len(raw)),
		slog.Int("kept", len(out)),
		slog.Int("dropped_language", dropped))

	return out, nil
}

func (c *Client) fetch(ctx context.Context) (*response, error) {
	u, _ := url.Parse(c.endpoint)
	q := u.Query()
	q.Set("apikey", c.apiKey)
	if c.query != "" {
		q.Set("q", c.query)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("newsdata: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("newsdata: get: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("newsdata: read body: %w", err)
	}

	var body response
	if err := json.Unmarshal(data, &body); err != nil {
		if res.StatusCode/100 != 2 {
			return nil, fmt.Errorf("newsdata: upstream %d: %s", res.StatusCode, snippet(data))
		}
		return nil, fmt.Errorf("newsdata: decode: %w", err)
	}
	// Error payloads come with 4xx codes but still carry a status field.
	if res.StatusCode/100 != 2 && body.Status == statusSuccess {
		return nil, fmt.Errorf("newsdata: upstream %d", res.StatusCode)
	}
	return &body, nil
}

func (c *Client) convert(a article) ports.Article {
	title := deref(a.Title)
	text := deref(a.Description)

	var published time.Time
	if p := deref(a.PubDate); p != "" {
		if t, err := time.ParseInLocation(pubDateLayout, p, time.UTC); err == nil {
			published = t
		}
	}

	return ports.Article{
		ID:          a.ArticleID,
		Title:       title,
		Text:        text,
		Link:        deref(a.Link),
		Language:    deref(a.Language),
		Keywords:    a.Keywords,
		Coins:       union(c.coins.Extract(title), c.coins.Extract(text)),
		Source:      Origin,
		PublishedAt: published,
	}
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 512 {
		s = s[:512]
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
