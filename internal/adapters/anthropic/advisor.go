// Package anthropic implements ports.Advisor on the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrEmptyReply is returned when the model answers with no text.
var ErrEmptyReply = errors.New("anthropic: empty reply")

// Options configures an Advisor.
type Options struct {
	APIKey    string
	Model     string
	MaxTokens int64
	BaseURL   string // optional, for proxies and tests
	System    string // system prompt
	Retries   int    // SDK default when zero, none when negative
}

// Advisor sends messages to a model. A chat advisor keeps the conversation
// history across calls; a sessionless one sends each message on its own.
type Advisor struct {
	client    sdk.Client
	model     string
	maxTokens int64
	system    string
	keep      bool
	log       *slog.Logger

	mu      sync.Mutex
	history []sdk.MessageParam
}

// NewChat returns an advisor that remembers the conversation.
func NewChat(opts Options, log *slog.Logger) (*Advisor, error) {
	return newAdvisor(opts, true, log)
}

// NewSessionless returns an advisor that judges every message independently
// and is safe for concurrent use without serializing calls.
func NewSessionless(opts Options, log *slog.Logger) (*Advisor, error) {
	return newAdvisor(opts, false, log)
}

func newAdvisor(opts Options, keep bool, log *slog.Logger) (*Advisor, error) {
	if opts.APIKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	if opts.Model == "" {
		return nil, errors.New("anthropic: model is required")
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	ro := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		ro = append(ro, option.WithBaseURL(opts.BaseURL))
	}
	switch {
	case opts.Retries > 0:
		ro = append(ro, option.WithMaxRetries(opts.Retries))
	case opts.Retries < 0:
		ro = append(ro, option.WithMaxRetries(0))
	}

	return &Advisor{
		client:    sdk.NewClient(ro...),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		system:    opts.System,
		keep:      keep,
		log:       log,
	}, nil
}

// AdviseAbout sends msg and returns the model's text reply.
func (a *Advisor) AdviseAbout(ctx context.Context, msg string) (string, error) {
	if strings.TrimSpace(msg) == "" {
		return "", errors.New("anthropic: empty message")
	}

	user := sdk.NewUserMessage(sdk.NewTextBlock(msg))

	if a.keep {
		// The history is the request, so a chat advisor handles one call at a time.
		a.mu.Lock()
		defer a.mu.Unlock()
	}

	messages := []sdk.MessageParam{user}
	if a.keep {
		messages = append(append(make([]sdk.MessageParam, 0, len(a.history)+1), a.history...), user)
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages:  messages,
	}
	if a.system != "" {
		params.System = []sdk.TextBlockParam{{Text: a.system}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	reply := sb.String()
	if reply == "" {
		return "", ErrEmptyReply
	}

	a.log.Debug("anthropic: reply",
		slog.String("model", string(resp.Model)),
		slog.Int64("input_tokens", resp.Usage.InputTokens),
		slog.Int64("output_tokens", resp.Usage.OutputTokens))

	if a.keep {
		a.history = append(a.history, user, sdk.NewAssistantMessage(sdk.NewTextBlock(reply)))
	}
	return reply, nil
}

// Reset forgets the conversation.
func (a *Advisor) Reset() {
	a.mu.Lock()
	a.history = nil
	a.mu.Unlock()
}

// Turns returns the number of completed exchanges held in history.
func (a *Advisor) Turns() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.history) / 2
}
