package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically. API keys are not checked here: only the
// commands that reach the network need them (see RequireFeed, RequireAdvisor).
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "bbolt", "sqlite":
	default:
		return fmt.Errorf("storage.driver must be bbolt or sqlite (got %q)", c.Storage.Driver)
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path is required")
	}

	if c.Schedule.Interval <= 0 {
		return fmt.Errorf("schedule.interval must be > 0 (got %v)", c.Schedule.Interval)
	}
	if c.Schedule.Concurrency <= 0 {
		return fmt.Errorf("schedule.concurrency must be > 0 (got %d)", c.Schedule.Concurrency)
	}

	langs := c.Lexicon.Languages[:0]
	for _, l := range c.Lexicon.Languages {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		return errors.New("lexicon.languages must not be empty")
	}
	c.Lexicon.Languages = langs

	if c.Advisor.MaxTokens <= 0 {
		return fmt.Errorf("advisor.max_tokens must be > 0 (got %d)", c.Advisor.MaxTokens)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}

// RequireFeed reports a missing newsdata.io key.
func (c *Config) RequireFeed() error {
	if c.Feed.APIKey == "" {
		return errors.New("feed.api_key is required (set NEWSDATA_IO)")
	}
	return nil
}

// RequireAdvisor reports a missing model key.
func (c *Config) RequireAdvisor() error {
	if c.Advisor.APIKey == "" {
		return errors.New("advisor.api_key is required (set ANTHROPIC_API_KEY)")
	}
	return nil
}
