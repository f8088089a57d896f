// Package config loads the advise configuration from a YAML (or .env) file and
// environment variables.
package config

import "time"

// DefaultPrompt asks the advisor for a JSON sentiment estimate of a news item.
const DefaultPrompt = `You are a crypto market analyst. For the news article that follows, estimate ` +
	`the probability that its sentiment towards the mentioned coins is negative, neutral or positive. ` +
	`Answer with a single JSON object and nothing else, in the form ` +
	`{"negative": 0.0, "neutral": 0.0, "positive": 0.0}. The three values must sum to 1.`

// Config is the root application configuration.
type Config struct {
	Feed     FeedConfig     `yaml:"feed"`
	Advisor  AdvisorConfig  `yaml:"advisor"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Lexicon  LexiconConfig  `yaml:"lexicon"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// FeedConfig holds newsdata.io settings.
type FeedConfig struct {
	APIKey  string        `yaml:"api_key"  env:"NEWSDATA_IO"`
	BaseURL string        `yaml:"base_url" env:"FEED_BASE_URL" env-default:"https://newsdata.io/api/1/latest"`
	Query   string        `yaml:"query"    env:"FEED_QUERY"    env-default:"crypto"`
	Timeout time.Duration `yaml:"timeout"  env:"FEED_TIMEOUT"  env-default:"30s"`
}

// AdvisorConfig holds the language model settings.
type AdvisorConfig struct {
	APIKey    string `yaml:"api_key"    env:"ANTHROPIC_API_KEY"`
	Model     string `yaml:"model"      env:"ADVISOR_MODEL"      env-default:"claude-haiku-4-5"`
	MaxTokens int64  `yaml:"max_tokens" env:"ADVISOR_MAX_TOKENS" env-default:"1024"`
	BaseURL   string `yaml:"base_url"   env:"ADVISOR_BASE_URL"`
	Prompt    string `yaml:"prompt"     env:"ADVISOR_PROMPT"`
}

// ScheduleConfig controls the pull loop. The default interval spreads the
// feed's 200 daily queries evenly over a day.
type ScheduleConfig struct {
	Interval    time.Duration `yaml:"interval"    env:"SCHEDULE_INTERVAL"    env-default:"7m12s"`
	Concurrency int           `yaml:"concurrency" env:"SCHEDULE_CONCURRENCY" env-default:"1"`
}

// LexiconConfig selects the vocabulary and accepted languages.
type LexiconConfig struct {
	Languages      []string `yaml:"languages"       env:"LEXICON_LANGUAGES"       env-default:"english,eng,british" env-separator:","`
	VocabularyPath string   `yaml:"vocabulary_path" env:"LEXICON_VOCABULARY_PATH"`
	NoWatch        bool     `yaml:"no_watch"        env:"LEXICON_NO_WATCH"` // disables vocabulary hot reload
}

// StorageConfig selects the report store.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"bbolt"`
	Path   string `yaml:"path"   env:"STORAGE_PATH"   env-default:".advise/advise.db"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// EffectivePrompt returns the configured prompt or DefaultPrompt.
func (a AdvisorConfig) EffectivePrompt() string {
	if a.Prompt == "" {
		return DefaultPrompt
	}
	return a.Prompt
}

// Masked returns a copy with secrets replaced, for display.
func (c Config) Masked() Config {
	c.Feed.APIKey = mask(c.Feed.APIKey)
	c.Advisor.APIKey = mask(c.Advisor.APIKey)
	c.Lexicon.Languages = append([]string(nil), c.Lexicon.Languages...)
	return c
}

func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "****"
	}
}
