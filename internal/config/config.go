package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"tldrgram/internal/domain"

	"github.com/caarlos0/env/v11"
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"

	FormatText     = "text"
	FormatMarkdown = "markdown"

	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 13_5_1) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/116.0.0.0 Safari/537.36"
)

type Config struct {
	Credential domain.Credential `env:"HF_API_TOKEN"`

	LLM     LLM
	Web     Web
	YouTube YouTube
	Bot     Bot
}

// LLM configures the remote text-generation endpoint.
//
// MaxOutputTokens stays at 150 even though the prompt asks for 300 words.
type LLM struct {
	Provider        string        `env:"LLM_PROVIDER"          envDefault:"huggingface"`
	BaseURL         string        `env:"LLM_BASE_URL"          envDefault:"https://router.huggingface.co/v1"`
	Model           string        `env:"LLM_MODEL"             envDefault:"mistralai/Mistral-7B-Instruct-v0.3"`
	MaxOutputTokens int64         `env:"LLM_MAX_OUTPUT_TOKENS" envDefault:"150"`
	Temperature     float64       `env:"LLM_TEMPERATURE"       envDefault:"0.7"`
	Timeout         time.Duration `env:"LLM_TIMEOUT"           envDefault:"60s"`
}

// Web configures generic page fetches.
type Web struct {
	InsecureSkipVerify bool          `env:"WEB_INSECURE_SKIP_VERIFY" envDefault:"false"`
	UserAgent          string        `env:"WEB_USER_AGENT"`
	Timeout            time.Duration `env:"WEB_TIMEOUT"              envDefault:"30s"`
	MaxBodyBytes       int64         `env:"WEB_MAX_BODY_BYTES"       envDefault:"8388608"`
	MaxContentChars    int           `env:"WEB_MAX_CONTENT_CHARS"    envDefault:"0"`
	Format             string        `env:"WEB_FORMAT"               envDefault:"text"`
}

type YouTube struct {
	Languages []string `env:"YOUTUBE_LANGUAGES" envDefault:"en"`
}

type Bot struct {
	Token        string  `env:"TELEGRAM_TOKEN"`
	AllowedUsers []int64 `env:"ALLOWED_USERS"`
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	return Config{
		LLM: LLM{
			Provider:        ProviderHuggingFace,
			BaseURL:         "https://router.huggingface.co/v1",
			Model:           "mistralai/Mistral-7B-Instruct-v0.3",
			MaxOutputTokens: 150,
			Temperature:     0.7,
			Timeout:         60 * time.Second,
		},
		Web: Web{
			UserAgent:    DefaultUserAgent,
			Timeout:      30 * time.Second,
			MaxBodyBytes: 8 << 20,
			Format:       FormatText,
		},
		YouTube: YouTube{
			Languages: []string{"en"},
		},
	}
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()

	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.LLM.Provider {
	case ProviderHuggingFace, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown LLM provider %q", c.LLM.Provider))
	}

	if c.LLM.MaxOutputTokens <= 0 {
		errs = append(errs, errors.New("LLM max output tokens must be positive"))
	}

	if c.LLM.Temperature < 0 {
		errs = append(errs, errors.New("LLM temperature must not be negative"))
	}

	switch c.Web.Format {
	case FormatText, FormatMarkdown:
	default:
		errs = append(errs, fmt.Errorf("unknown web format %q", c.Web.Format))
	}

	if c.Web.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("web max body bytes must be positive"))
	}

	if c.Web.MaxContentChars < 0 {
		errs = append(errs, errors.New("web max content chars must not be negative"))
	}

	return errors.Join(errs...)
}

func (c *Config) normalize() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	c.Web.Format = strings.ToLower(strings.TrimSpace(c.Web.Format))

	c.Web.UserAgent = strings.TrimSpace(c.Web.UserAgent)
	if c.Web.UserAgent == "" {
		c.Web.UserAgent = DefaultUserAgent
	}

	langs := c.YouTube.Languages[:0]
	for _, lang := range c.YouTube.Languages {
		if lang = strings.TrimSpace(lang); lang != "" {
			langs = append(langs, lang)
		}
	}
	c.YouTube.Languages = langs
}
