// /internal/config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Mode selects which halves of the pipeline are active.
type Mode string

const (
	ModeTrain        Mode = "train"
	ModeRespond      Mode = "respond"
	ModeTrainRespond Mode = "train+respond"
)

type Config struct {
	DiscordToken  string `env:"DISCORD_TOKEN,required,notEmpty"`
	StoragePath   string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	CommandPrefix string `env:"MIMIC_PREFIX" envDefault:"!"`

	Mode Mode `env:"MIMIC_MODE" envDefault:"train+respond"`

	// Model shape
	Order            int  `env:"MIMIC_ORDER" envDefault:"1"`
	MinWords         int  `env:"MIMIC_MIN_WORDS" envDefault:"1"`
	CaseSensitive    bool `env:"MIMIC_CASE_SENSITIVE" envDefault:"false"`
	StripPunctuation bool `env:"MIMIC_STRIP_PUNCTUATION" envDefault:"true"`
	MaxReplyWords    int  `env:"MIMIC_MAX_REPLY_WORDS" envDefault:"50"`

	// Response behavior
	ResponseThreshold  int           `env:"MIMIC_RESPONSE_THRESHOLD" envDefault:"50"` // 0-100, a draw must exceed it
	WordDelay          time.Duration `env:"MIMIC_WORD_DELAY" envDefault:"300ms"`
	RestrictedChannels []string      `env:"MIMIC_RESTRICTED_CHANNELS" envSeparator:","`

	InitTimeout time.Duration `env:"MIMIC_INIT_TIMEOUT" envDefault:"30s"`
}

// New loads .env if present, parses the environment and validates it.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeTrain, ModeRespond, ModeTrainRespond:
	default:
		return fmt.Errorf("MIMIC_MODE must be one of train, respond, train+respond; got %q", c.Mode)
	}
	if c.Order < 1 {
		return fmt.Errorf("MIMIC_ORDER must be at least 1; got %d", c.Order)
	}
	if c.MinWords < 0 {
		return fmt.Errorf("MIMIC_MIN_WORDS must not be negative; got %d", c.MinWords)
	}
	if c.MaxReplyWords < 1 {
		return fmt.Errorf("MIMIC_MAX_REPLY_WORDS must be at least 1; got %d", c.MaxReplyWords)
	}
	if c.ResponseThreshold < 0 || c.ResponseThreshold > 100 {
		return fmt.Errorf("MIMIC_RESPONSE_THRESHOLD must be in 0..100; got %d", c.ResponseThreshold)
	}
	if c.WordDelay < 0 {
		return fmt.Errorf("MIMIC_WORD_DELAY must not be negative; got %v", c.WordDelay)
	}
	return nil
}

// TrainEnabled reports whether incoming messages feed the models.
func (c *Config) TrainEnabled() bool {
	return c.Mode == ModeTrain || c.Mode == ModeTrainRespond
}

// RespondEnabled reports whether the bot may generate replies.
func (c *Config) RespondEnabled() bool {
	return c.Mode == ModeRespond || c.Mode == ModeTrainRespond
}
