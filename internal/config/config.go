package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"exchangerates/internal/aggregate"
	"exchangerates/internal/logger"
)

const (
	DefaultDisclaimer = "This data is collected from various providers and provided free of charge for informational purposes only, with no guarantee whatsoever of accuracy, validity, availability or fitness for any purpose; use at your own risk. Other than that - have fun, and please share/watch/fork if you think data like this should be free!"
	DefaultLicense    = "Data collected from various providers with public-facing APIs; copyright may apply; not for resale; no warranties given."
)

// DefaultCurrencies is the target list walked every cycle.
var DefaultCurrencies = []string{
	"AED", "ANG", "ARS", "AUD", "BGN", "BHD", "BND", "BOB", "BRL", "BWP",
	"CAD", "CHF", "CLP", "CNY", "COP", "CRC", "CZK", "DKK", "DOP", "DZD",
	"EGP", "EUR", "FJD", "GBP", "HKD", "HNL", "HRK", "HUF", "IDR", "ILS",
	"INR", "JMD", "JOD", "JPY", "KES", "KRW", "KWD", "KYD", "KZT", "LBP",
	"LKR", "LTL", "LVL", "MAD", "MDL", "MKD", "MUR", "MXN", "MYR", "NAD",
	"NGN", "NIO", "NOK", "NPR", "NZD", "OMR", "PEN", "PGK", "PHP", "PKR",
	"PLN", "PYG", "QAR", "RON", "RSD", "RUB", "SAR", "SCR", "SEK", "SGD",
	"SLL", "SVC", "THB", "TND", "TRY", "TTD", "TWD", "TZS", "UAH", "UGX",
	"USD", "UYU", "UZS", "VND", "YER", "ZAR", "ZMK",
}

// Provider throttle defaults in milliseconds, used when throttle is negative.
var defaultThrottleMS = map[string]int{
	"googlecalc": 1000,
	"plaintext":  500,
	"pairsjson":  0,
}

type Provider struct {
	Name       string  `yaml:"name" json:"name" env:"FX_PROVIDER" env-default:"googlecalc"`
	Endpoint   string  `yaml:"endpoint" json:"endpoint" env:"FX_PROVIDER_ENDPOINT"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier" env:"FX_PROVIDER_MULTIPLIER" env-default:"1"`
	TimeoutSec int     `yaml:"timeout_sec" json:"timeout_sec" env:"FX_REQUEST_TIMEOUT_SEC" env-default:"15"`
	UserAgent  string  `yaml:"user_agent" json:"user_agent" env:"FX_USER_AGENT"`
}

type Schedule struct {
	// SleepMS is the idle time between the end of a cycle and the next.
	SleepMS int `yaml:"sleep" json:"sleep" env:"FX_SLEEP" env-default:"3600000"`
	// ThrottleMS is the delay between requests; negative picks the
	// provider default.
	ThrottleMS int `yaml:"throttle" json:"throttle" env:"FX_THROTTLE" env-default:"-1"`
}

type Output struct {
	Dir           string `yaml:"dir" json:"dir" env:"FX_OUTPUT_DIR" env-default:"."`
	LatestName    string `yaml:"latest" json:"latest" env:"FX_LATEST_NAME" env-default:"latest.json"`
	HistoricalDir string `yaml:"historical" json:"historical" env:"FX_HISTORICAL_DIR" env-default:"historical"`
	Disclaimer    string `yaml:"disclaimer" json:"disclaimer" env:"FX_DISCLAIMER"`
	License       string `yaml:"license" json:"license" env:"FX_LICENSE"`
}

type Archive struct {
	NoCommit bool   `yaml:"nocommit" json:"nocommit" env:"FX_NOCOMMIT" env-default:"false"`
	NoPush   bool   `yaml:"nopush" json:"nopush" env:"FX_NOPUSH" env-default:"false"`
	Remote   string `yaml:"remote" json:"remote" env:"FX_GIT_REMOTE" env-default:"origin"`
	Branch   string `yaml:"branch" json:"branch" env:"FX_GIT_BRANCH" env-default:"master"`
}

type Server struct {
	// Addr enables the artifact and metrics endpoints when set.
	Addr string `yaml:"addr" json:"addr" env:"FX_LISTEN"`
}

type Config struct {
	Base       string        `yaml:"base" json:"base" env:"FX_BASE" env-default:"USD"`
	Currencies []string      `yaml:"currencies" json:"currencies" env:"FX_CURRENCIES" env-separator:","`
	Provider   Provider      `yaml:"provider" json:"provider"`
	Schedule   Schedule      `yaml:"schedule" json:"schedule"`
	Output     Output        `yaml:"output" json:"output"`
	Archive    Archive       `yaml:"archive" json:"archive"`
	Log        logger.Config `yaml:"log" json:"log"`
	Server     Server        `yaml:"server" json:"server"`
}

// Load reads a YAML or JSON file, then the environment (after a .env file,
// if present). With an empty path FX_CONFIG is consulted; when neither
// names a file only the environment is read.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		path = os.Getenv("FX_CONFIG")
	}
	if path != "" {
		// A named file must exist; a typo must not fall back to defaults.
		if _, err := os.Stat(path); err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read env: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Base = strings.ToUpper(strings.TrimSpace(c.Base))
	if len(c.Currencies) == 0 {
		c.Currencies = append([]string(nil), DefaultCurrencies...)
	}
	for i, code := range c.Currencies {
		c.Currencies[i] = strings.ToUpper(strings.TrimSpace(code))
	}
	c.Provider.Name = strings.ToLower(strings.TrimSpace(c.Provider.Name))
	if c.Output.Disclaimer == "" {
		c.Output.Disclaimer = DefaultDisclaimer
	}
	if c.Output.License == "" {
		c.Output.License = DefaultLicense
	}
}

// Validate reports configuration the scraper cannot start with.
func (c Config) Validate() error {
	var errs []error
	if !aggregate.ValidCode(c.Base) {
		errs = append(errs, fmt.Errorf("base %q is not a 3-letter currency code", c.Base))
	}
	for _, code := range c.Currencies {
		if !aggregate.ValidCode(code) {
			errs = append(errs, fmt.Errorf("currency %q is not a 3-letter currency code", code))
		}
	}
	if _, ok := defaultThrottleMS[c.Provider.Name]; !ok {
		errs = append(errs, fmt.Errorf("unknown provider %q", c.Provider.Name))
	}
	if c.Provider.Name != "googlecalc" && c.Provider.Endpoint == "" {
		errs = append(errs, fmt.Errorf("provider %q needs an endpoint", c.Provider.Name))
	}
	if c.Schedule.SleepMS < 0 {
		errs = append(errs, errors.New("sleep must not be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) Sleep() time.Duration {
	return time.Duration(c.Schedule.SleepMS) * time.Millisecond
}

// Throttle is the configured inter-request delay, or the provider default.
func (c Config) Throttle() time.Duration {
	ms := c.Schedule.ThrottleMS
	if ms < 0 {
		ms = defaultThrottleMS[c.Provider.Name]
	}
	return time.Duration(ms) * time.Millisecond
}

func (c Config) RequestTimeout() time.Duration {
	if c.Provider.TimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Provider.TimeoutSec) * time.Second
}

// Commit and Push resolve the archive switches; push needs commit.
func (c Config) Commit() bool { return !c.Archive.NoCommit }
func (c Config) Push() bool   { return c.Commit() && !c.Archive.NoPush }
