package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/frankonly/upstamp/data"
)

// Environment variable names for upstamp configuration
const (
	EnvEndpoint    = "UPSTAMP_ENDPOINT"
	EnvHome        = "UPSTAMP_HOME"
	EnvTimeout     = "UPSTAMP_TIMEOUT"
	EnvRetries     = "UPSTAMP_RETRIES"
	EnvConcurrency = "UPSTAMP_CONCURRENCY"
	EnvRateLimit   = "UPSTAMP_RATE_LIMIT"
	EnvVerbose     = "UPSTAMP_VERBOSE"
	EnvLogFile     = "UPSTAMP_LOG_FILE"
)

const (
	DefaultEndpoint    = "http://localhost:10000/stamp"
	DefaultTimeout     = 30 * time.Second
	DefaultRetries     = 5
	DefaultConcurrency = 4

	// DefaultEnvFile is read when present, an explicit file must exist
	DefaultEnvFile = ".env"
)

type Config struct {
	Endpoint    string        `json:"endpoint"`
	Home        string        `json:"home"`
	Timeout     time.Duration `json:"timeout"`
	Retries     int           `json:"retries"`
	Concurrency int           `json:"concurrency"`
	// RateLimit is in requests per second, zero disables limiting
	RateLimit float64 `json:"rate_limit"`
	Verbose   bool    `json:"verbose"`
	LogFile   string  `json:"log_file,omitempty"`
}

func Default() *Config {
	return &Config{
		Endpoint:    DefaultEndpoint,
		Home:        data.DefaultHome(),
		Timeout:     DefaultTimeout,
		Retries:     DefaultRetries,
		Concurrency: DefaultConcurrency,
	}
}

// Load starts from Default, reads envFile into the environment and then
// applies the UPSTAMP_* variables. Variables already set in the process
// environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file %s: %w", DefaultEnvFile, err)
	}

	c := Default()
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvHome); v != "" {
		c.Home = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.LogFile = v
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		c.Timeout = timeout
	}
	if v := os.Getenv(EnvRetries); v != "" {
		retries, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvRetries, v, err)
		}
		c.Retries = retries
	}
	if v := os.Getenv(EnvConcurrency); v != "" {
		concurrency, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvConcurrency, v, err)
		}
		c.Concurrency = concurrency
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvRateLimit, v, err)
		}
		c.RateLimit = limit
	}
	if v := os.Getenv(EnvVerbose); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvVerbose, v, err)
		}
		c.Verbose = verbose
	}

	return nil
}

// Validate validates the upstamp configuration
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	endpoint, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", c.Endpoint)
	}
	if endpoint.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", c.Endpoint)
	}

	if c.Home == "" {
		return fmt.Errorf("home directory cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.Retries)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative, got %g", c.RateLimit)
	}

	return nil
}
