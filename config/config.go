// Package config holds the explicit configuration of the travel tools.
//
// Values are layered: defaults, then an optional YAML file, then a .env file, then process
// environment variables (prefix TRAVELKIT_). Validate names every missing required key.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rickchristie/travelkit"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "TRAVELKIT"

// Family identifies a group of provider APIs sharing a base URL and credentials.
type Family string

const (
	FamilyFlight    Family = "flight"
	FamilyTransport Family = "transport"
	FamilyBooking   Family = "booking"
)

// Config enumerates every setting the tools read. It is read-only after Load.
type Config struct {
	RapidAPIKey string `yaml:"rapidapi_key" envconfig:"RAPIDAPI_KEY"`

	FlightBaseURL string `yaml:"flight_base_url" envconfig:"FLIGHT_BASE_URL"`
	FlightHost    string `yaml:"flight_host" envconfig:"FLIGHT_HOST"`

	TransportBaseURL string `yaml:"transport_base_url" envconfig:"TRANSPORT_BASE_URL"`
	TransportHost    string `yaml:"transport_host" envconfig:"TRANSPORT_HOST"`

	// BookingBaseURL defaults to TransportBaseURL when empty.
	BookingBaseURL string `yaml:"booking_base_url" envconfig:"BOOKING_BASE_URL"`
	BookingHost    string `yaml:"booking_host" envconfig:"BOOKING_HOST"`

	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	RetryAttempts  int           `yaml:"retry_attempts" envconfig:"RETRY_ATTEMPTS"`
	RetryBackoff   time.Duration `yaml:"retry_backoff" envconfig:"RETRY_BACKOFF"`

	// RequestsPerSecond limits outbound calls; 0 disables the limiter.
	RequestsPerSecond float64 `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND"`

	ResultLimit int    `yaml:"result_limit" envconfig:"RESULT_LIMIT"`
	Currency    string `yaml:"currency" envconfig:"CURRENCY"`

	// StrictStatusLookup applies the booking id format check to status lookups too.
	StrictStatusLookup bool `yaml:"strict_status_lookup" envconfig:"STRICT_STATUS_LOOKUP"`

	LLM LLMConfig `yaml:"llm" envconfig:"LLM"`

	ListenAddr string `yaml:"listen_addr" envconfig:"LISTEN_ADDR"`
}

// LLMConfig configures the chat model used by the interactive agent.
type LLMConfig struct {
	APIKey  string `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL string `yaml:"base_url" envconfig:"BASE_URL"`
	Model   string `yaml:"model" envconfig:"MODEL"`
}

// Default returns a Config with every optional setting filled in.
func Default() *Config {
	return &Config{
		FlightBaseURL:      "https://tripadvisor-com1.p.rapidapi.com/flights",
		FlightHost:         "tripadvisor-com1.p.rapidapi.com",
		TransportBaseURL:   "https://transport-api.p.rapidapi.com",
		TransportHost:      "transport-api.p.rapidapi.com",
		RequestTimeout:     10 * time.Second,
		RetryAttempts:      3,
		RetryBackoff:       200 * time.Millisecond,
		ResultLimit:        10,
		Currency:           "USD",
		StrictStatusLookup: true,
		LLM: LLMConfig{
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "qwen-qwq-32b",
		},
		ListenAddr: ":8080",
	}
}

// ConfigurationError names every required key that is missing or invalid.
type ConfigurationError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "configuration error: " + strings.Join(parts, "; ")
}

// Is matches travelkit.ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == travelkit.ErrConfiguration
}

// Validate checks required keys and value ranges.
func (c *Config) Validate() error {
	cerr := &ConfigurationError{}
	if c.RapidAPIKey == "" {
		cerr.Missing = append(cerr.Missing, "RAPIDAPI_KEY")
	}
	if c.FlightBaseURL == "" {
		cerr.Missing = append(cerr.Missing, EnvPrefix+"_FLIGHT_BASE_URL")
	}
	if c.FlightHost == "" {
		cerr.Missing = append(cerr.Missing, EnvPrefix+"_FLIGHT_HOST")
	}
	if c.TransportBaseURL == "" {
		cerr.Missing = append(cerr.Missing, EnvPrefix+"_TRANSPORT_BASE_URL")
	}
	if c.TransportHost == "" {
		cerr.Missing = append(cerr.Missing, EnvPrefix+"_TRANSPORT_HOST")
	}
	if c.RequestTimeout <= 0 {
		cerr.Invalid = append(cerr.Invalid, EnvPrefix+"_REQUEST_TIMEOUT")
	}
	if c.RetryAttempts < 1 {
		cerr.Invalid = append(cerr.Invalid, EnvPrefix+"_RETRY_ATTEMPTS")
	}
	if c.ResultLimit < 1 {
		cerr.Invalid = append(cerr.Invalid, EnvPrefix+"_RESULT_LIMIT")
	}
	if c.RequestsPerSecond < 0 {
		cerr.Invalid = append(cerr.Invalid, EnvPrefix+"_REQUESTS_PER_SECOND")
	}
	if len(cerr.Missing) > 0 || len(cerr.Invalid) > 0 {
		return cerr
	}
	return nil
}

// Endpoint is the base URL and headers of one API family.
type Endpoint struct {
	BaseURL string
	Headers map[string]string
}

// Family returns the endpoint for an API family. Unknown or unconfigured families fail with
// a ConfigurationError instead of falling back to another family's credentials.
func (c *Config) Family(f Family) (Endpoint, error) {
	var base, host, key string
	switch f {
	case FamilyFlight:
		base, host, key = c.FlightBaseURL, c.FlightHost, "FLIGHT"
	case FamilyTransport:
		base, host, key = c.TransportBaseURL, c.TransportHost, "TRANSPORT"
	case FamilyBooking:
		base, host, key = c.BookingBaseURL, c.BookingHost, "BOOKING"
		if base == "" {
			base, key = c.TransportBaseURL, "TRANSPORT"
		}
		if host == "" {
			host = c.TransportHost
		}
	default:
		return Endpoint{}, &ConfigurationError{Invalid: []string{fmt.Sprintf("api family %q", f)}}
	}

	cerr := &ConfigurationError{}
	if c.RapidAPIKey == "" {
		cerr.Missing = append(cerr.Missing, "RAPIDAPI_KEY")
	}
	if base == "" {
		cerr.Missing = append(cerr.Missing, EnvPrefix+"_"+key+"_BASE_URL")
	}
	if host == "" {
		cerr.Missing = append(cerr.Missing, EnvPrefix+"_"+key+"_HOST")
	}
	if len(cerr.Missing) > 0 {
		return Endpoint{}, cerr
	}

	return Endpoint{
		BaseURL: strings.TrimRight(base, "/"),
		Headers: map[string]string{
			"X-RapidAPI-Key":  c.RapidAPIKey,
			"X-RapidAPI-Host": host,
		},
	}, nil
}

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// File is an optional YAML config file. A missing file is an error only when set.
	File string

	// EnvFiles are dotenv files loaded before reading the environment. Defaults to ".env";
	// missing default files are ignored.
	EnvFiles []string

	// SkipValidation returns the config without checking required keys.
	SkipValidation bool
}

// Load builds a Config from defaults, the YAML file, dotenv files and the environment.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", opts.File, err)
		}
	}

	envFiles := opts.EnvFiles
	explicit := len(envFiles) > 0
	if !explicit {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv.Load never overrides variables already set in the process.
		if err := godotenv.Load(f); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	// The unprefixed key is what existing deployments export.
	if cfg.RapidAPIKey == "" {
		cfg.RapidAPIKey = os.Getenv("RAPIDAPI_KEY")
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GROQ_API_KEY")
	}

	if opts.SkipValidation {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
