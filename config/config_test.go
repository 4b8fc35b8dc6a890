package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rickchristie/travelkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the credential variables for the duration of the test. Setting them to ""
// is not enough: envconfig treats a set-but-empty variable as a value.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"RAPIDAPI_KEY", "TRAVELKIT_RAPIDAPI_KEY", "GROQ_API_KEY", "TRAVELKIT_LLM_API_KEY",
	} {
		if prev, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { os.Setenv(k, prev) })
		}
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("RAPIDAPI_KEY", "secret")


	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.RapidAPIKey)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 10, cfg.ResultLimit)
	assert.Equal(t, "USD", cfg.Currency)
	assert.True(t, cfg.StrictStatusLookup)
}

func TestLoad_MissingKeyIsNamed(t *testing.T) {
	clearEnv(t)

	_, err := Load(LoadOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, travelkit.ErrConfiguration)

	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{"RAPIDAPI_KEY"}, cerr.Missing)
	assert.Contains(t, err.Error(), "RAPIDAPI_KEY")
}

func TestLoad_LayeredSources(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	file := filepath.Join(dir, "travelkit.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
rapidapi_key: from-file
currency: EUR
request_timeout: 3s
llm:
  model: file-model
`), 0o600))

	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("TRAVELKIT_CURRENCY=GBP\n"), 0o600))

	t.Setenv("TRAVELKIT_LLM_MODEL", "env-model")

	t.Cleanup(func() { os.Unsetenv("TRAVELKIT_CURRENCY") })
	cfg, err := Load(LoadOptions{File: file, EnvFiles: []string{envFile}})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.RapidAPIKey)
	assert.Equal(t, "GBP", cfg.Currency)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "env-model", cfg.LLM.Model)
}

func TestLoad_ExplicitEnvFileMustExist(t *testing.T) {
	clearEnv(t)
	_, err := Load(LoadOptions{EnvFiles: []string{filepath.Join(t.TempDir(), "nope.env")}})
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		missing []string
		invalid []string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name: "several missing keys are all named",
			mutate: func(c *Config) {
				c.RapidAPIKey = ""
				c.FlightHost = ""
				c.TransportBaseURL = ""
			},
			missing: []string{"RAPIDAPI_KEY", "TRAVELKIT_FLIGHT_HOST", "TRAVELKIT_TRANSPORT_BASE_URL"},
		},
		{
			name: "non positive timeout",
			mutate: func(c *Config) {
				c.RequestTimeout = 0
				c.RetryAttempts = 0
			},
			invalid: []string{"TRAVELKIT_REQUEST_TIMEOUT", "TRAVELKIT_RETRY_ATTEMPTS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			c.RapidAPIKey = "k"
			tt.mutate(c)

			err := c.Validate()
			if tt.missing == nil && tt.invalid == nil {
				assert.NoError(t, err)
				return
			}
			var cerr *ConfigurationError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.missing, cerr.Missing)
			assert.Equal(t, tt.invalid, cerr.Invalid)
		})
	}
}

func TestConfig_Family(t *testing.T) {
	c := Default()
	c.RapidAPIKey = "k"

	flight, err := c.Family(FamilyFlight)
	require.NoError(t, err)
	assert.Equal(t, "https://tripadvisor-com1.p.rapidapi.com/flights", flight.BaseURL)
	assert.Equal(t, "k", flight.Headers["X-RapidAPI-Key"])
	assert.Equal(t, "tripadvisor-com1.p.rapidapi.com", flight.Headers["X-RapidAPI-Host"])

	transport, err := c.Family(FamilyTransport)
	require.NoError(t, err)
	assert.Equal(t, "transport-api.p.rapidapi.com", transport.Headers["X-RapidAPI-Host"])

	booking, err := c.Family(FamilyBooking)
	require.NoError(t, err)
	assert.Equal(t, transport.BaseURL, booking.BaseURL)

	_, err = c.Family("hotel")
	assert.ErrorIs(t, err, travelkit.ErrConfiguration)

	c.FlightBaseURL = ""
	_, err = c.Family(FamilyFlight)
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{"TRAVELKIT_FLIGHT_BASE_URL"}, cerr.Missing)
}
