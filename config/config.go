// Package config provides configuration management for the Theo webhook
// relay. It layers a YAML file over defaults, expands environment variable
// references, and validates the result.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SystemInstruction is the fixed persona directive sent to the completion
// API with every request. It scopes the assistant to THT (ear, nose, and
// throat) topics, keeps answers short and professional, and forbids medical
// diagnosis or prescriptions. It is compiled into the binary and never
// changes at runtime.
const SystemInstruction = "Kamu adalah Theo, asisten virtual yang akan membantu menjawab pertanyaan seputar THT (Telinga, Hidung, dan Tenggorokan). " +
	"Jawablah dengan ramah, singkat, dan profesional. " +
	"Jika ada yang bertanya siapa Anda, perkenalkan diri Anda sebagai 'Theo', asisten yang siap membantu dengan informasi seputar THT. " +
	"Berikan jawaban yang singkat, padat, dan jelas. Hindari respon yang terlalu panjang. " +
	"Tugas utama Anda adalah memberikan informasi yang akurat dan umum terkait THT. " +
	"PENTING: JANGAN memberikan diagnosis medis, resep, atau anjuran pengobatan spesifik. " +
	"Selalu sarankan pengguna untuk berkonsultasi dengan dokter untuk masalah medis. " +
	"Jika ada pertanyaan di luar konteks THT, tolak dengan sopan dan jelaskan bahwa Anda hanya dapat menjawab pertanyaan seputar THT."

// Config represents the complete relay configuration. It combines server
// settings, completion client configuration, the outbound Fonnte client,
// logging preferences, and the optional webhook rate limit.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Fonnte    FonnteConfig    `yaml:"fonnte"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds server-specific configuration for the HTTP server.
// It defines timeouts, limits, and operational parameters.
type ServerConfig struct {
	// Port specifies the HTTP server port (default: 8080)
	Port int `yaml:"port" validate:"gte=0,lte=65535"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body (default: 30s)
	ReadTimeout time.Duration `yaml:"read_timeout" validate:"gte=0"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response (default: 45s)
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values (default: 1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes" validate:"gte=0"`

	// ShutdownTimeout specifies how long to wait for the server to shut
	// down gracefully before forcing termination (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

// LLMConfig holds completion-client configuration. The relay talks to a
// single hosted provider; the system instruction is fixed at compile time
// and is not configurable.
type LLMConfig struct {
	// Provider specifies the completion provider (default: "google")
	Provider string `yaml:"provider" validate:"required"`

	// Model is the model identifier (default: "gemini-2.5-flash")
	Model string `yaml:"model" validate:"required"`

	// APIKey is the authentication key for the provider's API.
	// Use environment references (e.g. ${GEMINI_API_KEY}) in the YAML.
	// An empty key leaves the relay running with the completion client
	// in its unavailable state.
	APIKey string `yaml:"api_key"`

	// Timeout bounds a single completion call (default: 30s)
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`

	// Breaker configures the circuit breaker around the completion leg
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the circuit breaker that guards the completion
// API. When the breaker is open, completion calls fail fast and the user
// receives the processing-error fallback.
type BreakerConfig struct {
	// MaxRequests is the number of requests allowed through in half-open
	// state (default: 1)
	MaxRequests uint32 `yaml:"max_requests"`

	// Interval is the cyclic period of the closed state (default: 60s)
	Interval time.Duration `yaml:"interval" validate:"gte=0"`

	// Timeout is the open-state period before becoming half-open
	// (default: 30s)
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`

	// FailureThreshold is the number of consecutive failures needed to
	// trip the circuit (default: 5)
	FailureThreshold uint32 `yaml:"failure_threshold"`
}

// FonnteConfig holds the outbound send client configuration.
type FonnteConfig struct {
	// Token is the Fonnte API authorization token. Use an environment
	// reference (e.g. ${FONNTE_API_TOKEN}) in the YAML. An empty token
	// makes every send attempt fail immediately without a network call.
	Token string `yaml:"token"`

	// Endpoint is the send API URL (default: https://api.fonnte.com/send)
	Endpoint string `yaml:"endpoint" validate:"required,url"`

	// Timeout bounds a single send call (default: 15s)
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	// Level sets logging verbosity: debug, info, warn, error
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Format specifies log output format: json or text
	Format string `yaml:"format" validate:"oneof=json text"`
}

// RateLimitConfig configures the optional per-client rate limit on the
// webhook endpoint. Disabled by default so the messaging platform is never
// throttled unless explicitly requested.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled"`

	// RequestsPerMinute is the sustained rate allowed per client IP
	// (default: 60)
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"gte=0"`

	// Burst is the instantaneous burst allowed per client IP (default: 10)
	Burst int `yaml:"burst" validate:"gte=0"`
}

// DefaultConfig returns a configuration that serves the relay out of the
// box: both secrets resolved from the conventional environment variables,
// bounded timeouts on both outbound legs, and the rate limiter off.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    45 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			Provider: "google",
			Model:    "gemini-2.5-flash",
			APIKey:   "${GEMINI_API_KEY}",
			Timeout:  30 * time.Second,
			Breaker: BreakerConfig{
				MaxRequests:      1,
				Interval:         60 * time.Second,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
		Fonnte: FonnteConfig{
			Token:    "${FONNTE_API_TOKEN}",
			Endpoint: "https://api.fonnte.com/send",
			Timeout:  15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerMinute: 60,
			Burst:             10,
		},
	}
}

// LoadFile loads configuration from a YAML file
func LoadFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// expandEnvVars resolves environment variable references within
// configuration strings. It supports the standard ${VAR} substitution and
// the ${VAR:-default} default-value syntax.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if i := strings.Index(key, ":-"); i >= 0 {
			envKey := key[:i]
			defaultValue := key[i+2:]
			if val := os.Getenv(envKey); val != "" {
				return val
			}
			return defaultValue
		}
		return os.Getenv(key)
	})
}

// Load loads configuration from an io.Reader. The YAML is decoded on top of
// DefaultConfig, so a partial file only overrides what it names. Environment
// references are expanded before decoding.
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	config := DefaultConfig()

	dec := yaml.NewDecoder(strings.NewReader(expandEnvVars(string(data))))
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// Default returns the defaults with environment references resolved, for
// running without a config file at all.
func Default() (*Config, error) {
	config := DefaultConfig()
	config.LLM.APIKey = expandEnvVars(config.LLM.APIKey)
	config.Fonnte.Token = expandEnvVars(config.Fonnte.Token)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks if the configuration is valid. Missing secrets are NOT a
// validation failure: the relay deliberately starts in a degraded state
// without them, logging the gap at startup instead of refusing to run.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("invalid %s: failed %q constraint", f.Namespace(), f.Tag())
		}
		return err
	}
	return nil
}
