/*
Copyright 2024-2025 the Unikorn Authors.
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads harness configuration from .env files, the
// environment and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nscaledev/uni-apitest/pkg/auth"
)

var (
	// ErrMissing is returned when required configuration is absent.
	ErrMissing = errors.New("missing required configuration")

	// ErrInvalid is returned when configuration is present but unusable.
	ErrInvalid = errors.New("invalid configuration")
)

// Config is everything needed to run the harness.
type Config struct {
	// BaseURL is the game backend.
	BaseURL string `env:"API_BASE_URL"`

	// AuthBaseURL hosts the token endpoint, defaulting to BaseURL.
	AuthBaseURL string `env:"AUTH_BASE_URL"`

	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	GrantType    string `env:"GRANT_TYPE" envDefault:"client_credentials"`
	Username     string `env:"AUTH_USERNAME"`
	Password     string `env:"AUTH_PASSWORD"`
	ExchangeCode string `env:"EXCHANGE_CODE"`
	RefreshToken string `env:"REFRESH_TOKEN"`

	// SuitesDir is searched for YAML suite files.
	SuitesDir string `env:"SUITES_DIR" envDefault:"test/suites"`

	// Services are checked by the built in lightswitch module.
	Services []string `env:"LIGHTSWITCH_SERVICES" envSeparator:"," envDefault:"Fortnite"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	DebugLogging bool `env:"DEBUG_LOGGING"`
	JSONLogging  bool `env:"JSON_LOGGING"`
	LogRequests  bool `env:"LOG_REQUESTS"`
	LogResponses bool `env:"LOG_RESPONSES"`

	// Verbose includes passing assertions in the report.
	Verbose bool `env:"REPORT_VERBOSE"`
}

// Load reads the first .env file found, if any, then the environment.
// Variables already set in the environment are not overridden by the file.
func Load(envPaths ...string) (*Config, error) {
	if err := loadEnvFile(envPaths); err != nil {
		return nil, err
	}

	config := &Config{}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("%w: parse env: %w", ErrInvalid, err)
	}

	return config, nil
}

func loadEnvFile(envPaths []string) error {
	for _, path := range envPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		if err := godotenv.Load(absPath); err != nil {
			return fmt.Errorf("%w: failed to load %s: %w", ErrInvalid, absPath, err)
		}

		return nil
	}

	// Not found, this is OK in CI/CD where env vars are set directly.
	return nil
}

// secret is a string flag whose value is never printed, so credentials
// loaded from the environment do not appear in usage output.
type secret struct {
	value *string
}

var _ pflag.Value = &secret{}

func (s *secret) String() string {
	return ""
}

func (s *secret) Set(value string) error {
	*s.value = value

	return nil
}

func (s *secret) Type() string {
	return "string"
}

// AddFlags registers flags for every setting, defaulting to the values
// already loaded.  Credential defaults are not shown.
func (c *Config) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&c.BaseURL, "base-url", c.BaseURL, "Game backend base URL.")
	f.StringVar(&c.AuthBaseURL, "auth-base-url", c.AuthBaseURL, "Account service base URL, defaults to the backend base URL.")
	f.StringVar(&c.ClientID, "client-id", c.ClientID, "OAuth client ID.")
	f.Var(&secret{&c.ClientSecret}, "client-secret", "OAuth client secret.")
	f.StringVar(&c.GrantType, "grant-type", c.GrantType, "OAuth grant type used to acquire the default token.")
	f.StringVar(&c.Username, "username", c.Username, "Username for the password grant.")
	f.Var(&secret{&c.Password}, "password", "Password for the password grant.")
	f.Var(&secret{&c.ExchangeCode}, "exchange-code", "Code for the exchange_code grant.")
	f.Var(&secret{&c.RefreshToken}, "refresh-token", "Token for the refresh_token grant.")
	f.StringVar(&c.SuitesDir, "suites", c.SuitesDir, "File or directory of YAML suites to run.")
	f.StringSliceVar(&c.Services, "services", c.Services, "Services checked by the built in lightswitch module, empty to disable it.")
	f.DurationVar(&c.RequestTimeout, "request-timeout", c.RequestTimeout, "Default per request timeout.")
	f.BoolVar(&c.DebugLogging, "debug", c.DebugLogging, "Enable debug logging.")
	f.BoolVar(&c.JSONLogging, "json", c.JSONLogging, "Log in JSON.")
	f.BoolVar(&c.LogRequests, "log-requests", c.LogRequests, "Log every request and response line.")
	f.BoolVar(&c.LogResponses, "log-responses", c.LogResponses, "Log every response body.")
	f.BoolVar(&c.Verbose, "verbose", c.Verbose, "Include passing assertions in the report.")
}

// TokenBaseURL is where the token endpoint lives.
func (c *Config) TokenBaseURL() string {
	if c.AuthBaseURL != "" {
		return c.AuthBaseURL
	}

	return c.BaseURL
}

// GrantParams returns the parameters for the default grant.
func (c *Config) GrantParams() auth.Params {
	return auth.Params{
		Username:     c.Username,
		Password:     c.Password,
		RefreshToken: c.RefreshToken,
		ExchangeCode: c.ExchangeCode,
	}
}

// requirement is a named setting that must not be empty.
type requirement struct {
	name  string
	value string
}

// Validate reports every missing required value at once.
func (c *Config) Validate() error {
	required := []requirement{
		{"API_BASE_URL", c.BaseURL},
		{"CLIENT_ID", c.ClientID},
		{"CLIENT_SECRET", c.ClientSecret},
		{"GRANT_TYPE", c.GrantType},
	}

	switch auth.GrantType(c.GrantType) {
	case auth.GrantTypePassword:
		required = append(required, requirement{"AUTH_USERNAME", c.Username}, requirement{"AUTH_PASSWORD", c.Password})
	case auth.GrantTypeRefreshToken:
		required = append(required, requirement{"REFRESH_TOKEN", c.RefreshToken})
	case auth.GrantTypeExchangeCode:
		required = append(required, requirement{"EXCHANGE_CODE", c.ExchangeCode})
	}

	var missing []string

	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s. Please set these environment variables, add them to a .env file or pass the equivalent flags", ErrMissing, strings.Join(missing, ", "))
	}

	if c.RequestTimeout < 0 {
		return fmt.Errorf("%w: request timeout %v is negative", ErrInvalid, c.RequestTimeout)
	}

	return nil
}
