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


package api

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/nscaledev/uni-apitest/pkg/config"
)

// TestConfig extends the harness configuration with suite specific settings.
type TestConfig struct {
	*config.Config

	// TestTimeout bounds any single spec.
	TestTimeout time.Duration `env:"TEST_TIMEOUT" envDefault:"5m"`

	// UseStub is set when no backend is configured and the suites should
	// run against the in-process stub.
	UseStub bool
}

// LoadTestConfig loads configuration from environment variables and .env files.
// Returns an error if a backend is configured but incompletely.
func LoadTestConfig() (*TestConfig, error) {
	options, err := config.Load(
		"../../../test/.env", // From test/api/suites directory
	)
	if err != nil {
		return nil, err
	}

	testConfig := &TestConfig{
		Config: options,
	}

	if err := env.Parse(testConfig); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if options.BaseURL == "" {
		testConfig.UseStub = true

		return testConfig, nil
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	return testConfig, nil
}
