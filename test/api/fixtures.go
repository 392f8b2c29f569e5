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


//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package api

import (
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"

	"github.com/nscaledev/uni-apitest/pkg/stub"
)

// Credentials known to the local backend.
const (
	StubClientID     = "ec684b8c687f479fadea3cb2ad83f5c6"
	StubClientSecret = "e1f31c211f28413186262d37a13fc84d"
	StubUsername     = "player@example.com"
	StubPassword     = "correct-horse-battery-staple"
	StubExchangeCode = "4d1c9b2e7f5a4f0b"
)

// StubServices are the services the local backend reports on.
func StubServices() map[string]stub.ServiceStatus {
	return map[string]stub.ServiceStatus{
		"fortnite": {
			ServiceInstanceID: "fortnite",
			Status:            "UP",
		},
		"fall guys": {
			ServiceInstanceID: "fallguys",
			Status:            "DOWN",
		},
	}
}

// StartStub runs the local backend for the duration of the current spec and
// returns it so specs can inspect request counts.
func StartStub() (*stub.Stub, *httptest.Server) {
	backend := stub.New(stub.Options{
		ClientID:     StubClientID,
		ClientSecret: StubClientSecret,
		Users: map[string]string{
			StubUsername: StubPassword,
		},
		ExchangeCodes: []string{StubExchangeCode},
		Services:      StubServices(),
		Logger:        GinkgoLogr.WithName("stub"),
	})

	server := httptest.NewServer(backend)

	DeferCleanup(server.Close)

	return backend, server
}

// Configure points the configuration at a running stub.
func Configure(config *TestConfig, server *httptest.Server) {
	config.BaseURL = server.URL
	config.AuthBaseURL = ""
	config.ClientID = StubClientID
	config.ClientSecret = StubClientSecret
	config.Username = StubUsername
	config.Password = StubPassword
	config.ExchangeCode = StubExchangeCode
}
