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


//nolint:revive // naming conventions acceptable in test code
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/onsi/ginkgo/v2"

	"github.com/nscaledev/uni-apitest/pkg/auth"
	"github.com/nscaledev/uni-apitest/pkg/constants"
	"github.com/nscaledev/uni-apitest/pkg/report"
	"github.com/nscaledev/uni-apitest/pkg/request"
)

// GameClient drives the backend through the request engine.
type GameClient struct {
	config    *TestConfig
	auth      *auth.Client
	engine    *request.Engine
	collector *report.Collector
	endpoints *Endpoints
	token     *auth.AuthResponse
}

// NewGameClient creates a client from the test configuration.  No token is
// acquired until Authenticate is called.
func NewGameClient(config *TestConfig) *GameClient {
	logger := ginkgo.GinkgoLogr.WithName("apitest")

	collector := report.New()

	httpClient := &http.Client{
		Timeout: config.RequestTimeout,
	}

	authClient := auth.New(config.ClientID, config.ClientSecret, auth.GrantType(config.GrantType), config.TokenBaseURL(),
		auth.WithHTTPClient(httpClient),
		auth.WithLogger(logger.WithName("auth")),
	)

	engine := request.New(config.BaseURL, nil,
		request.WithHTTPClient(httpClient),
		request.WithLogger(logger.WithName("engine")),
		request.WithRecorder(collector),
		request.WithTimeout(config.RequestTimeout),
		request.WithBodyLogging(config.LogResponses),
		request.WithDefaultHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": constants.VersionString(),
		}),
	)

	return &GameClient{
		config:    config,
		auth:      authClient,
		engine:    engine,
		collector: collector,
		endpoints: NewEndpoints(),
	}
}

// Engine returns the underlying request engine.
func (c *GameClient) Engine() *request.Engine {
	return c.engine
}

// Collector returns the assertion outcomes recorded so far.
func (c *GameClient) Collector() *report.Collector {
	return c.collector
}

// Auth returns the token client.
func (c *GameClient) Auth() *auth.Client {
	return c.auth
}

// Token returns the token most recently acquired.
func (c *GameClient) Token() *auth.AuthResponse {
	return c.token
}

// Authenticate acquires a token with the given grant and uses it for all
// subsequent bearer authenticated requests.
func (c *GameClient) Authenticate(ctx context.Context, grant auth.Grant) (*auth.AuthResponse, error) {
	token, err := c.auth.Token(ctx, grant)
	if err != nil {
		return nil, fmt.Errorf("authenticating with %s: %w", grant.Type(), err)
	}

	c.useToken(token)

	return token, nil
}

// AuthenticateDefault acquires a token with the configured grant.
func (c *GameClient) AuthenticateDefault(ctx context.Context) (*auth.AuthResponse, error) {
	return c.Authenticate(ctx, auth.NewGrant(auth.GrantType(c.config.GrantType), c.config.GrantParams()))
}

// Refresh exchanges the current refresh token for a new token.
func (c *GameClient) Refresh(ctx context.Context) (*auth.AuthResponse, error) {
	token, err := c.auth.Refresh(ctx, c.token)
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	c.useToken(token)

	return token, nil
}

func (c *GameClient) useToken(token *auth.AuthResponse) {
	c.token = token
	c.engine.SetToken(token)

	if c.config.LogRequests {
		ginkgo.GinkgoWriter.Printf("[auth] acquired %s token for client %s expires=%s\n", token.TokenType, token.ClientID, token.ExpiresAt)
	}
}

// ServiceStatus queries a single service.
func (c *GameClient) ServiceStatus(ctx context.Context, service string, authenticated bool) *request.Pending {
	return c.engine.Get(ctx, fmt.Sprintf("%s status", service), request.TestOptions{
		Endpoint:   c.endpoints.ServiceStatus(service),
		BearerAuth: authenticated,
	})
}

// BulkStatus queries several services at once.
func (c *GameClient) BulkStatus(ctx context.Context, services ...string) *request.Pending {
	query := make([]request.QueryParam, len(services))

	for i, service := range services {
		query[i] = request.QueryParam{Key: "serviceId", Value: service}
	}

	return c.engine.Get(ctx, "bulk status", request.TestOptions{
		Endpoint:   c.endpoints.BulkStatus(),
		Query:      query,
		BearerAuth: true,
	})
}
