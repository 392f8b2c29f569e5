/*
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

//go:generate mockgen -source=client.go -destination=mock/interfaces.go -package=mock

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/nscaledev/uni-apitest/pkg/constants"
)

// Doer performs a single HTTP exchange.  *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client obtains bearer tokens from the account service.
type Client struct {
	// clientID and clientSecret are sent as HTTP basic credentials.
	clientID     string
	clientSecret string

	// grantType is used by DefaultToken.
	grantType GrantType

	// endpoint is the fully qualified token endpoint.
	endpoint string

	http   Doer
	logger logr.Logger
	now    func() time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		c.http = doer
	}
}

// WithLogger sets the logger, by default nothing is logged.
func WithLogger(logger logr.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock overrides the time source used to compute token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New returns a client for the token endpoint under baseURL.
func New(clientID, clientSecret string, grantType GrantType, baseURL string, options ...Option) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		grantType:    grantType,
		endpoint:     strings.TrimSuffix(baseURL, "/") + constants.TokenPath,
		http:         &http.Client{Timeout: 30 * time.Second},
		logger:       logr.Discard(),
		now:          time.Now,
	}

	for _, o := range options {
		o(c)
	}

	return c
}

// TokenEndpoint returns the URL tokens are requested from.
func (c *Client) TokenEndpoint() string {
	return c.endpoint
}

// GrantType returns the default grant type.
func (c *Client) GrantType() GrantType {
	return c.grantType
}

// DefaultToken acquires a token using the client's default grant type.
func (c *Client) DefaultToken(ctx context.Context, params Params) (*AuthResponse, error) {
	return c.Token(ctx, NewGrant(c.grantType, params))
}

// Refresh exchanges the refresh token from a previous response for a new
// access token.
func (c *Client) Refresh(ctx context.Context, previous *AuthResponse) (*AuthResponse, error) {
	if previous == nil {
		return nil, &InvalidParametersError{GrantType: GrantTypeRefreshToken, Missing: []string{"refresh_token"}}
	}

	return c.Token(ctx, RefreshTokenGrant{RefreshToken: previous.RefreshToken})
}

// Token validates the grant and exchanges it for a token.
func (c *Client) Token(ctx context.Context, grant Grant) (*AuthResponse, error) {
	log := c.logger.WithValues("grantType", grant.Type())

	if missing := grant.validate(); len(missing) > 0 {
		err := &InvalidParametersError{
			GrantType: grant.Type(),
			Missing:   missing,
		}

		log.Error(err, "token request rejected")

		return nil, err
	}

	form := grant.values()
	form.Set("grant_type", string(grant.Type()))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	log.Info("requesting token", "endpoint", c.endpoint, "clientID", c.clientID)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error(err, "token request failed")

		return nil, fmt.Errorf("token request failed: %w", err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error(err, "reading token response")

		return nil, fmt.Errorf("reading token response: %w", err)
	}

	receivedAt := c.now()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err := &AuthenticationFailedError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}

		log.Error(err, "token request unauthorized", "status", resp.StatusCode)

		return nil, err
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		log.Error(err, "decoding token response")

		return nil, fmt.Errorf("decoding token response: %w", err)
	}

	result := token.toAuthResponse(receivedAt)

	log.Info("token acquired", "accountID", result.AccountID, "expiresAt", result.ExpiresAt)

	return result, nil
}
