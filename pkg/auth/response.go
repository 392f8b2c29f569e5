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

package auth

import (
	"time"
)

// AuthResponse is the result of a successful token exchange.
type AuthResponse struct {
	AccessToken    string    `json:"access_token"`
	ExpiresIn      int       `json:"expires_in"`
	ExpiresAt      time.Time `json:"expires_at"`
	RefreshToken   string    `json:"refresh_token,omitempty"`
	TokenType      string    `json:"token_type"`
	ClientID       string    `json:"client_id"`
	InternalClient bool      `json:"internal_client"`
	ClientService  string    `json:"client_service"`
	AccountID      string    `json:"account_id,omitempty"`
}

// tokenResponse is the wire format returned by the token endpoint.
// expires_at is computed on receipt.
type tokenResponse struct {
	AccessToken    string `json:"access_token"`
	ExpiresIn      int    `json:"expires_in"`
	RefreshToken   string `json:"refresh_token"`
	TokenType      string `json:"token_type"`
	ClientID       string `json:"client_id"`
	InternalClient bool   `json:"internal_client"`
	ClientService  string `json:"client_service"`
	AccountID      string `json:"account_id"`
}

func (t *tokenResponse) toAuthResponse(receivedAt time.Time) *AuthResponse {
	return &AuthResponse{
		AccessToken:    t.AccessToken,
		ExpiresIn:      t.ExpiresIn,
		ExpiresAt:      receivedAt.Add(time.Duration(t.ExpiresIn) * time.Second),
		RefreshToken:   t.RefreshToken,
		TokenType:      t.TokenType,
		ClientID:       t.ClientID,
		InternalClient: t.InternalClient,
		ClientService:  t.ClientService,
		AccountID:      t.AccountID,
	}
}

// AccessTokenValue returns the bearer token.
func (r *AuthResponse) AccessTokenValue() string {
	if r == nil {
		return ""
	}

	return r.AccessToken
}

// Expired reports whether the token has expired at the given time.
func (r *AuthResponse) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
