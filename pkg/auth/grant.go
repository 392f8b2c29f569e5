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
	"net/url"
	"strings"
)

// GrantType identifies the OAuth2 flow used to obtain a token.
type GrantType string

const (
	GrantTypeClientCredentials GrantType = "client_credentials"
	GrantTypeExchangeCode      GrantType = "exchange_code"
	GrantTypeRefreshToken      GrantType = "refresh_token"
	GrantTypePassword          GrantType = "password"
)

// Known reports whether the grant type is one with structured parameters.
func (g GrantType) Known() bool {
	switch g {
	case GrantTypeClientCredentials, GrantTypeExchangeCode, GrantTypeRefreshToken, GrantTypePassword:
		return true
	}

	return false
}

// Grant is a token request for a single grant type.  Implementations are
// limited to the types in this package.
type Grant interface {
	// Type is the value sent as grant_type.
	Type() GrantType

	// validate returns the names of any required fields that are empty.
	validate() []string

	// values returns the grant specific form fields, excluding grant_type.
	values() url.Values
}

// ClientCredentialsGrant authenticates as the client itself.
type ClientCredentialsGrant struct{}

func (ClientCredentialsGrant) Type() GrantType {
	return GrantTypeClientCredentials
}

func (ClientCredentialsGrant) validate() []string {
	return nil
}

func (ClientCredentialsGrant) values() url.Values {
	return url.Values{}
}

// PasswordGrant authenticates an account with a username and password.
type PasswordGrant struct {
	Username string
	Password string
}

func (PasswordGrant) Type() GrantType {
	return GrantTypePassword
}

func (g PasswordGrant) validate() []string {
	var missing []string

	if g.Username == "" {
		missing = append(missing, "username")
	}

	if g.Password == "" {
		missing = append(missing, "password")
	}

	return missing
}

func (g PasswordGrant) values() url.Values {
	return url.Values{
		"username": {g.Username},
		"password": {g.Password},
	}
}

// RefreshTokenGrant trades a refresh token for a new access token.
type RefreshTokenGrant struct {
	RefreshToken string
}

func (RefreshTokenGrant) Type() GrantType {
	return GrantTypeRefreshToken
}

func (g RefreshTokenGrant) validate() []string {
	if g.RefreshToken == "" {
		return []string{"refresh_token"}
	}

	return nil
}

func (g RefreshTokenGrant) values() url.Values {
	return url.Values{
		"refresh_token": {g.RefreshToken},
	}
}

// ExchangeCodeGrant redeems a one time exchange code.
type ExchangeCodeGrant struct {
	ExchangeCode string
}

func (ExchangeCodeGrant) Type() GrantType {
	return GrantTypeExchangeCode
}

func (g ExchangeCodeGrant) validate() []string {
	if g.ExchangeCode == "" {
		return []string{"exchange_code"}
	}

	return nil
}

func (g ExchangeCodeGrant) values() url.Values {
	return url.Values{
		"exchange_code": {g.ExchangeCode},
	}
}

// ExtensionGrant is any grant type not modelled above.  Parameters are not
// validated and are sent verbatim.
type ExtensionGrant struct {
	GrantType GrantType
	Params    url.Values
}

func (g ExtensionGrant) Type() GrantType {
	return g.GrantType
}

func (ExtensionGrant) validate() []string {
	return nil
}

func (g ExtensionGrant) values() url.Values {
	values := url.Values{}

	for key, vals := range g.Params {
		// grant_type is owned by the client.
		if key == "grant_type" {
			continue
		}

		values[key] = append([]string(nil), vals...)
	}

	return values
}

// Params is a loose parameter record used when the grant type is chosen at
// runtime, e.g. from configuration.
type Params struct {
	Username     string
	Password     string
	RefreshToken string
	ExchangeCode string

	// Extra is forwarded as-is for extension grant types and ignored
	// otherwise.
	Extra url.Values
}

// NewGrant builds the grant for the given type from a loose parameter
// record.  Unknown grant types become an ExtensionGrant carrying every
// non-empty parameter.
func NewGrant(grantType GrantType, params Params) Grant {
	switch grantType {
	case GrantTypeClientCredentials:
		return ClientCredentialsGrant{}
	case GrantTypePassword:
		return PasswordGrant{Username: params.Username, Password: params.Password}
	case GrantTypeRefreshToken:
		return RefreshTokenGrant{RefreshToken: params.RefreshToken}
	case GrantTypeExchangeCode:
		return ExchangeCodeGrant{ExchangeCode: params.ExchangeCode}
	}

	values := url.Values{}

	for key, vals := range params.Extra {
		values[key] = append([]string(nil), vals...)
	}

	optional := map[string]string{
		"username":      params.Username,
		"password":      params.Password,
		"refresh_token": params.RefreshToken,
		"exchange_code": params.ExchangeCode,
	}

	for key, value := range optional {
		if value != "" {
			values.Set(key, value)
		}
	}

	return ExtensionGrant{
		GrantType: GrantType(strings.TrimSpace(string(grantType))),
		Params:    values,
	}
}
