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


//nolint:testpackage,revive // test package in suites is standard for these tests, dot imports standard for Ginkgo
package suites

import (
	"errors"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nscaledev/uni-apitest/pkg/auth"
	"github.com/nscaledev/uni-apitest/test/api"
)

var _ = Describe("Account Authentication", func() {
	Context("When requesting a token", func() {
		BeforeEach(func() {
			requireStub()
		})

		DescribeTable("Given valid grant parameters",
			func(grant auth.Grant, withRefresh bool) {
				start := time.Now()

				token, err := client.Authenticate(ctx, grant)
				Expect(err).NotTo(HaveOccurred())

				Expect(token.AccessToken).NotTo(BeEmpty())
				Expect(token.TokenType).To(Equal("bearer"))
				Expect(token.ClientID).To(Equal(api.StubClientID))
				Expect(token.ExpiresAt).To(BeTemporally(">=", start.Add(time.Hour)))
				Expect(token.Expired(time.Now())).To(BeFalse())

				if withRefresh {
					Expect(token.RefreshToken).NotTo(BeEmpty())
				} else {
					Expect(token.RefreshToken).To(BeEmpty())
				}

				Expect(backend.TokenRequests()).To(Equal(1))
			},
			Entry("client credentials", auth.ClientCredentialsGrant{}, false),
			Entry("password", auth.PasswordGrant{Username: api.StubUsername, Password: api.StubPassword}, true),
			Entry("exchange code", auth.ExchangeCodeGrant{ExchangeCode: api.StubExchangeCode}, true),
		)

		DescribeTable("Given missing grant parameters",
			func(grant auth.Grant, missing string) {
				_, err := client.Authenticate(ctx, grant)
				Expect(err).To(MatchError(auth.ErrInvalidParameters))
				Expect(err.Error()).To(ContainSubstring(missing))

				// Validation happens before anything is sent.
				Expect(backend.TokenRequests()).To(BeZero())
			},
			Entry("password without a password", auth.PasswordGrant{Username: api.StubUsername}, "password"),
			Entry("password without a username", auth.PasswordGrant{Password: api.StubPassword}, "username"),
			Entry("exchange code", auth.ExchangeCodeGrant{}, "exchange_code"),
			Entry("refresh token", auth.RefreshTokenGrant{}, "refresh_token"),
		)

		Describe("Given incorrect client credentials", func() {
			It("should fail with the endpoint's response", func() {
				impostor := auth.New(api.StubClientID, "wrong", auth.GrantTypeClientCredentials, config.TokenBaseURL())
				Expect(impostor.TokenEndpoint()).To(Equal(config.TokenBaseURL() + api.NewEndpoints().Token()))

				_, err := impostor.Token(ctx, auth.ClientCredentialsGrant{})
				Expect(err).To(MatchError(auth.ErrAuthenticationFailed))

				var failed *auth.AuthenticationFailedError

				Expect(errors.As(err, &failed)).To(BeTrue())
				Expect(failed.StatusCode).To(Equal(http.StatusUnauthorized))
				Expect(failed.Body).To(ContainSubstring("invalid_client"))
			})
		})

		Describe("Given a single use credential", func() {
			It("should reject an exchange code the second time", func() {
				grant := auth.ExchangeCodeGrant{ExchangeCode: api.StubExchangeCode}

				_, err := client.Authenticate(ctx, grant)
				Expect(err).NotTo(HaveOccurred())

				_, err = client.Authenticate(ctx, grant)
				Expect(err).To(MatchError(auth.ErrAuthenticationFailed))
			})

			It("should reject a refresh token the second time", func() {
				token, err := client.Authenticate(ctx, auth.PasswordGrant{Username: api.StubUsername, Password: api.StubPassword})
				Expect(err).NotTo(HaveOccurred())

				_, err = client.Auth().Refresh(ctx, token)
				Expect(err).NotTo(HaveOccurred())

				_, err = client.Auth().Refresh(ctx, token)
				Expect(err).To(MatchError(auth.ErrAuthenticationFailed))
			})
		})

		Describe("Given an unsupported grant type", func() {
			It("should pass the grant through and report the rejection", func() {
				grant := auth.NewGrant("device_code", auth.Params{})

				_, err := client.Authenticate(ctx, grant)
				Expect(err).To(MatchError(auth.ErrAuthenticationFailed))
				Expect(err.Error()).To(ContainSubstring("unsupported_grant_type"))
				Expect(backend.TokenRequests()).To(Equal(1))
			})
		})
	})

	Context("When a token is used", func() {
		It("should authorize bearer requests only once acquired", func() {
			service := "Fortnite"
			if len(config.Services) > 0 {
				service = config.Services[0]
			}

			before := client.ServiceStatus(ctx, service, true).Expects().ToHaveStatus(http.StatusUnauthorized)

			_, err := before.Await(ctx)
			Expect(err).NotTo(HaveOccurred())

			_, err = client.AuthenticateDefault(ctx)
			Expect(err).NotTo(HaveOccurred())

			after := client.ServiceStatus(ctx, service, true).Expects().ToHaveStatus(http.StatusOK)

			_, err = after.Await(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(client.Collector().Failed()).To(BeFalse())
		})
	})
})
