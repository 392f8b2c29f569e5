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
	"net/http"
	"slices"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nscaledev/uni-apitest/pkg/auth"
	"github.com/nscaledev/uni-apitest/pkg/request"
	"github.com/nscaledev/uni-apitest/pkg/stub"
	"github.com/nscaledev/uni-apitest/test/api"
)

var _ = Describe("Lightswitch Service Status", func() {
	Context("When querying a single service", func() {
		Describe("Given a valid bearer token", func() {
			BeforeEach(func() {
				_, err := client.AuthenticateDefault(ctx)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should report the service status", func() {
				service := "Fortnite"
				if len(config.Services) > 0 {
					service = config.Services[0]
				}

				step := client.ServiceStatus(ctx, service, true).Expects().
					ToHaveStatus(http.StatusOK).Expects().
					ToHaveHeader("Content-Type").Expects().
					ToHaveProperty("serviceInstanceId").Expects().
					ToHaveProperty("status")

				result, err := step.Await(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Status).To(Equal(http.StatusOK))
				Expect(result.TraceID).To(HaveLen(32))

				Expect(client.Collector().Failed()).To(BeFalse())
				Expect(client.Collector().Summary().Passed).To(Equal(4))
			})

			It("should report the exact status of a known service", func() {
				requireStub()

				step := client.ServiceStatus(ctx, "fortnite", true).Expects().
					ToMatchData(map[string]any{
						"banned":            false,
						"status":            "UP",
						"serviceInstanceId": "fortnite",
					})

				outcome, err := step.Outcome(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.Passed).To(BeTrue(), outcome.Message)
			})

			It("should match service names case insensitively", func() {
				requireStub()

				step := client.ServiceStatus(ctx, "FALL GUYS", true).Expects().
					ToHaveProperty("serviceInstanceId", "fallguys").Expects().
					ToHaveProperty("status", "DOWN")

				_, err := step.Await(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(client.Collector().Failed()).To(BeFalse())
			})

			It("should return not found for unknown services", func() {
				requireStub()

				step := client.ServiceStatus(ctx, "unknown", true).Expects().
					ToHaveStatus(http.StatusNotFound).Expects().
					ToHaveProperty("errorCode", "service_not_found")

				_, err := step.Await(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(client.Collector().Failed()).To(BeFalse())
			})
		})

		Describe("Given no bearer token", func() {
			It("should reject the request with 401 Unauthorized", func() {
				step := client.ServiceStatus(ctx, "Fortnite", false).Expects().
					ToHaveStatus(http.StatusUnauthorized)

				outcome, err := step.Outcome(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.Passed).To(BeTrue(), outcome.Message)
			})
		})

		Describe("Given an assertion that fails", func() {
			It("should still evaluate later assertions", func() {
				requireStub()

				_, err := client.AuthenticateDefault(ctx)
				Expect(err).NotTo(HaveOccurred())

				step := client.ServiceStatus(ctx, "fortnite", true).Expects().
					ToHaveStatus(http.StatusTeapot).Expects().
					ToHaveProperty("status", "UP")

				outcome, err := step.Outcome(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.Passed).To(BeTrue())

				outcomes := client.Collector().Outcomes()
				Expect(outcomes).To(HaveLen(2))
				Expect(client.Collector().Failed()).To(BeTrue())

				failed := slices.IndexFunc(outcomes, func(o request.Outcome) bool { return !o.Passed })
				Expect(failed).NotTo(Equal(-1))
				Expect(outcomes[failed].Message).To(ContainSubstring("expected status 418, got 200"))
			})
		})
	})

	Context("When querying several services at once", func() {
		Describe("Given a valid bearer token", func() {
			It("should return every known service and skip unknown ones", func() {
				requireStub()

				_, err := client.AuthenticateDefault(ctx)
				Expect(err).NotTo(HaveOccurred())

				step := client.BulkStatus(ctx, "fortnite", "Fall Guys", "unknown").Expects().
					ToHaveStatus(http.StatusOK).Expects().
					ToMatchData([]stub.ServiceStatus{
						{ServiceInstanceID: "fortnite", Status: "UP"},
						{ServiceInstanceID: "fallguys", Status: "DOWN"},
					})

				_, err = step.Await(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(client.Collector().Failed()).To(BeFalse())
				Expect(backend.StatusRequests()).To(Equal(1))
			})
		})
	})

	Context("When a token is refreshed", func() {
		Describe("Given a password grant token", func() {
			It("should continue to authorize requests with the new token", func() {
				requireStub()

				first, err := client.Authenticate(ctx, auth.PasswordGrant{
					Username: api.StubUsername,
					Password: api.StubPassword,
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(first.RefreshToken).NotTo(BeEmpty())

				second, err := client.Refresh(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(second.AccessToken).NotTo(Equal(first.AccessToken))

				step := client.ServiceStatus(ctx, "fortnite", true).Expects().
					ToHaveStatus(http.StatusOK)

				outcome, err := step.Outcome(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.Passed).To(BeTrue(), outcome.Message)
			})
		})
	})
})
