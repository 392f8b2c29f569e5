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
	"context"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/nscaledev/uni-apitest/pkg/report"
	"github.com/nscaledev/uni-apitest/pkg/request"
	"github.com/nscaledev/uni-apitest/test/api"
)

var _ = Describe("Request Engine", func() {
	var (
		server    *ghttp.Server
		engine    *request.Engine
		collector *report.Collector
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		DeferCleanup(server.Close)

		collector = report.New()

		engine = request.New(server.URL(), request.StaticToken("s3cr3t"),
			request.WithLogger(GinkgoLogr),
			request.WithRecorder(collector),
			request.WithDefaultHeaders(map[string]string{
				"X-Harness": "apitest",
			}),
		)
	})

	Context("When several chains share an exchange", func() {
		It("should send exactly one request", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/players/1"),
				ghttp.VerifyHeaderKV("X-Harness", "apitest"),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"id":    1,
					"stats": map[string]any{"wins": 7},
				}),
			))

			pending := engine.Get(ctx, api.NewTestID("player"), request.TestOptions{Endpoint: "/players/1"})

			status := pending.Expects().ToHaveStatus(http.StatusOK)
			wins := pending.Expects().ToHaveProperty("stats.wins", 7)
			shape := status.Expects().ToHaveData(func(data any) bool {
				_, ok := data.(map[string]any)
				return ok
			})

			Expect(request.AwaitAll(ctx, status, wins, shape)).To(Succeed())

			Expect(server.ReceivedRequests()).To(HaveLen(1))
			Expect(collector.Summary()).To(Equal(report.Summary{Tests: 1, Assertions: 3, Passed: 3}))
		})
	})

	Context("When sending query parameters", func() {
		It("should preserve their order and escape them", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/search", "z=last+one&a=1&z=%26"),
				ghttp.RespondWith(http.StatusNoContent, nil),
			))

			step := engine.Get(ctx, "search", request.TestOptions{
				Endpoint: "/search",
				Query:    request.Query("z", "last one", "a", 1, "z", "&"),
			}).Expects().ToHaveStatus(http.StatusNoContent)

			outcome, err := step.Outcome(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Passed).To(BeTrue(), outcome.Message)
		})
	})

	Context("When sending a body", func() {
		It("should encode JSON with bearer authentication", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/matches"),
				ghttp.VerifyHeaderKV("Authorization", "Bearer s3cr3t"),
				ghttp.VerifyHeaderKV("Content-Type", "application/json"),
				ghttp.VerifyJSON(`{"mode": "solo", "players": 100}`),
				ghttp.RespondWithJSONEncoded(http.StatusCreated, map[string]any{"id": "m-1"}),
			))

			step := engine.Post(ctx, "create match", request.TestOptions{
				Endpoint:   "/matches",
				Body:       map[string]any{"mode": "solo", "players": 100},
				BearerAuth: true,
			}).Expects().ToHaveStatus(http.StatusCreated).Expects().ToMatchData(map[string]any{"id": "m-1"})

			_, err := step.Await(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(collector.Failed()).To(BeFalse())
		})

		It("should let the transport choose the multipart content type", func() {
			options := request.TestOptions{
				Endpoint: "/replays",
				BodyKind: request.BodyFormData,
				Body: map[string]any{
					"title": "clutch",
					"replay": request.FormFile{
						Filename:    "clutch.replay",
						ContentType: "application/octet-stream",
						Data:        []byte{0xde, 0xad},
					},
				},
			}

			Expect(engine.Headers(options)).NotTo(HaveKey("Content-Type"))

			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/replays"),
				func(w http.ResponseWriter, r *http.Request) {
					defer GinkgoRecover()

					Expect(r.Header.Get("Content-Type")).To(HavePrefix("multipart/form-data; boundary="))
					Expect(r.ParseMultipartForm(1 << 20)).To(Succeed())
					Expect(r.MultipartForm.Value["title"]).To(Equal([]string{"clutch"}))
					Expect(r.MultipartForm.File["replay"]).To(HaveLen(1))
					Expect(r.MultipartForm.File["replay"][0].Filename).To(Equal("clutch.replay"))
				},
				ghttp.RespondWith(http.StatusAccepted, "queued", http.Header{"Content-Type": {"text/plain"}}),
			))

			options.Method = http.MethodPost

			step := engine.Test(ctx, "upload replay", options).Expects().ToMatchData("queued")

			outcome, err := step.Outcome(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Passed).To(BeTrue(), outcome.Message)
		})

		It("should not send a body with GET", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/ignored"),
				func(w http.ResponseWriter, r *http.Request) {
					defer GinkgoRecover()

					Expect(r.ContentLength).To(BeZero())
				},
				ghttp.RespondWith(http.StatusOK, nil),
			))

			_, err := engine.Get(ctx, "ignored body", request.TestOptions{
				Endpoint: "/ignored",
				Body:     map[string]any{"dropped": true},
			}).Await(ctx)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("When the exchange cannot complete", func() {
		It("should abort the chain on network failure", func() {
			unreachable := request.New("http://127.0.0.1:1", nil, request.WithRecorder(collector))

			step := unreachable.Get(ctx, "unreachable", request.TestOptions{Endpoint: "/"}).Expects().ToHaveStatus(http.StatusOK)

			_, err := step.Await(ctx)
			Expect(err).To(MatchError(request.ErrNetwork))

			Expect(collector.Outcomes()).To(BeEmpty())
			Expect(collector.Aborted()).To(HaveLen(1))
			Expect(collector.Failed()).To(BeTrue())
		})

		It("should abort the chain on timeout", func() {
			release := make(chan struct{})
			DeferCleanup(func() { close(release) })

			server.AppendHandlers(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			})

			pending := engine.Get(ctx, "slow", request.TestOptions{
				Endpoint: "/slow",
				Timeout:  50 * time.Millisecond,
			})

			_, err := pending.Await(ctx)
			Expect(err).To(MatchError(request.ErrNetwork))
			Expect(err).To(MatchError(context.DeadlineExceeded))
		})

		It("should abort the chain on an unparseable body", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, "{", http.Header{"Content-Type": {"application/json"}}))

			_, err := engine.Get(ctx, "broken", request.TestOptions{Endpoint: "/broken"}).Expects().ToHaveStatus(http.StatusOK).Await(ctx)
			Expect(err).To(MatchError(request.ErrParse))
		})
	})
})
