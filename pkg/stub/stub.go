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

// Package stub is an in-memory imitation of the game backend's account and
// lightswitch services, enough to exercise the harness end to end without
// real credentials.
package stub

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"

	"github.com/nscaledev/uni-apitest/pkg/auth"
	"github.com/nscaledev/uni-apitest/pkg/constants"
)

const (
	// DefaultTokenTTL is how long issued access tokens are valid for.
	DefaultTokenTTL = time.Hour

	// ClientService is reported as the client_service of every token.
	ClientService = "apitest"
)

// ServiceStatus is what the lightswitch service reports for a service.
type ServiceStatus struct {
	ServiceInstanceID string `json:"serviceInstanceId"`
	Status            string `json:"status"`
	Banned            bool   `json:"banned"`
}

// Options configure the stub.
type Options struct {
	ClientID     string
	ClientSecret string

	// Users are username to password mappings for the password grant.
	Users map[string]string

	// ExchangeCodes are single use codes for the exchange_code grant.
	ExchangeCodes []string

	// Services are the known services, keyed case insensitively.  Services
	// not listed are not found.  When nil every service is reported as up.
	Services map[string]ServiceStatus

	// TokenTTL defaults to DefaultTokenTTL.
	TokenTTL time.Duration

	Logger logr.Logger
}

type session struct {
	accountID string
	expiresAt time.Time
}

// Stub is the fake backend.
type Stub struct {
	options Options
	router  *chi.Mux

	lock          sync.Mutex
	accessTokens  map[string]session
	refreshTokens map[string]session
	exchangeCodes map[string]struct{}

	tokenRequests  atomic.Int32
	statusRequests atomic.Int32
}

// New creates a stub backend.
func New(options Options) *Stub {
	if options.TokenTTL == 0 {
		options.TokenTTL = DefaultTokenTTL
	}

	if options.Logger.GetSink() == nil {
		options.Logger = logr.Discard()
	}

	s := &Stub{
		options:       options,
		accessTokens:  map[string]session{},
		refreshTokens: map[string]session{},
		exchangeCodes: map[string]struct{}{},
	}

	for _, code := range options.ExchangeCodes {
		s.exchangeCodes[code] = struct{}{}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.requestLog)

	r.Post(constants.TokenPath, s.token)

	r.Route("/lightswitch/api/service", func(r chi.Router) {
		r.Use(s.bearerAuth)

		r.Get("/bulk/status", s.bulkStatus)
		r.Get("/{service}/status", s.status)
	})

	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Stub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// TokenRequests is the number of token exchanges attempted.
func (s *Stub) TokenRequests() int {
	return int(s.tokenRequests.Load())
}

// StatusRequests is the number of lightswitch requests attempted.
func (s *Stub) StatusRequests() int {
	return int(s.statusRequests.Load())
}

// IssueToken mints a valid access token directly, for tests that don't
// care about the token exchange.
func (s *Stub) IssueToken(accountID string) string {
	s.lock.Lock()
	defer s.lock.Unlock()

	token := randomToken()

	s.accessTokens[token] = session{
		accountID: accountID,
		expiresAt: time.Now().Add(s.options.TokenTTL),
	}

	return token
}

func randomToken() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError writes an error in the backend's error format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"errorCode":        code,
		"errorMessage":     message,
		"numericErrorCode": status,
	})
}

func (s *Stub) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		start := time.Now()

		next.ServeHTTP(ww, r)

		s.options.Logger.V(1).Info("request", "requestID", chimw.GetReqID(r.Context()), "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "elapsed", time.Since(start), "traceparent", r.Header.Get("traceparent"))
	})
}

// token implements the token endpoint for every supported grant.
func (s *Stub) token(w http.ResponseWriter, r *http.Request) {
	s.tokenRequests.Add(1)

	clientID, clientSecret, ok := r.BasicAuth()
	if !ok || clientID != s.options.ClientID || clientSecret != s.options.ClientSecret {
		writeError(w, http.StatusUnauthorized, "invalid_client", "client authentication failed")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	var accountID string

	withRefresh := true

	switch auth.GrantType(r.PostForm.Get("grant_type")) {
	case auth.GrantTypeClientCredentials:
		withRefresh = false
	case auth.GrantTypePassword:
		username := r.PostForm.Get("username")

		password, ok := s.options.Users[username]
		if !ok || password != r.PostForm.Get("password") {
			writeError(w, http.StatusBadRequest, "invalid_grant", "invalid account credentials")
			return
		}

		accountID = "account-" + username
	case auth.GrantTypeExchangeCode:
		code := r.PostForm.Get("exchange_code")

		if _, ok := s.exchangeCodes[code]; !ok {
			writeError(w, http.StatusBadRequest, "invalid_grant", "exchange code not found")
			return
		}

		delete(s.exchangeCodes, code)

		accountID = "account-" + code
	case auth.GrantTypeRefreshToken:
		refreshToken := r.PostForm.Get("refresh_token")

		previous, ok := s.refreshTokens[refreshToken]
		if !ok || time.Now().After(previous.expiresAt) {
			writeError(w, http.StatusBadRequest, "invalid_grant", "refresh token not found")
			return
		}

		delete(s.refreshTokens, refreshToken)

		accountID = previous.accountID
	default:
		writeError(w, http.StatusBadRequest, "unsupported_grant_type", "grant type not supported")
		return
	}

	now := time.Now()

	accessToken := randomToken()

	s.accessTokens[accessToken] = session{
		accountID: accountID,
		expiresAt: now.Add(s.options.TokenTTL),
	}

	response := map[string]any{
		"access_token":    accessToken,
		"expires_in":      int(s.options.TokenTTL.Seconds()),
		"token_type":      "bearer",
		"client_id":       clientID,
		"internal_client": true,
		"client_service":  ClientService,
	}

	if accountID != "" {
		response["account_id"] = accountID
	}

	if withRefresh {
		refreshToken := randomToken()

		s.refreshTokens[refreshToken] = session{
			accountID: accountID,
			expiresAt: now.Add(2 * s.options.TokenTTL),
		}

		response["refresh_token"] = refreshToken
	}

	writeJSON(w, http.StatusOK, response)
}

// bearerAuth rejects requests without a valid, unexpired access token.
func (s *Stub) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.statusRequests.Add(1)

		header := r.Header.Get("Authorization")

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "authorization_required", "no bearer token provided")
			return
		}

		s.lock.Lock()
		session, ok := s.accessTokens[token]
		s.lock.Unlock()

		if !ok || time.Now().After(session.expiresAt) {
			writeError(w, http.StatusUnauthorized, "invalid_token", "bearer token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Stub) lookup(service string) (ServiceStatus, bool) {
	if s.options.Services == nil {
		return ServiceStatus{
			ServiceInstanceID: strings.ToLower(service),
			Status:            "UP",
		}, true
	}

	for name, status := range s.options.Services {
		if strings.EqualFold(name, service) {
			return status, true
		}
	}

	return ServiceStatus{}, false
}

func (s *Stub) status(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")

	status, ok := s.lookup(service)
	if !ok {
		writeError(w, http.StatusNotFound, "service_not_found", "unknown service "+service)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (s *Stub) bulkStatus(w http.ResponseWriter, r *http.Request) {
	services := r.URL.Query()["serviceId"]
	if len(services) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "at least one serviceId is required")
		return
	}

	statuses := make([]ServiceStatus, 0, len(services))

	for _, service := range services {
		if status, ok := s.lookup(service); ok {
			statuses = append(statuses, status)
		}
	}

	writeJSON(w, http.StatusOK, statuses)
}
