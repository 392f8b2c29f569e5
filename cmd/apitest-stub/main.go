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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/nscaledev/uni-apitest/pkg/constants"
	"github.com/nscaledev/uni-apitest/pkg/logging"
	"github.com/nscaledev/uni-apitest/pkg/stub"
)

func main() {
	var (
		address       string
		clientID      string
		clientSecret  string
		users         map[string]string
		exchangeCodes []string
		tokenTTL      time.Duration
		debug         bool
	)

	pflag.StringVar(&address, "listen-address", ":8080", "Address to listen on.")
	pflag.StringVar(&clientID, "client-id", "apitest", "OAuth client ID to accept.")
	pflag.StringVar(&clientSecret, "client-secret", "apitest", "OAuth client secret to accept.")
	pflag.StringToStringVar(&users, "user", nil, "Username to password mappings for the password grant.")
	pflag.StringSliceVar(&exchangeCodes, "exchange-code", nil, "Single use codes for the exchange_code grant.")
	pflag.DurationVar(&tokenTTL, "token-ttl", stub.DefaultTokenTTL, "Access token lifetime.")
	pflag.BoolVar(&debug, "debug", false, "Log every request.")

	pflag.Parse()

	logOptions := logging.Options{}

	if debug {
		logOptions.Verbosity = 1
	}

	logger, sync, err := logging.New(logOptions)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	defer sync()

	logger.Info("stub starting", "application", constants.Application, "version", constants.Version, "revision", constants.Revision, "address", address)

	server := &http.Server{
		Addr: address,
		Handler: stub.New(stub.Options{
			ClientID:      clientID,
			ClientSecret:  clientSecret,
			Users:         users,
			ExchangeCodes: exchangeCodes,
			TokenTTL:      tokenTTL,
			Logger:        logger.WithName("stub"),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error(err, "server error")
		sync()
		os.Exit(1)
	}
}
