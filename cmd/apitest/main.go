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

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"

	"github.com/nscaledev/uni-apitest/pkg/auth"
	"github.com/nscaledev/uni-apitest/pkg/config"
	"github.com/nscaledev/uni-apitest/pkg/constants"
	"github.com/nscaledev/uni-apitest/pkg/lightswitch"
	"github.com/nscaledev/uni-apitest/pkg/logging"
	"github.com/nscaledev/uni-apitest/pkg/report"
	"github.com/nscaledev/uni-apitest/pkg/request"
	"github.com/nscaledev/uni-apitest/pkg/suite"
)

const (
	exitPassed        = 0
	exitFailed        = 1
	exitMisconfigured = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	options, err := config.Load(".env", "test/.env")
	if err != nil {
		fmt.Println(err)
		return exitMisconfigured
	}

	options.AddFlags(pflag.CommandLine)

	pflag.Parse()

	if err := options.Validate(); err != nil {
		fmt.Println(err)
		return exitMisconfigured
	}

	logOptions := logging.Options{
		JSON: options.JSONLogging,
	}

	if options.DebugLogging || options.LogRequests {
		logOptions.Verbosity = 1
	}

	logger, sync, err := logging.New(logOptions)
	if err != nil {
		fmt.Println(err)
		return exitMisconfigured
	}

	defer sync()

	logger.WithName("init").Info("harness starting", "application", constants.Application, "version", constants.Version, "revision", constants.Revision)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := auth.New(options.ClientID, options.ClientSecret, auth.GrantType(options.GrantType), options.TokenBaseURL(),
		auth.WithLogger(logger.WithName("auth")),
		auth.WithHTTPClient(&http.Client{Timeout: options.RequestTimeout}),
	)

	// The token must exist before any test fires.
	token, err := client.DefaultToken(ctx, options.GrantParams())
	if err != nil {
		logger.Error(err, "failed to acquire token", "grantType", options.GrantType)
		return exitFailed
	}

	modules, err := loadModules(logger, options)
	if err != nil {
		logger.Error(err, "failed to load suites")
		return exitMisconfigured
	}

	collector := report.New()

	engine := request.New(options.BaseURL, token,
		request.WithLogger(logger.WithName("request")),
		request.WithRecorder(collector),
		request.WithTimeout(options.RequestTimeout),
		request.WithBodyLogging(options.LogResponses),
		request.WithDefaultHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": constants.VersionString(),
		}),
	)

	runErr := suite.NewRunner(engine, logger.WithName("runner")).Run(ctx, modules...)

	collector.Render(os.Stdout, options.Verbose)

	if runErr != nil {
		logger.Error(runErr, "run aborted")
		return exitFailed
	}

	if collector.Failed() {
		return exitFailed
	}

	return exitPassed
}

// loadModules returns the built in modules followed by any suite files.
// A missing suites directory is not an error.
func loadModules(logger logr.Logger, options *config.Config) ([]suite.Module, error) {
	registry := suite.NewRegistry()

	if len(options.Services) > 0 {
		if err := registry.Register(lightswitch.Module(options.Services...)); err != nil {
			return nil, err
		}
	}

	modules := registry.Modules()

	files, err := suite.LoadAll(options.SuitesDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("no suites found", "path", options.SuitesDir)

			return modules, nil
		}

		return nil, err
	}

	return append(modules, files...), nil
}
