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

// Package logging builds the process wide logger.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options control the logger.
type Options struct {
	// Verbosity enables logr V levels up to and including this one.
	Verbosity int

	// JSON selects structured output suitable for CI log collection.
	JSON bool
}

// New returns a logger and a function to flush it on exit.
func New(options Options) (logr.Logger, func(), error) {
	config := zap.NewDevelopmentConfig()
	config.DisableStacktrace = true

	if options.JSON {
		config = zap.NewProductionConfig()
		config.Sampling = nil
	}

	// logr verbosity maps onto negative zap levels.
	config.Level = zap.NewAtomicLevelAt(zapcore.Level(-options.Verbosity))

	z, err := config.Build()
	if err != nil {
		return logr.Discard(), func() {}, err
	}

	sync := func() {
		_ = z.Sync()
	}

	return zapr.NewLogger(z), sync, nil
}

// FromCore wraps an existing zap core, used to capture output.
func FromCore(core zapcore.Core) logr.Logger {
	return zapr.NewLogger(zap.New(core))
}
