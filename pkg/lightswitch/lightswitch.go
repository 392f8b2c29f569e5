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

// Package lightswitch tests the service availability API.
package lightswitch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nscaledev/uni-apitest/pkg/request"
	"github.com/nscaledev/uni-apitest/pkg/suite"
)

// Name is the module name.
const Name = "lightswitch"

// ServiceStatusPath is the status endpoint for a single service.
func ServiceStatusPath(service string) string {
	return fmt.Sprintf("/lightswitch/api/service/%s/status", url.PathEscape(service))
}

// BulkStatusPath is the status endpoint for many services, selected with
// serviceId query parameters.
func BulkStatusPath() string {
	return "/lightswitch/api/service/bulk/status"
}

// Module checks each service is up when authenticated, that
// authentication is enforced, and that bulk lookups agree.
func Module(services ...string) suite.Module {
	return suite.NewModule(Name, func(ctx context.Context, engine *request.Engine) suite.Exports {
		var exports suite.Exports

		for _, service := range services {
			up := engine.Get(ctx, service+" is up", request.TestOptions{
				Endpoint:   ServiceStatusPath(service),
				BearerAuth: true,
			}).
				Expects().ToHaveStatus(http.StatusOK).
				Expects().ToHaveProperty("serviceInstanceId", strings.ToLower(service)).
				Expects().ToHaveProperty("status", "UP").
				Expects().ToHaveProperty("banned", false)

			unauthorized := engine.Get(ctx, service+" requires authentication", request.TestOptions{
				Endpoint: ServiceStatusPath(service),
			}).
				Expects().ToHaveStatus(http.StatusUnauthorized)

			exports = append(exports,
				suite.Export{Name: service + "/up", Awaitable: up},
				suite.Export{Name: service + "/unauthorized", Awaitable: unauthorized},
			)
		}

		if len(services) == 0 {
			return exports
		}

		query := make([]request.QueryParam, len(services))

		for i, service := range services {
			query[i] = request.QueryParam{Key: "serviceId", Value: service}
		}

		bulk := engine.Get(ctx, "bulk status", request.TestOptions{
			Endpoint:   BulkStatusPath(),
			Query:      query,
			BearerAuth: true,
		}).
			Expects().ToHaveStatus(http.StatusOK).
			Expects().ToHaveData(func(data any) bool {
			statuses, ok := data.([]any)

			return ok && len(statuses) == len(services)
		})

		return append(exports, suite.Export{Name: "bulk", Awaitable: bulk})
	})
}
