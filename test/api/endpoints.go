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


package api

import (
	"github.com/nscaledev/uni-apitest/pkg/constants"
	"github.com/nscaledev/uni-apitest/pkg/lightswitch"
)

// Endpoints contains all API endpoint patterns.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// Token is the account service token endpoint.
func (e *Endpoints) Token() string {
	return constants.TokenPath
}

// Lightswitch endpoints.
func (e *Endpoints) ServiceStatus(service string) string {
	return lightswitch.ServiceStatusPath(service)
}

func (e *Endpoints) BulkStatus() string {
	return lightswitch.BulkStatusPath()
}
