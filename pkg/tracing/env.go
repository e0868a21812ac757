// Copyright 2026 The Gitian Verify Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build !otel

package tracing

import "context"

// InitFromEnv initializes tracing from environment variables. Without the
// "otel" build tag this is a no-op; env_otel.go is compiled instead when the
// tag is set.
func InitFromEnv() error {
	return nil
}

// Shutdown flushes and shuts down the tracer provider. A no-op without the
// "otel" build tag.
func Shutdown(context.Context) error {
	return nil
}
