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

// Package tracing is a thin span abstraction over optional OpenTelemetry
// support. The default build uses a no-op tracer; building with -tags=otel
// exports spans via OTLP when the usual OTEL_* environment variables are
// set. This keeps the default binary free of the OpenTelemetry dependency.
package tracing

import "context"

// Span is a single named, timed operation. End must be called when the
// operation completes.
type Span interface {
	// SetAttribute attaches key-value metadata to the span.
	SetAttribute(key string, value interface{})
	// End marks the span as finished.
	End()
}

// Tracer creates spans. Callers can always use the same API whether or not
// a real tracing backend is configured.
type Tracer interface {
	// Start opens a span with the given name. The returned context should be
	// used for downstream calls.
	Start(ctx context.Context, name string) (context.Context, Span)
}

var globalTracer Tracer = NoopTracer{}

// SetTracer installs the global tracer, typically once at startup after
// InitFromEnv. Passing nil restores the no-op tracer.
func SetTracer(t Tracer) {
	if t == nil {
		globalTracer = NoopTracer{}
		return
	}
	globalTracer = t
}

// Start opens a span using the global tracer.
func Start(ctx context.Context, name string) (context.Context, Span) {
	return globalTracer.Start(ctx, name)
}

// Enabled reports whether a real (non-noop) tracer is configured. Always
// false in the default build.
func Enabled() bool {
	_, noop := globalTracer.(NoopTracer)
	return !noop
}

// Run wraps fn in a span with the given name and attributes, ending the
// span when fn returns. Without a real tracer, fn runs directly with no
// overhead.
func Run(ctx context.Context, name string, attrs map[string]interface{}, fn func(context.Context) error) error {
	if !Enabled() {
		return fn(ctx)
	}
	ctx, span := globalTracer.Start(ctx, name)
	defer span.End()
	for k, v := range attrs {
		span.SetAttribute(k, v)
	}
	return fn(ctx)
}
