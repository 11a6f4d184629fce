// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tracing records OpenTelemetry spans for a live fetch. Spans are
// exported as JSON lines through the stdout trace exporter to any writer,
// typically the file named by fetch --trace-file.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer all spans are started from.
const TracerName = "github.com/sirseerhq/gist-comments"

// Span attribute keys.
const (
	AttrUsername = "gist.username"
	AttrGistID   = "gist.id"
	AttrGists    = "gist.count"
	AttrComments = "gist.comments"
)

// Provider owns an SDK tracer provider installed as the global one.
type Provider struct {
	tp       *sdktrace.TracerProvider
	previous trace.TracerProvider
}

// Setup installs a global tracer provider that writes every span to w.
// Shutdown flushes the spans and restores the previous global provider.
func Setup(ctx context.Context, w io.Writer, version string) (*Provider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName("gist-comments"),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	return install(sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSyncer(exporter),
	)), nil
}

func install(tp *sdktrace.TracerProvider) *Provider {
	p := &Provider{tp: tp, previous: otel.GetTracerProvider()}
	otel.SetTracerProvider(tp)
	return p
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	otel.SetTracerProvider(p.previous)
	if err := p.tp.Shutdown(ctx); err != nil {
		return errors.Join(errors.New("failed to flush traces"), err)
	}
	return nil
}

// StartSpan starts a client span from the global tracer provider. The
// caller ends it.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// End sets the span status from err and ends the span.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
