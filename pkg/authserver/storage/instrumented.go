// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/stacklok/sentinel/pkg/authserver/storage"

var (
	attrOperation = attribute.Key("sentinel.repository.operation")
	attrKind      = attribute.Key("sentinel.repository.kind")
	attrErrorType = attribute.Key("error.type")
)

// NewInstrumented decorates repo so every call records a span, a call
// counter, an error counter and a duration histogram. The optional
// ClientRevoker and Purger capabilities of repo are preserved.
func NewInstrumented(
	repo Repository,
	meterProvider metric.MeterProvider,
	tracerProvider trace.TracerProvider,
) (Repository, error) {
	meter := meterProvider.Meter(instrumentationName)

	operationsTotal, err := meter.Int64Counter(
		"sentinel_repository_operations",
		metric.WithDescription("Total number of repository operations"))
	if err != nil {
		return nil, fmt.Errorf("failed to create operations counter: %w", err)
	}
	errorsTotal, err := meter.Int64Counter(
		"sentinel_repository_errors",
		metric.WithDescription("Total number of failed repository operations"))
	if err != nil {
		return nil, fmt.Errorf("failed to create errors counter: %w", err)
	}
	duration, err := meter.Float64Histogram(
		"sentinel_repository_operation_duration",
		metric.WithDescription("Duration of repository operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &instrumentedRepository{
		repo:            repo,
		tracer:          tracerProvider.Tracer(instrumentationName),
		operationsTotal: operationsTotal,
		errorsTotal:     errorsTotal,
		duration:        duration,
	}, nil
}

type instrumentedRepository struct {
	repo   Repository
	tracer trace.Tracer

	operationsTotal metric.Int64Counter
	errorsTotal     metric.Int64Counter
	duration        metric.Float64Histogram
}

var (
	_ Repository    = (*instrumentedRepository)(nil)
	_ ClientRevoker = (*instrumentedRepository)(nil)
	_ Purger        = (*instrumentedRepository)(nil)
)

// record starts a span and returns a function to be deferred that records
// duration, error and ends the span.
func (r *instrumentedRepository) record(
	ctx context.Context, operation string, kind Kind, err *error,
) (context.Context, func()) {
	attrs := []attribute.KeyValue{attrOperation.String(operation)}
	if kind != "" {
		attrs = append(attrs, attrKind.String(string(kind)))
	}

	ctx, span := r.tracer.Start(ctx, "repository "+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	metricAttrs := metric.WithAttributes(attrs...)
	start := time.Now()
	r.operationsTotal.Add(ctx, 1, metricAttrs)

	return ctx, func() {
		r.duration.Record(ctx, time.Since(start).Seconds(), metricAttrs)
		if err != nil && *err != nil {
			r.errorsTotal.Add(ctx, 1, metricAttrs)
			span.RecordError(*err)
			span.SetAttributes(attrErrorType.String(fmt.Sprintf("%T", *err)))
			span.SetStatus(codes.Error, (*err).Error())
		}
		span.End()
	}
}

func (r *instrumentedRepository) InsertAuthorizationCode(ctx context.Context, record *Record) (_ bool, retErr error) {
	ctx, done := r.record(ctx, "insert", KindAuthorizationCode, &retErr)
	defer done()
	return r.repo.InsertAuthorizationCode(ctx, record)
}

func (r *instrumentedRepository) GetAuthorizationCode(ctx context.Context, key string) (_ *Record, retErr error) {
	ctx, done := r.record(ctx, "get", KindAuthorizationCode, &retErr)
	defer done()
	return r.repo.GetAuthorizationCode(ctx, key)
}

func (r *instrumentedRepository) DeleteAuthorizationCode(ctx context.Context, key string) (_ bool, retErr error) {
	ctx, done := r.record(ctx, "delete", KindAuthorizationCode, &retErr)
	defer done()
	return r.repo.DeleteAuthorizationCode(ctx, key)
}

func (r *instrumentedRepository) InsertAccessToken(ctx context.Context, record *Record) (_ bool, retErr error) {
	ctx, done := r.record(ctx, "insert", KindAccessToken, &retErr)
	defer done()
	return r.repo.InsertAccessToken(ctx, record)
}

func (r *instrumentedRepository) GetAccessToken(ctx context.Context, key string) (_ *Record, retErr error) {
	ctx, done := r.record(ctx, "get", KindAccessToken, &retErr)
	defer done()
	return r.repo.GetAccessToken(ctx, key)
}

func (r *instrumentedRepository) DeleteAccessToken(ctx context.Context, key string) (_ bool, retErr error) {
	ctx, done := r.record(ctx, "delete", KindAccessToken, &retErr)
	defer done()
	return r.repo.DeleteAccessToken(ctx, key)
}

func (r *instrumentedRepository) InsertRefreshToken(ctx context.Context, record *Record) (_ bool, retErr error) {
	ctx, done := r.record(ctx, "insert", KindRefreshToken, &retErr)
	defer done()
	return r.repo.InsertRefreshToken(ctx, record)
}

func (r *instrumentedRepository) GetRefreshToken(ctx context.Context, key string) (_ *Record, retErr error) {
	ctx, done := r.record(ctx, "get", KindRefreshToken, &retErr)
	defer done()
	return r.repo.GetRefreshToken(ctx, key)
}

func (r *instrumentedRepository) DeleteRefreshToken(ctx context.Context, key string) (_ bool, retErr error) {
	ctx, done := r.record(ctx, "delete", KindRefreshToken, &retErr)
	defer done()
	return r.repo.DeleteRefreshToken(ctx, key)
}

// DeleteTokensForClient forwards to the wrapped repository when it supports
// client revocation.
func (r *instrumentedRepository) DeleteTokensForClient(ctx context.Context, clientID string) (_ int, retErr error) {
	revoker, ok := r.repo.(ClientRevoker)
	if !ok {
		return 0, ErrUnsupported
	}
	ctx, done := r.record(ctx, "delete_client", "", &retErr)
	defer done()
	return revoker.DeleteTokensForClient(ctx, clientID)
}

// PurgeExpired forwards to the wrapped repository when it supports purging.
func (r *instrumentedRepository) PurgeExpired(ctx context.Context, now time.Time) (_ int, retErr error) {
	purger, ok := r.repo.(Purger)
	if !ok {
		return 0, ErrUnsupported
	}
	ctx, done := r.record(ctx, "purge", "", &retErr)
	defer done()
	return purger.PurgeExpired(ctx, now)
}
