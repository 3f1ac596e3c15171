// Package app provides common decorators for use cases in the application layer.
package app

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-arrower/schoolstore/alog"
)

const instrumentationName = "schoolstore.application"

// Request can produce side effects and return data.
type Request[Req any, Res any] interface {
	H(ctx context.Context, req Req) (Res, error)
}

// Command produces side effects, e.g. mutate state.
type Command[C any] interface {
	H(ctx context.Context, cmd C) error
}

// Query does not produce side effects and returns data.
type Query[Q any, Res any] interface {
	H(ctx context.Context, query Q) (Res, error)
}

// NewInstrumentedRequest is a convenience helper for easy dependency setup.
// The order of dependencies represents the order of calling.
func NewInstrumentedRequest[Req any, Res any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	req Request[Req, Res],
) Request[Req, Res] {
	return NewTracedRequest(traceProvider, NewMeteredRequest(meterProvider, NewLoggedRequest(logger, req)))
}

// NewInstrumentedCommand is a convenience helper for easy dependency setup.
// The order of dependencies represents the order of calling.
func NewInstrumentedCommand[C any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	cmd Command[C],
) Command[C] {
	return NewTracedCommand(traceProvider, NewMeteredCommand(meterProvider, NewLoggedCommand(logger, cmd)))
}

// NewInstrumentedQuery is a convenience helper for easy dependency setup.
// The order of dependencies represents the order of calling.
func NewInstrumentedQuery[Q any, Res any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	query Query[Q, Res],
) Query[Q, Res] {
	return NewTracedQuery(traceProvider, NewMeteredQuery(meterProvider, NewLoggedQuery(logger, query)))
}

// commandName extracts a printable name from cmd in the format of: context.package.structName.
//
// The use case function can not be used, as it is a method on a generic handler struct
// and runtime.Caller would always lead to the decorator.
// For generic commands the type parameters are cut off: admin.application.ListRecordsQuery.
func commandName(cmd any) string {
	name := fmt.Sprintf("%T", cmd)
	if i := strings.Index(name, "["); i > 0 {
		name = name[:i]
	}

	pkgPath := reflect.TypeOf(cmd).PkgPath()

	// example: github.com/go-arrower/schoolstore/contexts/admin/internal/application
	// take string after /contexts/ and then take string before /internal/
	pkg0 := strings.Split(pkgPath, "/contexts/")

	hasContext := len(pkg0) == 2 //nolint:mnd
	if hasContext {
		pkg1 := strings.Split(pkg0[1], "/internal/")
		if len(pkg1) == 2 { //nolint:mnd
			return pkg1[0] + "." + name
		}
	}

	// fallback: if the use case is not part of a proper context => packageName.structName
	return name
}
