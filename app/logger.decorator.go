package app

import (
	"context"
	"log/slog"

	"github.com/go-arrower/schoolstore/alog"
)

func NewLoggedRequest[Req any, Res any](logger alog.Logger, req Request[Req, Res]) Request[Req, Res] {
	return &requestLoggingDecorator[Req, Res]{logger: logger, kind: "request", base: req}
}

// NewLoggedQuery shares the implementation with requests, only the log messages differ.
func NewLoggedQuery[Q any, Res any](logger alog.Logger, query Query[Q, Res]) Query[Q, Res] {
	return &requestLoggingDecorator[Q, Res]{logger: logger, kind: "query", base: query}
}

type requestLoggingDecorator[Req any, Res any] struct {
	logger alog.Logger
	kind   string
	base   Request[Req, Res]
}

func (d *requestLoggingDecorator[Req, Res]) H(ctx context.Context, req Req) (Res, error) { //nolint:ireturn,lll // valid use of generics
	cmdName := commandName(req)

	logStart(ctx, d.logger, d.kind, cmdName)

	res, err := d.base.H(ctx, req)

	logResult(ctx, d.logger, d.kind, cmdName, err)

	return res, err //nolint:wrapcheck // decorate but not change anything
}

func NewLoggedCommand[C any](logger alog.Logger, cmd Command[C]) Command[C] {
	return &commandLoggingDecorator[C]{logger: logger, base: cmd}
}

type commandLoggingDecorator[C any] struct {
	logger alog.Logger
	base   Command[C]
}

func (d *commandLoggingDecorator[C]) H(ctx context.Context, cmd C) error {
	cmdName := commandName(cmd)

	logStart(ctx, d.logger, "command", cmdName)

	err := d.base.H(ctx, cmd)

	logResult(ctx, d.logger, "command", cmdName, err)

	return err //nolint:wrapcheck // decorate but not change anything
}

func logStart(ctx context.Context, logger alog.Logger, kind string, cmdName string) {
	logger.DebugContext(ctx, "executing "+kind,
		slog.String("command", cmdName),
	)
}

func logResult(ctx context.Context, logger alog.Logger, kind string, cmdName string, err error) {
	if err != nil {
		logger.DebugContext(ctx, "failed to execute "+kind,
			slog.String("command", cmdName),
			slog.String("error", err.Error()),
		)

		return
	}

	logger.DebugContext(ctx, kind+" executed successfully",
		slog.String("command", cmdName),
	)
}
