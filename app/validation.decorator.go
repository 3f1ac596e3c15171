package app

import (
	"context"

	"github.com/go-playground/validator/v10"

	ctx2 "github.com/go-arrower/schoolstore/ctx"
)

const CtxValidated ctx2.CTXKey = "schoolstore.validated"

// PassedValidation is a helper giving you feedback, if a request passed validation of this decorator.
// Use it in case you want to ensure that this decorator was called before continuing with your business logic.
func PassedValidation(ctx context.Context) bool {
	if v, ok := ctx.Value(CtxValidated).(bool); ok {
		return v
	}

	return false
}

func NewValidatedRequest[Req any, Res any](validate *validator.Validate, req Request[Req, Res]) Request[Req, Res] {
	if validate == nil {
		validate = validator.New()
	}

	return &requestValidatingDecorator[Req, Res]{validate: validate, base: req}
}

func NewValidatedQuery[Q any, Res any](validate *validator.Validate, query Query[Q, Res]) Query[Q, Res] {
	if validate == nil {
		validate = validator.New()
	}

	return &requestValidatingDecorator[Q, Res]{validate: validate, base: query}
}

type requestValidatingDecorator[Req any, Res any] struct {
	validate *validator.Validate
	base     Request[Req, Res]
}

func (d *requestValidatingDecorator[Req, Res]) H(ctx context.Context, req Req) (Res, error) { //nolint:ireturn,lll // valid use of generics
	if err := d.validate.Struct(req); err != nil {
		return *new(Res), err //nolint:wrapcheck // validation error is returned on purpose
	}

	return d.base.H(context.WithValue(ctx, CtxValidated, true), req) //nolint:wrapcheck // decorate but not change anything
}

func NewValidatedCommand[C any](validate *validator.Validate, cmd Command[C]) Command[C] {
	if validate == nil {
		validate = validator.New()
	}

	return &commandValidatingDecorator[C]{validate: validate, base: cmd}
}

type commandValidatingDecorator[C any] struct {
	validate *validator.Validate
	base     Command[C]
}

func (d *commandValidatingDecorator[C]) H(ctx context.Context, cmd C) error {
	if err := d.validate.Struct(cmd); err != nil {
		return err //nolint:wrapcheck // validation error is returned on purpose
	}

	return d.base.H(context.WithValue(ctx, CtxValidated, true), cmd) //nolint:wrapcheck // decorate but not change anything
}
