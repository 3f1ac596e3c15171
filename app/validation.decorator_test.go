package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/schoolstore/app"
)

func TestRequestValidatingDecorator_H(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		handler := app.NewValidatedRequest(validator.New(), app.TestRequestHandler(func(ctx context.Context, _ structWithValidationTags) (response, error) {
			assert.True(t, app.PassedValidation(ctx))
			return response{}, nil
		}))

		res, err := handler.H(context.Background(), passingValidationValue)
		assert.NoError(t, err)
		assert.Empty(t, res)
	})

	t.Run("failed request", func(t *testing.T) {
		t.Parallel()

		called := false
		handler := app.NewValidatedRequest(validator.New(), app.TestRequestHandler(func(_ context.Context, _ structWithValidationTags) (response, error) {
			called = true
			return response{}, nil
		}))

		_, err := handler.H(context.Background(), structWithValidationTags{})

		validationErrors := validator.ValidationErrors{}
		assert.True(t, errors.As(err, &validationErrors))
		assert.Len(t, validationErrors, 2)
		assert.False(t, called, "use case must not be called")
	})

	t.Run("with default validator", func(t *testing.T) {
		t.Parallel()

		handler := app.NewValidatedRequest(nil, app.TestSuccessRequestHandler[structWithValidationTags, response]())

		_, err := handler.H(context.Background(), passingValidationValue)
		assert.NoError(t, err)
	})
}

func TestCommandValidatingDecorator_H(t *testing.T) {
	t.Parallel()

	t.Run("successful command", func(t *testing.T) {
		t.Parallel()

		handler := app.NewValidatedCommand(nil, app.TestCommandHandler(func(ctx context.Context, _ structWithValidationTags) error {
			assert.True(t, app.PassedValidation(ctx))
			return nil
		}))

		err := handler.H(context.Background(), passingValidationValue)
		assert.NoError(t, err)
	})

	t.Run("failed command", func(t *testing.T) {
		t.Parallel()

		handler := app.NewValidatedCommand(validator.New(), app.TestSuccessCommandHandler[structWithValidationTags]())

		err := handler.H(context.Background(), structWithValidationTags{Val0: "set"})

		validationErrors := validator.ValidationErrors{}
		assert.True(t, errors.As(err, &validationErrors))
		assert.Len(t, validationErrors, 1)
	})
}

func TestQueryValidatingDecorator_H(t *testing.T) {
	t.Parallel()

	handler := app.NewValidatedQuery(nil, app.TestSuccessQueryHandler[structWithValidationTags, response]())

	_, err := handler.H(context.Background(), structWithValidationTags{})
	assert.Error(t, err)

	_, err = handler.H(context.Background(), passingValidationValue)
	assert.NoError(t, err)
}

func TestPassedValidation(t *testing.T) {
	t.Parallel()

	assert.False(t, app.PassedValidation(context.Background()))
}

type structWithValidationTags struct {
	Val0 string `validate:"required"`
	Val1 string `validate:"min=2"`
}

var passingValidationValue = structWithValidationTags{
	Val0: "testValue",
	Val1: "testValue",
}
