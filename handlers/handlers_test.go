package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
)

func TestHandlerWithErrorHandler(t *testing.T) {
	boom := errors.New("boom")
	fail := func(context.Context, *struct{}) (*struct{}, error) { return nil, boom }

	var got []error
	_, err := handlerWithErrorHandler(fail, func(_ context.Context, err error) { got = append(got, err) })(context.Background(), nil)
	assert.Same(t, boom, err)
	assert.Equal(t, []error{boom}, got)

	_, err = handlerWithErrorHandler(fail, nil)(context.Background(), nil)
	assert.Same(t, boom, err)
}

func TestOperationOptions(t *testing.T) {
	var op huma.Operation
	opErrors(http.StatusNotFound)(&op)
	opStatus(http.StatusCreated)(&op)
	assert.Equal(t, []int{http.StatusNotFound}, op.Errors)
	assert.Equal(t, http.StatusCreated, op.DefaultStatus)
}
