package router

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echo struct{}

func (echo) RegisterEcho(api huma.API) {
	huma.Get(api, "/echo/{word}", func(_ context.Context, input *struct {
		Word string `path:"word"`
	}) (*struct{ Body string }, error) {
		return &struct{ Body string }{Body: input.Word}, nil
	})
}

func TestNew(t *testing.T) {
	var calls []string
	h := New("test", "0.0.0",
		func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
		func(w io.Writer) { fmt.Fprint(w, "up 1\n") },
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "root") }),
		OptUseMiddleware(func(ctx huma.Context, next func(huma.Context)) {
			calls = append(calls, ctx.Operation().Path)
			next(ctx)
		}),
		OptGroup("/api", OptAutoRegister(echo{})),
	)

	serve := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, serve("/liveness").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve("/readiness").Code)
	assert.Equal(t, "up 1\n", serve("/metrics").Body.String())
	assert.Equal(t, "root", serve("/anything").Body.String())

	rec := serve("/api/echo/hello")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"hello"`, rec.Body.String())
	assert.Equal(t, []string{"/api/echo/{word}"}, calls)
}
