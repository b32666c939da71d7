package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	up := Health(pingerFunc(func(context.Context) error { return nil }))
	rec := callJSON(http.MethodGet, "/healthz", "/healthz", "", 0, up)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","database":"up"}`, rec.Body.String())

	down := Health(pingerFunc(func(context.Context) error { return errors.New("gone") }))
	rec = callJSON(http.MethodGet, "/healthz", "/healthz", "", 0, down)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
