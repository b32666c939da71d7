package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/costumerent/costume-market/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"data":[]}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	require.Equal(t, `{"data":[]}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	require.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	require.False(t, ok)
}

func TestCacheKey_IncludesParamsAndQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	e := echo.New()

	key := func(id, query string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/costumes/"+id+query, nil), httptest.NewRecorder())
		c.SetPath("/v1/costumes/:id")
		c.SetParamNames("id")
		c.SetParamValues(id)
		return cacheKeyFrom(cfg, c)
	}

	require.Equal(t, key("1", ""), key("1", ""))
	require.NotEqual(t, key("1", ""), key("2", ""))
	require.NotEqual(t, key("1", ""), key("1", "?x=1"))
	require.Regexp(t, `^cache:[0-9a-f]{40}$`, key("1", ""))
}

func TestCaptureWriter_Limit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("def"))

	require.Equal(t, "abcdef", rec.Body.String())
	require.Equal(t, "abcd", cw.buf.String())
	require.True(t, cw.truncated())
}

func TestCacheMiddleware_DisabledWithoutRedis(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, Methods: []string{"GET"}, Prefix: "cache"}
	e := echo.New()
	calls := 0
	h := func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	}
	e.GET("/", h, NewRedisCache(cfg, nil, zap.NewNop()))
	e.POST("/", h, PurgeCache(cfg, nil, zap.NewNop()))

	for _, m := range []string{http.MethodGet, http.MethodGet, http.MethodPost} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(m, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("X-Cache"))
	}
	require.Equal(t, 3, calls)
}
