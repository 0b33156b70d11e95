package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dispatchmap/internal/domain/entities"
)

func newTestResolver(t *testing.T, handler http.HandlerFunc) (*HTTPResolver, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewHTTPResolver(srv.URL, "dispatchmap-test", time.Second, zap.NewNop()), &calls
}

func TestHTTPResolver_Found(t *testing.T) {
	resolver, _ := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "12 MG Road, Bengaluru", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "dispatchmap-test", r.Header.Get("User-Agent"))
		w.Write([]byte(`[{"lat":"12.9756","lon":"77.6050","display_name":"MG Road"}]`))
	})

	coord, ok := resolver.Resolve(context.Background(), "  12 MG Road,   Bengaluru ")
	require.True(t, ok)
	assert.Equal(t, entities.Coordinate{Latitude: 12.9756, Longitude: 77.6050}, coord)
}

func TestHTTPResolver_NoResultsAndFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "empty result list", status: http.StatusOK, body: `[]`},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
		{name: "undecodable body", status: http.StatusOK, body: `{"not":"a list"}`},
		{name: "non-numeric latitude", status: http.StatusOK, body: `[{"lat":"north","lon":"77.1"}]`},
		{name: "out of range", status: http.StatusOK, body: `[{"lat":"123.0","lon":"77.1"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, _ := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, ok := resolver.Resolve(context.Background(), "somewhere")
			assert.False(t, ok)
		})
	}
}

func TestHTTPResolver_BlankAddressSkipsLookup(t *testing.T) {
	resolver, calls := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"1","lon":"1"}]`))
	})

	_, ok := resolver.Resolve(context.Background(), "   ")
	assert.False(t, ok)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestHTTPResolver_Unreachable(t *testing.T) {
	resolver := NewHTTPResolver("http://127.0.0.1:1", "", 200*time.Millisecond, zap.NewNop())

	_, ok := resolver.Resolve(context.Background(), "somewhere")
	assert.False(t, ok)
}

func TestStaticResolver(t *testing.T) {
	resolver := NewStaticResolver(map[string]entities.Coordinate{
		"1 Main St,  Springfield": {Latitude: 1, Longitude: 2},
	})

	coord, ok := resolver.Resolve(context.Background(), "1 Main St, Springfield")
	require.True(t, ok)
	assert.Equal(t, entities.Coordinate{Latitude: 1, Longitude: 2}, coord)

	_, ok = resolver.Resolve(context.Background(), "2 Main St")
	assert.False(t, ok)

	_, ok = Disabled().Resolve(context.Background(), "1 Main St, Springfield")
	assert.False(t, ok)
}
