package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, enabled bool, handler http.HandlerFunc) (*IPAPIClient, *int32) {
	t.Helper()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := Config{
		Enabled:     enabled,
		URLTemplate: srv.URL + "/json/%s?fields=status,country,city",
		Timeout:     200 * time.Millisecond,
	}
	return NewIPAPIClient(cfg, srv.Client(), zap.NewNop()), &calls
}

func TestIPAPIClient_Locate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client, calls := newTestClient(t, true, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/json/8.8.8.8", r.URL.Path)
			assert.Equal(t, "status,country,city", r.URL.Query().Get("fields"))
			assert.Equal(t, "clickify/1.0", r.Header.Get("User-Agent"))
			fmt.Fprint(w, `{"status":"success","country":"United States","city":"Mountain View"}`)
		})

		country, city := client.Locate(context.Background(), "8.8.8.8")
		require.NotNil(t, country)
		require.NotNil(t, city)
		assert.Equal(t, "United States", *country)
		assert.Equal(t, "Mountain View", *city)
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	})

	t.Run("status fail", func(t *testing.T) {
		client, _ := newTestClient(t, true, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":"fail","message":"reserved range"}`)
		})

		country, city := client.Locate(context.Background(), "8.8.8.8")
		assert.Nil(t, country)
		assert.Nil(t, city)
	})

	t.Run("malformed payload", func(t *testing.T) {
		client, _ := newTestClient(t, true, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html>oops</html>`)
		})

		country, city := client.Locate(context.Background(), "8.8.8.8")
		assert.Nil(t, country)
		assert.Nil(t, city)
	})

	t.Run("server error", func(t *testing.T) {
		client, _ := newTestClient(t, true, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		country, city := client.Locate(context.Background(), "8.8.8.8")
		assert.Nil(t, country)
		assert.Nil(t, city)
	})

	t.Run("timeout", func(t *testing.T) {
		client, _ := newTestClient(t, true, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		})

		start := time.Now()
		country, city := client.Locate(context.Background(), "8.8.8.8")
		assert.Nil(t, country)
		assert.Nil(t, city)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("disabled makes no call", func(t *testing.T) {
		client, calls := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":"success","country":"X","city":"Y"}`)
		})

		country, city := client.Locate(context.Background(), "8.8.8.8")
		assert.Nil(t, country)
		assert.Nil(t, city)
		assert.Equal(t, int32(0), atomic.LoadInt32(calls))
	})

	t.Run("empty ip makes no call", func(t *testing.T) {
		client, calls := newTestClient(t, true, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":"success","country":"X","city":"Y"}`)
		})

		country, city := client.Locate(context.Background(), "")
		assert.Nil(t, country)
		assert.Nil(t, city)
		assert.Equal(t, int32(0), atomic.LoadInt32(calls))
	})

	t.Run("unreachable host", func(t *testing.T) {
		client := NewIPAPIClient(Config{
			Enabled:     true,
			URLTemplate: "http://127.0.0.1:1/json/%s",
			Timeout:     200 * time.Millisecond,
		}, nil, zap.NewNop())

		country, city := client.Locate(context.Background(), "8.8.8.8")
		assert.Nil(t, country)
		assert.Nil(t, city)
	})
}
