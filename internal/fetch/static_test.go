package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/pricetracker/internal/fetch"
	"github.com/jonesrussell/pricetracker/internal/logger"
)

func TestStaticClient_Fetch(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	client := fetch.NewStaticClient(fetch.NewConfig(), logger.NewNoOp())
	body, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ok")
	assert.Equal(t, fetch.DefaultUserAgent, gotUserAgent)
}

func TestStaticClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{name: "not found", status: http.StatusNotFound, transient: false},
		{name: "gone", status: http.StatusGone, transient: false},
		{name: "forbidden", status: http.StatusForbidden, transient: false},
		{name: "rate limited", status: http.StatusTooManyRequests, transient: true},
		{name: "server error", status: http.StatusInternalServerError, transient: true},
		{name: "bad gateway", status: http.StatusBadGateway, transient: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := fetch.NewStaticClient(fetch.NewConfig(), logger.NewNoOp())
			_, err := client.Fetch(context.Background(), server.URL)
			require.Error(t, err)

			var statusErr *fetch.StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, tt.transient, statusErr.Transient())
			assert.Equal(t, !tt.transient, fetch.IsPermanentStatus(err))
		})
	}
}

func TestStaticClient_InvalidURL(t *testing.T) {
	client := fetch.NewStaticClient(fetch.NewConfig(), logger.NewNoOp())

	_, err := client.Fetch(context.Background(), "://missing-scheme")
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrInvalidURL)
}

func TestStaticClient_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer server.Close()

	config := fetch.NewConfig()
	config.MaxBodyBytes = 1024
	client := fetch.NewStaticClient(config, logger.NewNoOp())

	_, err := client.Fetch(context.Background(), server.URL)
	require.ErrorIs(t, err, fetch.ErrBodyTooLarge)
}

func TestStaticClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := fetch.NewStaticClient(fetch.NewConfig(), logger.NewNoOp())
	_, err := client.Fetch(ctx, server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

type stubBackend struct {
	body []byte
}

func (s *stubBackend) Fetch(context.Context, string) ([]byte, error) {
	return s.body, nil
}

func TestClient_RoutesToBackend(t *testing.T) {
	static := &stubBackend{body: []byte("static")}
	rendered := &stubBackend{body: []byte("rendered")}
	client := fetch.NewClientWithBackends(static, rendered)

	body, err := client.Fetch(context.Background(), "https://example.com", false)
	require.NoError(t, err)
	assert.Equal(t, "static", string(body))

	body, err = client.Fetch(context.Background(), "https://example.com", true)
	require.NoError(t, err)
	assert.Equal(t, "rendered", string(body))
}
