package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchFirstProxyWins(t *testing.T) {
	page := strings.Repeat("<p>job posting</p>", 20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	f := New([]string{srv.URL + "/?u=%s"}, 0, nil)
	html, err := f.Fetch(context.Background(), "https://example.com/job")
	require.NoError(t, err)
	assert.Equal(t, page, html)
}

func TestFetchFallsThroughOnFailure(t *testing.T) {
	page := strings.Repeat("<p>job posting</p>", 20)

	var badCalls, goodCalls int
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		badCalls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		goodCalls++
		_, _ = w.Write([]byte(page))
	}))
	defer good.Close()

	f := New([]string{bad.URL + "/?u=%s", good.URL + "/?u=%s"}, 0, nil)
	html, err := f.Fetch(context.Background(), "https://example.com/job")
	require.NoError(t, err)
	assert.Equal(t, page, html)
	assert.Equal(t, 1, badCalls)
	assert.Equal(t, 1, goodCalls)
}

func TestFetchRejectsShortBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("nope"))
	}))
	defer srv.Close()

	f := New([]string{srv.URL + "/?u=%s"}, 0, nil)
	_, err := f.Fetch(context.Background(), "https://example.com/job")
	assert.ErrorIs(t, err, ErrAllProxiesFailed)
}

func TestFetchAllProxiesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New([]string{srv.URL + "/a?u=%s", srv.URL + "/b?u=%s"}, 0, nil)
	_, err := f.Fetch(context.Background(), "https://example.com/job")
	assert.ErrorIs(t, err, ErrAllProxiesFailed)
}

func TestFetchHonorsContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New([]string{srv.URL + "/?u=%s"}, 0, nil)
	_, err := f.Fetch(ctx, "https://example.com/job")
	assert.ErrorIs(t, err, context.Canceled)
}
