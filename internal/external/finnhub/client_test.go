package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RudolfTheOne/ThetaTracker/pkg/httputil"
	"github.com/RudolfTheOne/ThetaTracker/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	httpClient := httputil.New(logger.NewNop(), 1000, time.Millisecond)
	return NewClient(httpClient, logger.NewNop(), "test-token", server.URL)
}

func TestHasUpcomingEarnings_EventScheduled(t *testing.T) {
	var gotQuery map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"earningsCalendar":[{"date":"2026-09-10","symbol":"AAPL"}]}`))
	})

	from := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	has, err := client.HasUpcomingEarnings(context.Background(), "AAPL", from, to)
	require.NoError(t, err)
	assert.True(t, has)

	assert.Equal(t, []string{"AAPL"}, gotQuery["symbol"])
	assert.Equal(t, []string{"2026-08-30"}, gotQuery["from"])
	assert.Equal(t, []string{"2026-10-14"}, gotQuery["to"])
	assert.Equal(t, []string{"test-token"}, gotQuery["token"])
}

func TestHasUpcomingEarnings_NoEvents(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"earningsCalendar":[]}`))
	})

	has, err := client.HasUpcomingEarnings(context.Background(), "SPY", time.Now(), time.Now())
	require.NoError(t, err)
	assert.False(t, has)
}

func TestHasUpcomingEarnings_EmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	has, err := client.HasUpcomingEarnings(context.Background(), "SPY", time.Now(), time.Now())
	require.NoError(t, err)
	assert.False(t, has)
}

func TestHasUpcomingEarnings_UnreadableBodyIsNotAnEvent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`not json at all`))
	})

	has, err := client.HasUpcomingEarnings(context.Background(), "SPY", time.Now(), time.Now())
	require.NoError(t, err)
	assert.False(t, has)
}

func TestHasUpcomingEarnings_UpstreamErrorSurfaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.HasUpcomingEarnings(context.Background(), "SPY", time.Now(), time.Now())
	require.Error(t, err)

	var upstreamErr *httputil.UpstreamError
	assert.ErrorAs(t, err, &upstreamErr)
}
