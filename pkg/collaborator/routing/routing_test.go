package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddRouteDispatchesToFboss(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	agent := New("fboss", strings.TrimPrefix(srv.URL, "http://"))
	err := agent.AddRoute(context.Background(), "10.0.0.5", "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, "/add_route", gotPath)
}

func TestAddRouteSkippedWhenViaEmpty(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	agent := New("fboss", strings.TrimPrefix(srv.URL, "http://"))
	err := agent.AddRoute(context.Background(), "10.0.0.5", "")
	require.NoError(t, err)
	require.False(t, called)
}

func TestAddRouteSkippedWhenTargetIsSelf(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	connection := strings.TrimPrefix(srv.URL, "http://")
	agent := New("fboss", connection)
	err := agent.AddRoute(context.Background(), connection, "10.0.0.1")
	require.NoError(t, err)
	require.False(t, called)
}

func TestDeleteRouteSkippedWhenTargetEmpty(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	agent := New("fboss", strings.TrimPrefix(srv.URL, "http://"))
	err := agent.DeleteRoute(context.Background(), "")
	require.NoError(t, err)
	require.False(t, called)
}

func TestResetFIBSkippedForUndefinedAgent(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	agent := New("undefined", strings.TrimPrefix(srv.URL, "http://"))
	err := agent.ResetFIB(context.Background())
	require.NoError(t, err)
	require.False(t, called)
}

func TestDispatchReturnsErrorOnServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	agent := New("fboss", strings.TrimPrefix(srv.URL, "http://"))
	agent.client.RetryMax = 0
	err := agent.AddRoute(context.Background(), "10.0.0.5", "10.0.0.1")
	require.Error(t, err)
}
