package registry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/torcsys/torc-controller/pkg/types"
)

func TestRegisterTaskSendsServiceRegistration(t *testing.T) {
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/agent/service/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg, err := New(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)

	err = reg.RegisterTask(types.Task{Name: "web-1", IP: "10.0.0.5"})
	require.NoError(t, err)
	require.Equal(t, "web-1", gotBody["Name"])
	require.Equal(t, "10.0.0.5", gotBody["Address"])
}

func TestRegisterReturnsErrorOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	reg, err := New(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)

	err = reg.RegisterController("torc-controller", "10.0.0.1")
	require.Error(t, err)
}
