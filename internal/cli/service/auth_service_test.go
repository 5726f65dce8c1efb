package service

import (
	fsrepo "GophBox/internal/cli/repo/fs"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteAuthService_LoginStoresTokenAndLogin(t *testing.T) {
	store := fsrepo.AuthFSStore{Dir: t.TempDir()}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/api/user/login"))
		var c credentials
		_ = json.NewDecoder(r.Body).Decode(&c)
		assert.Equal(t, "alice", c.Login)
		http.SetCookie(w, &http.Cookie{Name: "auth_token", Value: "tok-1"})
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	svc := NewRemoteAuthService(ts.URL+"/", store)
	require.NoError(t, svc.Login("alice", "pw"))

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	user, err := svc.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "alice", user)
}

func TestRemoteAuthService_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrInvalidCredentials},
		{http.StatusConflict, ErrLoginTaken},
	}
	for _, tc := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		svc := NewRemoteAuthService(ts.URL, fsrepo.AuthFSStore{Dir: t.TempDir()})
		assert.ErrorIs(t, svc.Register("bob", "pw"), tc.want)
		ts.Close()
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer ts.Close()
	err := NewRemoteAuthService(ts.URL, fsrepo.AuthFSStore{Dir: t.TempDir()}).Login("a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRemoteAuthService_NoCookie(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()
	err := NewRemoteAuthService(ts.URL, fsrepo.AuthFSStore{Dir: t.TempDir()}).Login("a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving auth")
}

func TestRemoteAuthService_LogoutClearsState(t *testing.T) {
	store := fsrepo.AuthFSStore{Dir: t.TempDir()}
	require.NoError(t, store.Save("tok"))
	require.NoError(t, store.SaveLogin("carol"))

	svc := NewRemoteAuthService("http://unused", store)
	user, err := svc.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "carol", user)

	require.NoError(t, svc.Logout())
	_, err = svc.CurrentUser()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	// повторный выход не падает
	assert.NoError(t, svc.Logout())
}
