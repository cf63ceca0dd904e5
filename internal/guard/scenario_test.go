// ABOUTME: End-to-end navigation scenarios across login, role changes, and the guard
// ABOUTME: Exercises session store, credential decoding, and guard decisions together

package guard_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/postdesk/internal/api"
	"github.com/2389/postdesk/internal/guard"
	"github.com/2389/postdesk/internal/session"
	"github.com/2389/postdesk/internal/state"
)

// newAuthServer serves /login with a token whose role claim matches the
// username: "admin" logs in as admin, anyone else as user.
func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login", r.URL.Path)

		var body struct {
			Username string `json:"username"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		role := "user"
		if body.Username == "admin" {
			role = "admin"
		}
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"username": body.Username,
			"role":     role,
		})
		signed, err := tok.SignedString([]byte("server-secret"))
		require.NoError(t, err)

		json.NewEncoder(w).Encode(map[string]string{"token": signed})
	}))
}

func newSessionStore(t *testing.T) *session.Store {
	t.Helper()
	persist, err := state.NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { persist.Close() })

	s := session.NewStore(persist)
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func TestNavigation_AnonymousToAdminRedirectsToLogin(t *testing.T) {
	sessions := newSessionStore(t)

	outcome, err := guard.Resolve(sessions.Current().Role, guard.PathAdminHome)
	require.NoError(t, err)
	assert.Equal(t, guard.ActionRedirect, outcome.Action)
	assert.Equal(t, guard.PathLogin, outcome.Target)
}

func TestNavigation_UserToAdminRedirectsToLogin(t *testing.T) {
	srv := newAuthServer(t)
	defer srv.Close()

	sessions := newSessionStore(t)
	client := api.New(srv.URL, sessions)

	credential, err := client.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	require.NoError(t, sessions.Login(context.Background(), credential))
	require.Equal(t, session.RoleUser, sessions.Current().Role)

	// Not to the user dashboard: admin-only destinations bounce to login.
	outcome, err := guard.Resolve(sessions.Current().Role, guard.PathAdminHome)
	require.NoError(t, err)
	assert.Equal(t, guard.ActionRedirect, outcome.Action)
	assert.Equal(t, guard.PathLogin, outcome.Target)
}

func TestNavigation_AdminRootRedirectsToAdminHome(t *testing.T) {
	srv := newAuthServer(t)
	defer srv.Close()

	sessions := newSessionStore(t)
	client := api.New(srv.URL, sessions)

	credential, err := client.Login(context.Background(), "admin", "pw")
	require.NoError(t, err)
	require.NoError(t, sessions.Login(context.Background(), credential))
	require.Equal(t, session.RoleAdmin, sessions.Current().Role)

	outcome, err := guard.Resolve(sessions.Current().Role, guard.PathRoot)
	require.NoError(t, err)
	assert.Equal(t, guard.ActionRedirect, outcome.Action)
	assert.Equal(t, guard.PathAdminHome, outcome.Target)
}

func TestNavigation_GuardSeesLogoutImmediately(t *testing.T) {
	srv := newAuthServer(t)
	defer srv.Close()

	sessions := newSessionStore(t)
	client := api.New(srv.URL, sessions)

	credential, err := client.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	require.NoError(t, sessions.Login(context.Background(), credential))

	outcome, err := guard.Resolve(sessions.Current().Role, guard.PathGenerate)
	require.NoError(t, err)
	require.Equal(t, guard.ActionRender, outcome.Action)

	// Guard decisions are recomputed per navigation; a logout between
	// navigations flips the outcome.
	require.NoError(t, sessions.Logout(context.Background()))

	outcome, err = guard.Resolve(sessions.Current().Role, guard.PathGenerate)
	require.NoError(t, err)
	assert.Equal(t, guard.ActionRedirect, outcome.Action)
	assert.Equal(t, guard.PathLogin, outcome.Target)
}
