// ABOUTME: Console scenarios against a stub backend over real HTTP
// ABOUTME: Verifies server-authoritative reconciliation after access grants

package console_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/postdesk/internal/api"
	"github.com/2389/postdesk/internal/console"
)

// fixedExpiry is the timestamp the stub server reports after a grant. The
// client must display it verbatim, never compute its own.
const fixedExpiry = "Mon, 02 Jan 2040 15:04:05 UTC"

// stubBackend is an in-memory roster behind real HTTP handlers.
type stubBackend struct {
	mu      sync.Mutex
	allowed map[string]bool
}

func (s *stubBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /admin/list-users", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		var roster []map[string]any
		for _, username := range []string{"alice", "bob"} {
			entry := map[string]any{
				"username":         username,
				"role":             "user",
				"allowed":          s.allowed[username],
				"access_expiresAt": "",
			}
			if s.allowed[username] {
				entry["access_expiresAt"] = fixedExpiry
			}
			roster = append(roster, entry)
		}
		json.NewEncoder(w).Encode(roster)
	})

	mux.HandleFunc("POST /admin/enable-user", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username  string `json:"username"`
			ExpiresIn int    `json:"expires_in"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Positive(t, body.ExpiresIn)

		s.mu.Lock()
		s.allowed[body.Username] = true
		s.mu.Unlock()

		json.NewEncoder(w).Encode(map[string]string{
			"message": "User " + body.Username + " enabled until " + fixedExpiry,
		})
	})

	return mux
}

func TestEnableAccess_RosterReflectsServerComputation(t *testing.T) {
	backend := &stubBackend{allowed: map[string]bool{}}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	c := console.New(api.New(srv.URL, nil), nil)

	roster, err := c.FetchRoster(context.Background())
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.False(t, roster[0].Allowed)

	msg, err := c.EnableAccess(context.Background(), "alice", 60)
	require.NoError(t, err)
	assert.Contains(t, msg, "alice")

	// The refreshed snapshot carries the server's expiry, not a local one.
	roster = c.Roster()
	for _, u := range roster {
		if u.Username != "alice" {
			continue
		}
		assert.True(t, u.Allowed)
		assert.Equal(t, fixedExpiry, u.AccessExpiresAt)
		return
	}
	t.Fatal("alice missing from refreshed roster")
}

func TestEnableAccess_DraftSurvivesServerRefresh(t *testing.T) {
	backend := &stubBackend{allowed: map[string]bool{}}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	c := console.New(api.New(srv.URL, nil), nil)

	_, err := c.FetchRoster(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.SetDraft("bob", 500))

	// Enabling alice refreshes the roster; bob's pending edit must survive.
	_, err = c.EnableAccess(context.Background(), "alice", 60)
	require.NoError(t, err)

	assert.Equal(t, 500, c.Draft("bob"))
}
