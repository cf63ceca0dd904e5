// ABOUTME: Tests for the session store lifecycle
// ABOUTME: Covers initialize/login/logout, role derivation, persistence, and notification

package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/postdesk/internal/state"
)

func testCredential(t *testing.T, role string) string {
	t.Helper()
	claims := jwt.MapClaims{"username": "alice"}
	if role != "" {
		claims["role"] = role
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func createStore(t *testing.T) (*Store, state.Store) {
	t.Helper()
	persist, err := state.NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { persist.Close() })
	return NewStore(persist), persist
}

func TestInitialize_EmptyState(t *testing.T) {
	s, _ := createStore(t)

	require.NoError(t, s.Initialize(context.Background()))

	sess := s.Current()
	assert.Equal(t, RoleAnonymous, sess.Role)
	assert.Empty(t, sess.Credential)
	assert.False(t, sess.Authenticated())
}

func TestInitialize_RestoresPersistedSession(t *testing.T) {
	s, persist := createStore(t)
	ctx := context.Background()

	credential := testCredential(t, "admin")
	require.NoError(t, persist.SetSlot(ctx, SlotCredential, credential))
	require.NoError(t, persist.SetSlot(ctx, SlotRole, "admin"))

	require.NoError(t, s.Initialize(ctx))

	sess := s.Current()
	assert.Equal(t, RoleAdmin, sess.Role)
	assert.Equal(t, credential, sess.Credential)
}

func TestInitialize_MissingRoleSlotRederives(t *testing.T) {
	s, persist := createStore(t)
	ctx := context.Background()

	credential := testCredential(t, "admin")
	require.NoError(t, persist.SetSlot(ctx, SlotCredential, credential))

	require.NoError(t, s.Initialize(ctx))

	assert.Equal(t, RoleAdmin, s.Current().Role)
}

func TestLogin_DerivesRoleFromCredential(t *testing.T) {
	tests := []struct {
		name      string
		roleClaim string
		want      Role
	}{
		{"admin claim", "admin", RoleAdmin},
		{"user claim", "user", RoleUser},
		{"missing claim defaults to user", "", RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := createStore(t)
			ctx := context.Background()
			require.NoError(t, s.Initialize(ctx))

			require.NoError(t, s.Login(ctx, testCredential(t, tt.roleClaim)))

			assert.Equal(t, tt.want, s.Current().Role)
		})
	}
}

func TestLogin_MalformedCredentialDefaultsToUser(t *testing.T) {
	s, _ := createStore(t)
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))

	// Never throws: a garbage credential still yields a session with the
	// default role. The server rejects it on first use.
	require.NoError(t, s.Login(ctx, "not-a-jwt"))

	assert.Equal(t, RoleUser, s.Current().Role)
}

func TestLogin_PersistsBothSlots(t *testing.T) {
	s, persist := createStore(t)
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))

	credential := testCredential(t, "admin")
	require.NoError(t, s.Login(ctx, credential))

	got, err := persist.GetSlot(ctx, SlotCredential)
	require.NoError(t, err)
	assert.Equal(t, credential, got)

	got, err = persist.GetSlot(ctx, SlotRole)
	require.NoError(t, err)
	assert.Equal(t, "admin", got)
}

func TestLogout_ClearsEverything(t *testing.T) {
	s, persist := createStore(t)
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Login(ctx, testCredential(t, "admin")))

	require.NoError(t, s.Logout(ctx))

	sess := s.Current()
	assert.Equal(t, RoleAnonymous, sess.Role)
	assert.Empty(t, sess.Credential)

	_, err := persist.GetSlot(ctx, SlotCredential)
	assert.ErrorIs(t, err, state.ErrNotFound)
	_, err = persist.GetSlot(ctx, SlotRole)
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestLogout_Idempotent(t *testing.T) {
	s, _ := createStore(t)
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Login(ctx, testCredential(t, "user")))

	require.NoError(t, s.Logout(ctx))
	require.NoError(t, s.Logout(ctx))

	assert.Equal(t, RoleAnonymous, s.Current().Role)
}

func TestSubscribe_NotifiedSynchronously(t *testing.T) {
	s, _ := createStore(t)
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))

	var observed []Session
	unsubscribe := s.Subscribe(func(sess Session) {
		observed = append(observed, sess)
	})

	require.NoError(t, s.Login(ctx, testCredential(t, "admin")))
	require.NoError(t, s.Logout(ctx))

	require.Len(t, observed, 2)
	assert.Equal(t, RoleAdmin, observed[0].Role)
	assert.Equal(t, RoleAnonymous, observed[1].Role)

	unsubscribe()
	require.NoError(t, s.Login(ctx, testCredential(t, "user")))
	assert.Len(t, observed, 2)
}

func TestMutationBeforeInitialize(t *testing.T) {
	s, _ := createStore(t)

	assert.ErrorIs(t, s.Login(context.Background(), "x"), ErrNotInitialized)
	assert.ErrorIs(t, s.Logout(context.Background()), ErrNotInitialized)
}
