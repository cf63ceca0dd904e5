// ABOUTME: Tests for the route guard transition table
// ABOUTME: Covers every role/category pair and root path resolution

package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/postdesk/internal/session"
)

func TestDecide_TransitionTable(t *testing.T) {
	tests := []struct {
		role     session.Role
		category Category
		want     Outcome
	}{
		{session.RoleAnonymous, CategoryPublic, Outcome{Action: ActionRender}},
		{session.RoleAnonymous, CategoryAuthOnly, Outcome{Action: ActionRedirect, Target: PathLogin}},
		{session.RoleAnonymous, CategoryUserHome, Outcome{Action: ActionRedirect, Target: PathLogin}},
		{session.RoleAnonymous, CategoryAdminOnly, Outcome{Action: ActionRedirect, Target: PathLogin}},

		{session.RoleUser, CategoryPublic, Outcome{Action: ActionRedirect, Target: PathUserHome}},
		{session.RoleUser, CategoryUserHome, Outcome{Action: ActionRender}},
		{session.RoleUser, CategoryAuthOnly, Outcome{Action: ActionRender}},
		{session.RoleUser, CategoryAdminOnly, Outcome{Action: ActionRedirect, Target: PathLogin}},

		{session.RoleAdmin, CategoryPublic, Outcome{Action: ActionRedirect, Target: PathAdminHome}},
		{session.RoleAdmin, CategoryAdminOnly, Outcome{Action: ActionRender}},
		{session.RoleAdmin, CategoryAuthOnly, Outcome{Action: ActionRender}},
		{session.RoleAdmin, CategoryUserHome, Outcome{Action: ActionRedirect, Target: PathLogin}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.role, tt.category))
		})
	}
}

func TestDecide_NoHiddenState(t *testing.T) {
	// Same inputs must produce the same outcome regardless of call order.
	first := Decide(session.RoleUser, CategoryAdminOnly)
	Decide(session.RoleAdmin, CategoryAdminOnly)
	second := Decide(session.RoleUser, CategoryAdminOnly)

	assert.Equal(t, first, second)
}

func TestResolve_RootByRole(t *testing.T) {
	tests := []struct {
		role session.Role
		want Outcome
	}{
		{session.RoleAnonymous, Outcome{Action: ActionRender}},
		{session.RoleUser, Outcome{Action: ActionRedirect, Target: PathUserHome}},
		{session.RoleAdmin, Outcome{Action: ActionRedirect, Target: PathAdminHome}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got, err := Resolve(tt.role, PathRoot)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_KnownPaths(t *testing.T) {
	// Anonymous visitor requesting the admin console lands on login.
	got, err := Resolve(session.RoleAnonymous, PathAdminHome)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Action: ActionRedirect, Target: PathLogin}, got)

	// A plain user requesting the admin console also lands on login, not on
	// its own dashboard.
	got, err = Resolve(session.RoleUser, PathAdminHome)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Action: ActionRedirect, Target: PathLogin}, got)

	// Admin can render the generation form.
	got, err = Resolve(session.RoleAdmin, PathGenerate)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Action: ActionRender}, got)
}

func TestResolve_UnknownRoute(t *testing.T) {
	_, err := Resolve(session.RoleUser, "/nope")
	assert.Error(t, err)
}

func TestCategorize(t *testing.T) {
	c, ok := Categorize(PathGenerate)
	require.True(t, ok)
	assert.Equal(t, CategoryAuthOnly, c)

	_, ok = Categorize("/nope")
	assert.False(t, ok)
}
