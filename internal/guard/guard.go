// ABOUTME: Per-navigation route guard deciding render vs redirect outcomes
// ABOUTME: Pure function of the current session role and the destination category

package guard

import (
	"fmt"

	"github.com/2389/postdesk/internal/session"
)

// Category classifies a navigation destination.
type Category string

const (
	CategoryPublic    Category = "public"
	CategoryAuthOnly  Category = "auth-only"
	CategoryUserHome  Category = "user-home"
	CategoryAdminOnly Category = "admin-only"
)

// Well-known paths.
const (
	PathRoot      = "/"
	PathLogin     = "/login"
	PathSignup    = "/signup"
	PathGenerate  = "/generate-post"
	PathUserHome  = "/dashboard"
	PathAdminHome = "/admin"
)

// Action is the guard's verdict for a navigation attempt.
type Action string

const (
	ActionRender   Action = "render"
	ActionRedirect Action = "redirect"
)

// Outcome describes what the navigation layer should do. Target is set only
// for redirects.
type Outcome struct {
	Action Action
	Target string
}

func render() Outcome {
	return Outcome{Action: ActionRender}
}

func redirect(target string) Outcome {
	return Outcome{Action: ActionRedirect, Target: target}
}

// routes maps every known path to its destination category. The root path is
// resolved by role before the table applies.
var routes = map[string]Category{
	PathLogin:     CategoryPublic,
	PathSignup:    CategoryPublic,
	PathGenerate:  CategoryAuthOnly,
	PathUserHome:  CategoryUserHome,
	PathAdminHome: CategoryAdminOnly,
}

// homeFor returns the landing path for an authenticated role.
func homeFor(role session.Role) string {
	if role == session.RoleAdmin {
		return PathAdminHome
	}
	return PathUserHome
}

// Decide is the guard transition table. It is a pure function of role and
// category: no navigation history, no caching across navigations, so a role
// change between navigations (logout) is always picked up.
//
// Dashboards are role-exclusive: an admin requesting the user home is sent to
// login rather than silently granted a view this design never renders for it.
func Decide(role session.Role, category Category) Outcome {
	switch role {
	case session.RoleAnonymous:
		if category == CategoryPublic {
			return render()
		}
		return redirect(PathLogin)

	case session.RoleUser:
		switch category {
		case CategoryPublic:
			return redirect(PathUserHome)
		case CategoryUserHome, CategoryAuthOnly:
			return render()
		default:
			return redirect(PathLogin)
		}

	case session.RoleAdmin:
		switch category {
		case CategoryPublic:
			return redirect(PathAdminHome)
		case CategoryAdminOnly, CategoryAuthOnly:
			return render()
		default:
			return redirect(PathLogin)
		}
	}

	// Unknown roles carry no privileges.
	if category == CategoryPublic {
		return render()
	}
	return redirect(PathLogin)
}

// Resolve evaluates a navigation attempt against the current role. The root
// path resolves to the public landing page for anonymous visitors and to the
// role's home for authenticated sessions.
func Resolve(role session.Role, path string) (Outcome, error) {
	if path == PathRoot {
		if role == session.RoleAnonymous {
			return render(), nil
		}
		return redirect(homeFor(role)), nil
	}

	category, ok := routes[path]
	if !ok {
		return Outcome{}, fmt.Errorf("unknown route: %s", path)
	}

	return Decide(role, category), nil
}

// Categorize returns the destination category for a known path.
func Categorize(path string) (Category, bool) {
	c, ok := routes[path]
	return c, ok
}
