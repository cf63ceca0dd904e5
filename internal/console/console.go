// ABOUTME: Admin access-control console: roster snapshot, expiry drafts, mutations
// ABOUTME: Validates every input client-side and refreshes from the server after each mutation

package console

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/2389/postdesk/internal/api"
	"github.com/2389/postdesk/internal/state"
)

// DefaultExpirationMinutes is the draft seeded for a freshly observed
// not-yet-allowed user: 7 days.
const DefaultExpirationMinutes = 10080

// Backend is the slice of the API client the console needs.
type Backend interface {
	ListUsers(ctx context.Context) ([]api.UserRecord, error)
	EnableUser(ctx context.Context, username string, minutes int) (string, error)
	UpdateExpiration(ctx context.Context, username string, minutes int) (string, error)
	UpdateRateLimit(ctx context.Context, requestsPerMinute int) (string, error)
	RequestStats(ctx context.Context) ([]api.RequestStat, error)
}

// AuditLog records successful mutations locally. May be nil.
type AuditLog interface {
	AppendAudit(ctx context.Context, entry *state.AuditEntry) error
}

// Console holds the admin view of the roster plus per-row expiry drafts.
//
// The console never updates the roster optimistically: after every successful
// mutation it re-fetches the full roster so the displayed `allowed` and expiry
// fields always come from the server. A failed mutation leaves the previous
// snapshot visible.
type Console struct {
	mu      sync.Mutex
	backend Backend
	audit   AuditLog
	logger  *slog.Logger
	roster  []api.UserRecord
	drafts  map[string]int
}

// New creates a console over the given backend. audit may be nil to disable
// the local trail.
func New(backend Backend, audit AuditLog) *Console {
	return &Console{
		backend: backend,
		audit:   audit,
		logger:  slog.Default().With("component", "console"),
		drafts:  make(map[string]int),
	}
}

// FetchRoster replaces the local roster snapshot with the server's. On failure
// the previous snapshot is left intact and the error is returned. Drafts are
// merged, not replaced: a manually entered value survives as long as its
// username remains in the roster, and drafts for vanished usernames are
// dropped.
func (c *Console) FetchRoster(ctx context.Context) ([]api.UserRecord, error) {
	roster, err := c.backend.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching roster: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.roster = roster
	c.mergeDrafts()
	return c.rosterCopy(), nil
}

// mergeDrafts seeds the default draft for not-yet-allowed users seen for the
// first time and discards drafts whose usernames left the roster. Existing
// drafts are never overwritten. Callers must hold c.mu.
func (c *Console) mergeDrafts() {
	present := make(map[string]bool, len(c.roster))
	for _, u := range c.roster {
		present[u.Username] = true
		if _, ok := c.drafts[u.Username]; !ok && !u.Allowed {
			c.drafts[u.Username] = DefaultExpirationMinutes
		}
	}
	for username := range c.drafts {
		if !present[username] {
			delete(c.drafts, username)
		}
	}
}

// Roster returns a copy of the current roster snapshot.
func (c *Console) Roster() []api.UserRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rosterCopy()
}

func (c *Console) rosterCopy() []api.UserRecord {
	out := make([]api.UserRecord, len(c.roster))
	copy(out, c.roster)
	return out
}

// SetDraft records a pending expiration edit for a username. Only positive
// minute values are accepted.
func (c *Console) SetDraft(username string, minutes int) error {
	if err := validation.Validate(minutes, validation.Required, validation.Min(1)); err != nil {
		return fmt.Errorf("invalid expiration minutes: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts[username] = minutes
	return nil
}

// Draft returns the pending expiration minutes for a username, falling back
// to the 7-day default when no draft exists.
func (c *Console) Draft(username string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if minutes, ok := c.drafts[username]; ok {
		return minutes
	}
	return DefaultExpirationMinutes
}

// resolveMinutes applies the submit-time fallback: non-positive input means
// "unset", which falls back to the last-known draft or the default. The result
// is always a positive integer, so an invalid value is never sent to the
// server.
func (c *Console) resolveMinutes(username string, minutes int) int {
	if minutes > 0 {
		return minutes
	}
	return c.Draft(username)
}

// EnableAccess grants access for a username, expiring the given minutes from
// now as computed by the server. Non-positive minutes fall back to the row's
// draft. On success the roster is re-fetched before returning, strictly after
// the mutation's response was observed.
func (c *Console) EnableAccess(ctx context.Context, username string, minutes int) (string, error) {
	if username == "" {
		return "", fmt.Errorf("username is required")
	}
	minutes = c.resolveMinutes(username, minutes)

	msg, err := c.backend.EnableUser(ctx, username, minutes)
	if err != nil {
		return "", fmt.Errorf("enabling %s: %w", username, err)
	}

	c.recordAudit(ctx, state.ActionEnableAccess, username,
		fmt.Sprintf("enabled for %d minutes", minutes))

	if _, err := c.FetchRoster(ctx); err != nil {
		return msg, fmt.Errorf("access enabled but roster refresh failed: %w", err)
	}
	return msg, nil
}

// ExtendAccess replaces an already-allowed user's expiry window. Same contract
// and refresh-after-success policy as EnableAccess.
func (c *Console) ExtendAccess(ctx context.Context, username string, minutes int) (string, error) {
	if username == "" {
		return "", fmt.Errorf("username is required")
	}
	minutes = c.resolveMinutes(username, minutes)

	msg, err := c.backend.UpdateExpiration(ctx, username, minutes)
	if err != nil {
		return "", fmt.Errorf("extending %s: %w", username, err)
	}

	c.recordAudit(ctx, state.ActionExtendAccess, username,
		fmt.Sprintf("extended by %d minutes", minutes))

	if _, err := c.FetchRoster(ctx); err != nil {
		return msg, fmt.Errorf("expiration updated but roster refresh failed: %w", err)
	}
	return msg, nil
}

// SetGlobalRateLimit updates the global requests-per-minute ceiling. The value
// is not read back; the server copy is authoritative. Non-positive values are
// rejected before any network call.
func (c *Console) SetGlobalRateLimit(ctx context.Context, requestsPerMinute int) (string, error) {
	if err := validation.Validate(requestsPerMinute, validation.Required, validation.Min(1)); err != nil {
		return "", fmt.Errorf("invalid rate limit: %w", err)
	}

	msg, err := c.backend.UpdateRateLimit(ctx, requestsPerMinute)
	if err != nil {
		return "", fmt.Errorf("updating rate limit: %w", err)
	}

	c.recordAudit(ctx, state.ActionSetRateLimit, "",
		fmt.Sprintf("ceiling set to %d req/min", requestsPerMinute))
	return msg, nil
}

// FetchStats retrieves the server's request log. Read-only; affects no other
// console state.
func (c *Console) FetchStats(ctx context.Context) ([]api.RequestStat, error) {
	stats, err := c.backend.RequestStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching stats: %w", err)
	}
	return stats, nil
}

// recordAudit appends to the local trail. Audit failures are logged and
// swallowed: the mutation already succeeded server-side.
func (c *Console) recordAudit(ctx context.Context, action state.Action, target, detail string) {
	if c.audit == nil {
		return
	}
	entry := &state.AuditEntry{Action: action, Target: target, Detail: detail}
	if err := c.audit.AppendAudit(ctx, entry); err != nil {
		c.logger.Warn("failed to record audit entry", "action", action, "error", err)
	}
}
