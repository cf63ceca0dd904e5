// ABOUTME: Local state store interface and data types for the postdesk console
// ABOUTME: Defines named slot persistence and the client-side audit trail

package state

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested slot does not exist
var ErrNotFound = errors.New("not found")

// Action identifies a recorded admin operation.
type Action string

const (
	ActionEnableAccess  Action = "enable_access"
	ActionExtendAccess  Action = "extend_access"
	ActionSetRateLimit  Action = "set_rate_limit"
)

// AuditEntry records one successful admin mutation issued from this console.
// The trail is purely local; nothing here is ever sent to the server.
type AuditEntry struct {
	ID        string // UUID v4
	Action    Action // what was done
	Target    string // username the mutation applied to, empty for rate limit
	Detail    string // human-readable summary (minutes granted, new ceiling)
	CreatedAt time.Time
}

// Store is the persistence interface for session slots and the audit trail.
type Store interface {
	// GetSlot returns the value of a named slot, or ErrNotFound.
	GetSlot(ctx context.Context, name string) (string, error)

	// SetSlot writes a named slot, creating or replacing it.
	SetSlot(ctx context.Context, name string, value string) error

	// DeleteSlot removes a named slot. Deleting a missing slot is not an error.
	DeleteSlot(ctx context.Context, name string) error

	// AppendAudit records an audit entry. A missing ID is assigned.
	AppendAudit(ctx context.Context, entry *AuditEntry) error

	// ListAudit returns up to limit entries, newest first.
	ListAudit(ctx context.Context, limit int) ([]*AuditEntry, error)

	// Close releases the underlying database.
	Close() error
}
