// Package session manages the console's authenticated session.
//
// # Lifecycle
//
// The store has an explicit lifecycle: Initialize loads any persisted
// credential at startup, Login/Logout mutate the session, and both persisted
// slots are cleared on logout. Role is never set independently of the
// credential; an absent credential always means the anonymous role.
//
// # Readers
//
// The route guard and every outbound call site read the session through
// Current() or a Subscribe listener. Mutations are atomic: credential and role
// change together, and subscribers are notified synchronously before the
// mutating call returns, so no reader observes a partial update.
package session
