// Package console implements the admin access-control workflow.
//
// # State
//
// The console holds two pieces of client-side state: a read-only roster
// snapshot fetched from the server, and a map of per-username pending
// expiration drafts. Drafts default to 10080 minutes (7 days) the first time
// a not-yet-allowed user appears and survive roster refreshes until the
// username disappears or the console is discarded.
//
// # Reconciliation
//
// Mutations are deliberately not optimistic. After a successful enable or
// extend, the console re-fetches the entire roster so the displayed state is
// always the server's computation, never a local guess. The refresh is
// strictly sequenced after the mutation's success response. A failed mutation
// changes nothing: the previous snapshot stays visible and the error is
// returned to the caller.
//
// # Validation
//
// Every mutating call validates its input before dispatch. An empty or
// non-positive minutes value falls back to the row's last-known draft or the
// 7-day default; a non-positive rate limit is rejected outright. No invalid
// value ever reaches the server.
package console
