// Package api implements the HTTP client for the post-generation backend.
//
// # Contract
//
// All calls are JSON over HTTPS against a configured backend origin, with
// `Authorization: Bearer <credential>` attached whenever a session exists:
//
//   - POST /login, /signup            -> {token}
//   - GET  /admin/list-users          -> roster of user records
//   - POST /admin/enable-user         -> ack
//   - POST /admin/update-expiration   -> ack
//   - POST /admin/update-rate-limit   -> ack
//   - GET  /admin/request-stats       -> request log entries
//   - POST /generate-post             -> {post}
//
// Admin endpoints require an admin-role credential. The server is the sole
// enforcement point; nothing in this client is a security boundary.
//
// # Errors
//
// Non-2xx responses become *Error values carrying the HTTP status and the
// server's error message. Request payloads are validated before dispatch, so
// an invalid value is never sent to the server.
package api
