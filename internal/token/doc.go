// Package token decodes bearer credentials for display purposes.
//
// Credentials are opaque three-segment JWT strings issued by the backend. The
// console only reads the payload segment to pick a landing page and label the
// session; it never verifies signatures and never trusts a decoded claim for
// anything the server enforces. Decoding fails open: a malformed credential
// yields empty claims and the default "user" role rather than an error.
package token
