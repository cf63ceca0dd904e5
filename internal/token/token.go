// ABOUTME: Unverified JWT claim decoding for display purposes
// ABOUTME: Extracts the role claim from opaque bearer credentials without signature checks

package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// DefaultRole is assumed when a credential carries no usable role claim.
const DefaultRole = "user"

// RoleAdmin is the privileged role recognized by the console.
const RoleAdmin = "admin"

// DecodeClaims extracts the payload claims from a three-segment JWT credential
// without verifying its signature. The server is the sole authority for every
// authorized call; decoded claims are untrusted display hints only and must
// never gate a security decision.
//
// On any failure (malformed segments, invalid base64, invalid JSON) it returns
// an empty claim map. It never returns an error to the caller.
func DecodeClaims(credential string) map[string]any {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(credential, claims); err != nil {
		return map[string]any{}
	}

	return claims
}

// RoleFrom returns the role claim of a credential, falling back to DefaultRole
// when the claim is missing, empty, or not a string.
func RoleFrom(credential string) string {
	claims := DecodeClaims(credential)

	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return DefaultRole
	}
	return role
}
