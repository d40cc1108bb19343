// Package auth verifies the bearer tokens presented with each request.
// Verification itself is delegated: in production to an OIDC identity
// provider, in development to locally HMAC-signed JWTs. Either way the result
// is a verified email address; mapping that address to an authorization
// entity happens in the model layer.
package auth

import "context"

// Identity is the decoded result of a successful token verification.
type Identity struct {
	// Email is the verified address of the caller.
	Email string
}

// Verifier validates a raw bearer token and returns the caller's identity.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}
