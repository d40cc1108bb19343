package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LocalVerifier validates HMAC-signed JWTs issued with a shared secret. Meant
// for development and single-box deployments without an identity provider.
type LocalVerifier struct {
	secret []byte
}

// NewLocalVerifier returns a verifier for tokens signed with secret.
func NewLocalVerifier(secret string) *LocalVerifier {
	return &LocalVerifier{secret: []byte(secret)}
}

// Verify implements Verifier.
func (v *LocalVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	token, err := jwt.Parse(rawToken,
		func(t *jwt.Token) (interface{}, error) {
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", token.Claims)
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("token carries no email claim")
	}

	return &Identity{Email: email}, nil
}

// SignLocalToken mints a token the LocalVerifier accepts. Used by tests and
// by operators bootstrapping a development setup.
func SignLocalToken(secret, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
