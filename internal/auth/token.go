package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Token verification errors. Callers on optional-auth paths treat any of
// these as anonymous; auth-required paths fail closed.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// Claims is the identity extracted from a verified bearer token. The token
// subject carries the account email, matching what the auth service issues.
type Claims struct {
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// Verifier validates HS256 bearer tokens and checks them against the
// revocation store. It never issues tokens; that is the auth service's job.
type Verifier struct {
	secret  []byte
	revoked RevocationStore
	logger  zerolog.Logger
}

// NewVerifier creates a token verifier.
func NewVerifier(secret string, revoked RevocationStore, logger zerolog.Logger) *Verifier {
	return &Verifier{
		secret:  []byte(secret),
		revoked: revoked,
		logger:  logger.With().Str("component", "token_verifier").Logger(),
	}
}

// Verify parses and validates a bearer token, returning its claims. A token
// that is malformed, expired, signed with the wrong key or algorithm, or
// missing a subject yields ErrInvalidToken; a blocklisted one yields
// ErrRevokedToken.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	var registered jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &registered,
		func(t *jwt.Token) (interface{}, error) {
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		v.logger.Debug().Err(err).Msg("token rejected")
		return nil, ErrInvalidToken
	}

	if registered.Subject == "" {
		return nil, ErrInvalidToken
	}

	var expires time.Time
	if registered.ExpiresAt != nil {
		expires = registered.ExpiresAt.Time
	}

	if registered.ID != "" {
		revoked, err := v.revoked.IsRevoked(ctx, registered.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			v.logger.Debug().Str("token_id", registered.ID).Msg("revoked token rejected")
			return nil, ErrRevokedToken
		}
	}

	return &Claims{
		Email:     registered.Subject,
		TokenID:   registered.ID,
		ExpiresAt: expires,
	}, nil
}
