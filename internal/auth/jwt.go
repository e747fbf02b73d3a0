package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenValidity = 24 * time.Hour

// Claims carries the identity inside a token.
type Claims struct {
	jwt.RegisteredClaims
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type Signer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewSigner(secret []byte, validity time.Duration) *Signer {
	if validity <= 0 {
		validity = DefaultTokenValidity
	}

	return &Signer{secret: secret, validity: validity, now: time.Now}
}

func (s *Signer) Sign(id Identity) (string, error) {
	now := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
		Username: id.Username,
		Roles:    id.Roles,
	})

	return token.SignedString(s.secret)
}

// Verify returns the identity of a token. Every failure, expiry included,
// unwraps to ErrUnauthorized.
func (s *Signer) Verify(token string) (*Identity, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, errors.New("token has no subject"))
	}

	return &Identity{
		UserID:   claims.Subject,
		Username: claims.Username,
		Roles:    claims.Roles,
	}, nil
}
