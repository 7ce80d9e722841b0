// Package auth contains the credential primitives of the server: bcrypt
// password hashing and the signed-token codec.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophprofile/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes short-lived access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

const (
	ClaimSubject = "sub"
	ClaimType    = "type"
	ClaimExpiry  = "exp"
)

// Claims is the verified claim set of a token.
type Claims map[string]any

func (c Claims) Subject() string {
	s, _ := c[ClaimSubject].(string)
	return s
}

func (c Claims) Type() TokenType {
	s, _ := c[ClaimType].(string)
	return TokenType(s)
}

// TokenCodec issues and verifies HMAC-signed JWTs. It is immutable after
// construction and safe for concurrent use.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

type CodecOption func(*TokenCodec)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// NewTokenCodec builds a codec for one of HS256, HS384 or HS512. The secret
// is copied so later changes to the caller's slice have no effect.
func NewTokenCodec(secret []byte, algorithm string, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		method: method,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Algorithm returns the configured JWT "alg" value.
func (c *TokenCodec) Algorithm() string {
	return c.method.Alg()
}

// Issue signs a copy of claims with exp set to now+ttl. A caller-supplied
// exp is overwritten.
func (c *TokenCodec) Issue(claims map[string]any, ttl time.Duration) (string, error) {
	mc := make(jwt.MapClaims, len(claims)+1)
	for k, v := range claims {
		mc[k] = v
	}
	mc[ClaimExpiry] = jwt.NewNumericDate(c.now().Add(ttl))

	token, err := jwt.NewWithClaims(c.method, mc).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (c *TokenCodec) IssueAccess(sub string, ttl time.Duration) (string, error) {
	return c.Issue(map[string]any{ClaimSubject: sub, ClaimType: string(TokenTypeAccess)}, ttl)
}

func (c *TokenCodec) IssueRefresh(sub string, ttl time.Duration) (string, error) {
	return c.Issue(map[string]any{ClaimSubject: sub, ClaimType: string(TokenTypeRefresh)}, ttl)
}

// Verify checks signature, algorithm, expiry and type. Every failure matches
// common.ErrInvalidToken; expiry and type mismatches additionally match
// common.ErrTokenExpired and common.ErrTokenType. A token is rejected from
// the instant of its exp on.
func (c *TokenCodec) Verify(tokenString string, expected TokenType) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	token, err := parser.Parse(tokenString, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
		}
		return nil, common.ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, common.ErrInvalidToken
	}

	claims := Claims(mc)
	if claims.Type() != expected {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenType)
	}
	if claims.Subject() == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
