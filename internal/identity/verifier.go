// Package identity verifies session tokens issued by the external identity
// provider and maps them onto the engine's Identity model. The engine never
// creates accounts or sessions itself.
package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pgfeedback/internal/feedback/domain/model"
)

var (
	ErrTokenInvalid          = errors.New("token is invalid")
	ErrTokenExpired          = errors.New("token is expired")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
)

// Claims is the token payload the identity provider issues.
type Claims struct {
	UserID      string `json:"uid"`
	DisplayName string `json:"name"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 session tokens.
type Verifier struct {
	secretKey []byte
}

// NewVerifier creates a verifier for tokens signed with the given secret.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret key cannot be empty")
	}
	return &Verifier{secretKey: []byte(secret)}, nil
}

// Verify validates a token and returns the identity it asserts. Any
// verification failure yields an error; callers treat that as anonymous.
func (v *Verifier) Verify(tokenString string) (model.Identity, error) {
	if tokenString == "" {
		return model.Identity{}, ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignatureInvalid
		}
		return v.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Identity{}, ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return model.Identity{}, ErrTokenSignatureInvalid
		}
		return model.Identity{}, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return model.Identity{}, ErrTokenInvalid
	}

	role := model.RoleUser
	if claims.Role == string(model.RoleAdmin) {
		role = model.RoleAdmin
	}

	return model.Identity{
		Authenticated: true,
		UID:           claims.UserID,
		DisplayName:   claims.DisplayName,
		Role:          role,
	}, nil
}

// IssueToken mints a token for the given identity. Used by tests and local
// development tooling; production tokens come from the identity provider.
func (v *Verifier) IssueToken(identity model.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      identity.UID,
		DisplayName: identity.DisplayName,
		Role:        string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secretKey)
}
