package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campuskit/auth-service/internal/application/auth"
	"github.com/campuskit/auth-service/internal/domain"
)

// JWTCodec signs and verifies typed HS256 tokens. The typ claim carries the
// access/refresh/verification discriminator so a token of one kind cannot be
// replayed as another.
type JWTCodec struct {
	secret []byte
	issuer string
}

func NewJWTCodec(secret string, issuer string) *JWTCodec {
	return &JWTCodec{
		secret: []byte(secret),
		issuer: issuer,
	}
}

type tokenClaims struct {
	SchoolID int64  `json:"sid,omitempty"`
	Email    string `json:"email,omitempty"`
	Kind     string `json:"typ"`
	jwt.RegisteredClaims
}

func (c *JWTCodec) Sign(kind auth.TokenKind, userID, schoolID int64, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		SchoolID: schoolID,
		Email:    email,
		Kind:     string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (c *JWTCodec) Verify(token string, want auth.TokenKind) (auth.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrTokenInvalid()
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		// Expired vs malformed matters for logs; callers see a uniform
		// unauthenticated result either way.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return auth.TokenClaims{}, domain.ErrTokenExpired()
		}
		return auth.TokenClaims{}, domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return auth.TokenClaims{}, domain.ErrTokenInvalid()
	}
	if claims.Kind != string(want) {
		return auth.TokenClaims{}, domain.ErrTokenInvalid()
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return auth.TokenClaims{}, domain.ErrTokenInvalid()
	}

	exp := time.Time{}
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}

	return auth.TokenClaims{
		UserID:   userID,
		SchoolID: claims.SchoolID,
		Email:    claims.Email,
		Kind:     auth.TokenKind(claims.Kind),
		Exp:      exp,
	}, nil
}
