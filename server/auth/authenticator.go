// Package auth issues and verifies the access tokens that scope every store
// operation to an authenticated user.
package auth

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/store"
)

const (
	// AccessTokenCookieName carries the token for browser clients.
	AccessTokenCookieName = "unai.access-token"
	// AccessTokenDuration is the token lifetime.
	AccessTokenDuration = 7 * 24 * time.Hour

	issuer = "unai-chat"
)

// claims is the JWT payload; Subject holds the user id.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs a token for the given user.
func GenerateAccessToken(user *store.User, secret string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.Itoa(int(user.ID)),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenDuration)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "sign access token")
	}
	return signed, nil
}

// Authenticator resolves request credentials to a stored user.
type Authenticator struct {
	store  *store.Store
	secret string
}

// NewAuthenticator creates an authenticator backed by the given store.
func NewAuthenticator(s *store.Store, secret string) *Authenticator {
	return &Authenticator{store: s, secret: secret}
}

// AuthenticateToUser validates the token found in the Authorization header
// (Bearer scheme) or the access-token cookie and returns the owning user.
func (a *Authenticator) AuthenticateToUser(ctx context.Context, authHeader, cookieHeader string) (*store.User, error) {
	tokenString := extractToken(authHeader, cookieHeader)
	if tokenString == "" {
		return nil, errors.New("no access token provided")
	}

	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(a.secret), nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, errors.New("invalid access token")
	}

	userID, err := strconv.Atoi(c.Subject)
	if err != nil {
		return nil, errors.New("malformed token subject")
	}
	id := int32(userID)
	user, err := a.store.GetUser(ctx, &store.FindUser{ID: &id})
	if err != nil {
		return nil, errors.Wrap(err, "look up token user")
	}
	if user == nil {
		return nil, errors.New("token user no longer exists")
	}
	return user, nil
}

// extractToken prefers the Authorization header over the cookie.
func extractToken(authHeader, cookieHeader string) string {
	const bearer = "Bearer "
	if len(authHeader) > len(bearer) && authHeader[:len(bearer)] == bearer {
		return authHeader[len(bearer):]
	}
	header := http.Header{}
	header.Add("Cookie", cookieHeader)
	request := http.Request{Header: header}
	if cookie, err := request.Cookie(AccessTokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// HashPassword derives the stored bcrypt hash for a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
