// Package auth verifies bearer tokens and carries the caller's identity on the request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated means the request carries no usable identity
var ErrUnauthenticated = errors.New("unauthenticated")

type ctxKey string

const userIDKey ctxKey = "user_id"

// DefaultClaim holds the user identifier unless configured otherwise
const DefaultClaim = "sub"

// Verifier validates HS256 tokens and extracts the user identifier claim
type Verifier struct {
	secret []byte
	claim  string
}

// NewVerifier creates a verifier for tokens signed with secret. An empty
// claim means "sub".
func NewVerifier(secret, claim string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if claim == "" {
		claim = DefaultClaim
	}
	return &Verifier{secret: []byte(secret), claim: claim}, nil
}

// Verify parses tokenStr and returns the user identifier it carries
func (v *Verifier) Verify(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: invalid token: %v", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid claims", ErrUnauthenticated)
	}

	userID, ok := claims[v.claim].(string)
	if !ok || strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: %s claim missing", ErrUnauthenticated, v.claim)
	}
	return userID, nil
}

// Middleware rejects requests without a valid token through onError and
// otherwise stores the user identifier on the request context.
func (v *Verifier) Middleware(onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := tokenFromRequest(r)
			if err != nil {
				onError(w, r, err)
				return
			}

			userID, err := v.Verify(tokenStr)
			if err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// tokenFromRequest reads the Authorization header. EventSource clients cannot
// set headers, so GET requests may pass access_token as a query parameter.
func tokenFromRequest(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h != "" {
		if !strings.HasPrefix(h, "Bearer ") {
			return "", fmt.Errorf("%w: authorization header is not a bearer token", ErrUnauthenticated)
		}
		return strings.TrimPrefix(h, "Bearer "), nil
	}

	if r.Method == http.MethodGet {
		if token := r.URL.Query().Get("access_token"); token != "" {
			return token, nil
		}
	}
	return "", fmt.Errorf("%w: missing auth token", ErrUnauthenticated)
}

// WithUserID returns a context carrying userID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated caller
func UserIDFromContext(ctx context.Context) (string, error) {
	uid, ok := ctx.Value(userIDKey).(string)
	if !ok || uid == "" {
		return "", ErrUnauthenticated
	}
	return uid, nil
}

// IssueToken signs an HS256 token carrying subject in claim (DefaultClaim
// when empty), valid for ttl. Used by the devtoken command and tests.
func IssueToken(secret, claim, subject string, ttl time.Duration) (string, error) {
	if claim == "" {
		claim = DefaultClaim
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		claim: subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}
