// Package auth handles the gateway's credential concerns: it validates and
// forwards the caller's opaque bearer token, and in offline mode issues
// local HS256 tokens so the composer runs without the real identity
// provider.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type Service struct{ hmac []byte }

func NewService(secret string) *Service { return &Service{hmac: []byte(secret)} }

type Claims struct {
	Sub string `json:"sub"`
	jwt.RegisteredClaims
}

func (s *Service) Issue(sub string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub: sub,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "composer-offline",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(8 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.hmac)
}

func (s *Service) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.hmac, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

type ctxKey int

const tokenKey ctxKey = iota

// WithToken stores the caller's raw bearer token on the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFrom returns the bearer token stored on the context, if any.
func TokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey).(string)
	return tok
}

// ContextTokens is a backend token source that forwards whatever bearer the
// incoming request carried.
type ContextTokens struct{}

func (ContextTokens) Token(ctx context.Context) (string, error) {
	return TokenFrom(ctx), nil
}

// RequireBearer rejects requests without a bearer token and stashes the raw
// token on the context for pass-through. The token is not inspected: online
// mode treats it as an opaque credential owned by the backend.
func RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "missing bearer", http.StatusUnauthorized)
			return
		}
		ctx := WithToken(r.Context(), strings.TrimPrefix(h, "Bearer "))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// JWTMiddleware additionally verifies the token against the local service;
// used in offline mode where the gateway is its own issuer.
func JWTMiddleware(s *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			raw := strings.TrimPrefix(h, "Bearer ")
			if _, err := s.Parse(raw); err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), raw)))
		})
	}
}

// LoginHandler issues a local token after a bcrypt password check against
// the configured dev users (username -> bcrypt hash).
func LoginHandler(s *Service, users map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		hash, ok := users[req.Username]
		if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := s.Issue(req.Username)
		if err != nil {
			http.Error(w, "issue token", 500)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok})
	}
}

// HashPassword wraps bcrypt for config bootstrap.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}
