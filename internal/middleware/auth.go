package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"library-service/internal/result"
)

// TokenClaims matches the access tokens issued by the auth service.
type TokenClaims struct {
	UserID        string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	TokenType     string `json:"typ"`
	jwt.RegisteredClaims
}

type ctxUserIDKey struct{}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserIDKey{}, userID)
}

// UserIDFromContext returns the id stored by Authenticate.
func UserIDFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxUserIDKey{}).(string)
	return s, ok && s != ""
}

// Authenticate resolves the calling user from a bearer access token, or from
// the X-User-Id header when trustGateway is set. The token may also be passed
// as ?token= for websocket upgrades, where browsers cannot set headers.
func Authenticate(secret []byte, trustGateway bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				writeUnauthorized(w, err.Error())
				return
			}

			var userID string
			switch {
			case raw != "" && len(secret) > 0:
				claims := &TokenClaims{}
				token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
					return secret, nil
				}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
				if err != nil || !token.Valid || claims.TokenType != "access" || claims.UserID == "" {
					writeUnauthorized(w, "invalid token")
					return
				}
				userID = claims.UserID
			case trustGateway:
				userID = strings.TrimSpace(r.Header.Get("X-User-Id"))
			}

			if userID == "" {
				writeUnauthorized(w, "missing user context")
				return
			}

			recordUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

type authError string

func (e authError) Error() string { return string(e) }

func bearerToken(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return r.URL.Query().Get("token"), nil
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", authError("invalid Authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	result.WriteError(w, http.StatusUnauthorized, msg)
}

// CurrentUser returns the authenticated user, writing a 401 when the
// request did not pass through Authenticate.
func CurrentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "missing user context")
	}
	return userID, ok
}
