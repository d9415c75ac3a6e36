package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joinup-app/joinup/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"

	// TokenCookie is the cookie the login endpoint sets
	TokenCookie = "token"
)

// AdminChecker reports whether a user holds the administrator flag.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID primitive.ObjectID) (bool, error)
}

// Auth verifies JWT credentials and resolves the acting user for
// protected routes.
type Auth struct {
	secret []byte
	admins AdminChecker
}

func NewAuth(secret string, admins AdminChecker) *Auth {
	return &Auth{secret: []byte(secret), admins: admins}
}

// RequireUser rejects requests without a valid token and stores the
// caller's user ID in the request context.
func (a *Auth) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			response.Unauthorized(w, "Authentication required")
			return
		}

		userID, err := a.verify(token)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must be chained after RequireUser. It rejects callers
// without the administrator flag.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		if !ok {
			response.Unauthorized(w, "Authentication required")
			return
		}

		isAdmin, err := a.admins.IsAdmin(r.Context(), userID)
		if err != nil {
			response.InternalError(w, "Failed to verify permissions")
			return
		}
		if !isAdmin {
			response.Forbidden(w, "Administrator access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractToken reads the session cookie, falling back to a bearer
// Authorization header for non-browser clients.
func extractToken(r *http.Request) string {
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

func (a *Auth) verify(tokenStr string) (primitive.ObjectID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return primitive.NilObjectID, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return primitive.NilObjectID, jwt.ErrTokenInvalidClaims
	}

	sub, _ := claims["user_id"].(string)
	id, err := primitive.ObjectIDFromHex(sub)
	if err != nil {
		return primitive.NilObjectID, jwt.ErrTokenInvalidClaims
	}
	return id, nil
}

// GetUserID extracts the authenticated user ID from the request context
func GetUserID(ctx context.Context) (primitive.ObjectID, bool) {
	userID, ok := ctx.Value(UserIDKey).(primitive.ObjectID)
	return userID, ok
}
