package middleware

import (
	"BlogHub/internal/model"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type ctxKey int

const identityKey ctxKey = iota

// Identity — аутентифицированный пользователь запроса (без пароля).
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// IdentityFromUser собирает Identity из модели пользователя.
func IdentityFromUser(u *model.User) Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Claims — содержимое JWT.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// IssueToken подписывает токен для пользователя (HS256).
func IssueToken(userID int64, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken проверяет подпись и срок действия и возвращает id пользователя.
func ParseToken(tokenStr, secret string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, jwt.ErrTokenInvalidClaims
	}
	return claims.UserID, nil
}

// UserLookup загружает пользователя по id из токена.
type UserLookup interface {
	Get(ctx context.Context, id int64) (*model.User, error)
}

// RequireAuth пропускает запрос только с валидным токеном существующего пользователя.
// Заголовок: "Authorization: Bearer <token>" или просто "<token>".
func RequireAuth(secret string, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header missing")
				return
			}

			tokenStr := bearerToken(header)
			if tokenStr == "" {
				writeError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			userID, err := ParseToken(tokenStr, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			user, err := users.Get(r.Context(), userID)
			if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user == nil) {
				writeError(w, http.StatusUnauthorized, "User not found")
				return
			}
			if err != nil {
				logger.Errorw("auth: failed to load user", "user_id", userID, "error", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx := WithIdentity(r.Context(), IdentityFromUser(user))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin ставится после RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authorization header missing")
			return
		}
		if !id.IsAdmin() {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 6 && strings.EqualFold(header[:6], "bearer") {
		header = strings.TrimSpace(header[6:])
	}
	return header
}

// WithIdentity кладёт пользователя в контекст.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext достаёт пользователя, положенного RequireAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
