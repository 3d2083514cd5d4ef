package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"food-ordering-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const identityKey = "identity"

type Claims struct {
	UserID uint        `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the caller as currently stored, attached by AuthRequired.
type Identity struct {
	ID    uint
	Email string
	Role  models.Role
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue creates a signed JWT for a given user
func (ti *TokenIssuer) Issue(u *models.User) (string, error) {
	now := ti.now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// Parse verifies signature, algorithm and expiry.
func (ti *TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return ti.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}

// UserLookup re-resolves the token subject on every request.
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// AuthRequired validates the bearer token, loads the live user and injects
// its identity into the context
func AuthRequired(tokens *TokenIssuer, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}
		claims, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abort(c, http.StatusUnauthorized, "User not found")
			return
		}
		if err != nil {
			_ = c.Error(err)
			abort(c, http.StatusInternalServerError, "Authentication failed")
			return
		}

		c.Set(identityKey, Identity{ID: user.ID, Email: user.Email, Role: user.Role})
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Access denied. Authentication required.")
			return
		}
		if !hasRole(id.Role, roles) {
			abort(c, http.StatusForbidden, "Access denied. Insufficient permissions.")
			return
		}
		c.Next()
	}
}

func hasRole(role models.Role, allowed []models.Role) bool {
	switch role {
	case models.RoleCustomer, models.RoleStaff, models.RoleAdmin:
		for _, r := range allowed {
			if r == role {
				return true
			}
		}
	}
	return false
}

// GetIdentity extracts the caller from context
func GetIdentity(c *gin.Context) (Identity, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := val.(Identity)
	return id, ok
}

// MustIdentity is GetIdentity for handlers mounted behind AuthRequired.
func MustIdentity(c *gin.Context) Identity {
	id, ok := GetIdentity(c)
	if !ok {
		panic("middleware: no identity in context; route is missing AuthRequired")
	}
	return id
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
