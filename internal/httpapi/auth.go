package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/alexanderramin/planpilot/internal/domain"
)

// ErrUnauthorized is returned for missing or invalid bearer tokens.
var ErrUnauthorized = errors.New("unauthorized")

const userKey = "planpilot.user"

// Claims is the bearer token payload. Subject carries the user ID.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for u valid for ttl.
func IssueToken(secret []byte, u *domain.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(secret []byte, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return claims, nil
}

// authenticate resolves the acting user. Without a configured secret every
// request acts as the guest member.
func (s *Server) authenticate(c *gin.Context) {
	if len(s.secret) == 0 {
		c.Set(userKey, &domain.User{ID: domain.GuestOwnerID, Name: "Guest", Role: domain.RoleMember})
		c.Next()
		return
	}

	header := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		abortError(c, http.StatusUnauthorized, "missing bearer token")
		return
	}
	claims, err := ParseToken(s.secret, strings.TrimSpace(raw))
	if err != nil {
		abortError(c, http.StatusUnauthorized, "invalid token")
		return
	}

	user, err := s.users.EnsureUser(c.Request.Context(), &domain.User{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  domain.Role(claims.Role),
	})
	if err != nil {
		s.fail(c, err)
		c.Abort()
		return
	}
	c.Set(userKey, user)
	c.Next()
}

func (s *Server) requireAdmin(c *gin.Context) {
	if !currentUser(c).IsAdmin() {
		abortError(c, http.StatusForbidden, "admin role required")
		return
	}
	c.Next()
}

func currentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return &domain.User{ID: domain.GuestOwnerID, Role: domain.RoleMember}
}

// canAccess reports whether the acting user may see data owned by ownerID.
func canAccess(c *gin.Context, ownerID string) bool {
	u := currentUser(c)
	return u.IsAdmin() || u.ID == ownerID
}
