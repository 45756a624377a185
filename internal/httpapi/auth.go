package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ctxStaffKey = "haccp_staff"

// Claims is the bearer token payload. Name is recorded as the author of
// monitoring entries, verifications and follow-ups.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Staff identifies the authenticated caller.
type Staff struct {
	Name string
	Role string
}

// IssueToken signs an HS256 token for name.
func IssueToken(secret []byte, issuer, name, role string, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	claims := Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   name,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Authenticate validates the bearer token and stores the caller in the gin
// context. With an empty secret authentication is disabled and authorship
// must come from request bodies.
func Authenticate(secret []byte, issuer string) gin.HandlerFunc {
	if len(secret) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token format"})
			return
		}
		claims := &Claims{}
		token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		name := claims.Name
		if name == "" {
			name = claims.Subject
		}
		c.Set(ctxStaffKey, Staff{Name: name, Role: claims.Role})
		c.Next()
	}
}

// staffFrom returns the authenticated caller, if any.
func staffFrom(c *gin.Context) (Staff, bool) {
	v, ok := c.Get(ctxStaffKey)
	if !ok {
		return Staff{}, false
	}
	s, ok := v.(Staff)
	return s, ok && s.Name != ""
}

// author picks the token identity over a body-supplied name.
func author(c *gin.Context, fromBody string) string {
	if s, ok := staffFrom(c); ok {
		return s.Name
	}
	return strings.TrimSpace(fromBody)
}
