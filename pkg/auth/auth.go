// Package auth issues and verifies the bearer tokens protecting the admin
// routes.
package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/example/sunrisecafe/pkg/config"
)

type Manager struct {
	secret        []byte
	ttl           time.Duration
	adminUsername string
	adminPassword string
}

func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret:        []byte(cfg.JWTSecret),
		ttl:           cfg.TokenTTL,
		adminUsername: cfg.AdminUsername,
		adminPassword: cfg.AdminPassword,
	}
}

// Login checks the configured admin credentials and returns a signed token.
func (m *Manager) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.adminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.adminPassword)) == 1
	if !userOK || !passOK {
		return "", fmt.Errorf("invalid credentials")
	}
	return m.issue(username)
}

func (m *Manager) issue(subject string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(m.ttl).Unix(),
	})
	return token.SignedString(m.secret)
}

// Middleware rejects requests without a valid bearer token.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, ok := claims["sub"].(string); ok {
				c.Set("subject", sub)
			}
		}
		c.Next()
	}
}
