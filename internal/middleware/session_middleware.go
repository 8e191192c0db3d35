package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/arhambuilds/storefront-backend/config"
)

// SessionIDKey is the gin context key holding the session ID.
const SessionIDKey = "session_id"

var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionMiddleware assigns every visitor a signed anonymous session ID via
// cookie. The ID keys the cart and checkout state; it identifies a browser,
// it does not authenticate anyone.
type SessionMiddleware struct {
	cfg *config.SessionConfig
}

func NewSessionMiddleware(cfg *config.SessionConfig) *SessionMiddleware {
	return &SessionMiddleware{cfg: cfg}
}

// Attach ensures the request carries a valid session cookie, minting a fresh
// one when the cookie is missing, expired, or tampered with, and exposes the
// session ID on the gin context.
func (m *SessionMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := ""

		if token, err := c.Cookie(m.cfg.CookieName); err == nil {
			if sid, err := m.parseToken(token); err == nil {
				sessionID = sid
			} else {
				GetLoggerFromContext(c).Debug("Session cookie rejected, minting a new one", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		if sessionID == "" {
			sessionID = uuid.New().String()
			token, err := m.signToken(sessionID)
			if err != nil {
				GetLoggerFromContext(c).Error("Failed to sign session token", err, nil)
				c.AbortWithStatus(500)
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(m.cfg.CookieName, token, int(m.cfg.TokenTTL.Seconds()), "/", "", false, true)
		}

		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

func (m *SessionMiddleware) signToken(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.cfg.Secret))
}

func (m *SessionMiddleware) parseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSessionToken
		}
		return []byte(m.cfg.Secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidSessionToken
	}
	return claims.Subject, nil
}

// SessionID returns the session ID attached to the request.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
