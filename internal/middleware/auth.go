package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/dispatch"
)

const (
	contextIdentity = "identity"
	contextToken    = "session_token"
)

// Authenticator resolves a session token.
type Authenticator interface {
	Authenticate(token string) (*model.Identity, error)
}

type AuthMiddleware struct {
	auth       Authenticator
	cookieName string
}

func NewAuthMiddleware(auth Authenticator, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		auth:       auth,
		cookieName: cookieName,
	}
}

// Authenticate attaches the identity behind a valid session cookie or
// bearer token. Anonymous requests pass through untouched.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.token(c)
		if token != "" {
			if id, err := m.auth.Authenticate(token); err == nil {
				c.Set(contextIdentity, id)
				c.Set(contextToken, token)
			}
		}
		c.Next()
	}
}

func (m *AuthMiddleware) token(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(m.cookieName); err == nil {
		return cookie
	}
	return ""
}

// RequireLogin sends anonymous requests to the login page.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Identity(c); !ok {
			c.Redirect(http.StatusFound, dispatch.PathLogin)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole sends anonymous requests to the login page and requests
// from any other role to the index page.
func RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := Identity(c)
		if !ok {
			c.Redirect(http.StatusFound, dispatch.PathLogin)
			c.Abort()
			return
		}
		if id.Role != role {
			c.Redirect(http.StatusFound, dispatch.PathIndex)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Identity returns the authenticated principal, if any.
func Identity(c *gin.Context) (*model.Identity, bool) {
	v, ok := c.Get(contextIdentity)
	if !ok {
		return nil, false
	}
	id, ok := v.(*model.Identity)
	return id, ok && id != nil
}

// Token returns the raw session token of an authenticated request.
func Token(c *gin.Context) string {
	return c.GetString(contextToken)
}
