package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"logistix/internal/core/apperror"
	"logistix/internal/core/security"
	"logistix/internal/domain/auth"
	"logistix/internal/infrastructure/http/v1/dto"
)

// AuthService is the part of auth.Service used over HTTP.
type AuthService interface {
	Login(ctx context.Context, tenantID string, creds auth.Credentials) (*auth.Session, error)
	GetUser(ctx context.Context, tenantID, userID string) (*auth.User, error)
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service AuthService
	cookie  CookieConfig
	now     func() time.Time
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
		cookie:      cookie,
		now:         time.Now,
	}
}

// Login handles POST /auth/login.
// The token is returned in the body and as an HttpOnly session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	session, err := h.service.Login(ctx, h.GetTenantID(c), req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	if h.cookie.Name != "" {
		maxAge := int(session.ExpiresAt.Sub(h.now()).Seconds())
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.cookie.Name, session.AccessToken, maxAge, "/", "", h.cookie.Secure, true)
	}

	h.OK(c, dto.LoginResponse{
		AccessToken: session.AccessToken,
		TokenType:   session.TokenType,
		ExpiresAt:   session.ExpiresAt,
		User:        dto.FromUser(session.User, permissionNames(session.User.Role)),
	})
}

// Logout handles POST /auth/logout by expiring the session cookie.
// Tokens are stateless, so a bearer token stays valid until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	if h.cookie.Name != "" {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	}
	h.Success(c, "logged out")
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := h.GetUserID(c)
	if userID == "" {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), h.GetTenantID(c), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromUser(user, permissionNames(user.Role)))
}

func permissionNames(role string) []string {
	r, ok := security.ParseRole(role)
	if !ok {
		return nil
	}
	if r == security.RoleAdmin {
		return []string{"*"}
	}
	perms := security.PermissionsForRole(r)
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
