package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/auth"
	"github.com/jwalitptl/hospital-api/internal/service/dispatch"
)

// CookieConfig controls the session cookie set on register and login.
type CookieConfig struct {
	Name   string
	Secure bool
}

type Handler struct {
	svc    *auth.Service
	cookie CookieConfig
}

func NewHandler(svc *auth.Service, cookie CookieConfig) *Handler {
	return &Handler{svc: svc, cookie: cookie}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/register/", h.redirectAuthenticated, h.RegisterForm)
	r.POST("/register/", h.redirectAuthenticated, h.Register)
	r.GET("/login/", h.redirectAuthenticated, h.LoginForm)
	r.POST("/login/", h.redirectAuthenticated, h.Login)
	r.GET("/logout/", h.Logout)
	r.GET("/dashboard/", middleware.RequireLogin(), h.Dashboard)
}

// redirectAuthenticated keeps signed-in users away from the sign-in forms.
func (h *Handler) redirectAuthenticated(c *gin.Context) {
	if _, ok := middleware.Identity(c); ok {
		c.Redirect(http.StatusFound, dispatch.PathIndex)
		c.Abort()
		return
	}
	c.Next()
}

type registerOptions struct {
	Roles []model.Role `json:"roles"`
}

func (h *Handler) RegisterForm(c *gin.Context) {
	handler.OK(c, registerOptions{Roles: model.Roles})
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := handler.Bind(c, &req); err != nil {
		handler.Fail(c, err, redactRegister(req))
		return
	}

	session, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		handler.Fail(c, err, redactRegister(req))
		return
	}
	h.setCookie(c, session.Token, session.ExpiresAt)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(handler.Redirect{
		RedirectTo: session.RedirectTo,
		Result:     session,
	}))
}

func (h *Handler) LoginForm(c *gin.Context) {
	handler.OK(c, gin.H{"username": ""})
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := handler.Bind(c, &req); err != nil {
		handler.Fail(c, err, gin.H{"username": req.Username})
		return
	}

	session, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		handler.Fail(c, err, gin.H{"username": req.Username})
		return
	}
	h.setCookie(c, session.Token, session.ExpiresAt)
	handler.OK(c, handler.Redirect{RedirectTo: session.RedirectTo, Result: session})
}

// Logout revokes the current session, if any, and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if token := middleware.Token(c); token != "" {
		h.svc.Logout(token)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	handler.OK(c, handler.Redirect{RedirectTo: dispatch.PathIndex})
}

func (h *Handler) Dashboard(c *gin.Context) {
	id, _ := middleware.Identity(c)
	handler.OK(c, handler.Redirect{RedirectTo: dispatch.Destination(id)})
}

func (h *Handler) setCookie(c *gin.Context, token string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, maxAge, "/", "", h.cookie.Secure, true)
}

func redactRegister(req model.RegisterRequest) model.RegisterRequest {
	req.Password1 = ""
	req.Password2 = ""
	return req
}
