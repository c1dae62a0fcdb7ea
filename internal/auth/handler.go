package auth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reindeer-games/backend/internal/errs"
	"github.com/reindeer-games/backend/internal/middleware"
	"github.com/reindeer-games/backend/internal/models"
	"github.com/reindeer-games/backend/pkg/response"
)

// SignupRequest is the body for POST /auth/signup.
type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// MagicLinkRequest is the body for POST /auth/magic-link.
type MagicLinkRequest struct {
	Email string `json:"email" binding:"required"`
}

// CompleteProfileRequest is the body for POST /auth/complete-profile.
type CompleteProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

// SessionResponse is returned after a successful sign-in.
type SessionResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
	Redirect    string       `json:"redirect"`
}

// Handler exposes the auth flows over HTTP.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Signup handles POST /auth/signup. No session is issued; the response carries
// the submitted email for the confirmation surface.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	email, err := h.service.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, gin.H{"email": email, "confirmation_sent": true})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	session, err := h.service.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	setSessionCookie(c, session)
	response.OK(c, SessionResponse{
		AccessToken: session.AccessToken,
		User:        session.User,
		Redirect:    redirectHome,
	})
}

// MagicLink handles POST /auth/magic-link. Repeatable: every call re-sends.
func (h *Handler) MagicLink(c *gin.Context) {
	var req MagicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.service.RequestMagicLink(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, gin.H{"email": req.Email, "link_sent": true})
}

// Callback handles GET /auth/callback. Always redirects, never a body.
func (h *Handler) Callback(c *gin.Context) {
	req := ParseCallback(c.Request.URL.Query())
	result := h.service.HandleCallback(c.Request.Context(), req)
	if result.Session != nil {
		setSessionCookie(c, result.Session)
	}
	c.Redirect(302, result.Location)
}

// CompleteProfile handles POST /auth/complete-profile.
func (h *Handler) CompleteProfile(c *gin.Context) {
	var req CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	session := middleware.SessionFrom(c)
	user, skipped, err := h.service.CompleteProfile(c.Request.Context(), session, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, gin.H{"user": user, "skipped": skipped, "redirect": redirectHome})
}

// Logout handles POST /auth/logout. The caller is signed out regardless of the
// provider's result.
func (h *Handler) Logout(c *gin.Context) {
	h.service.SignOut(c.Request.Context(), middleware.SessionFrom(c))
	clearSessionCookie(c)
	response.OK(c, gin.H{"redirect": redirectLogin})
}

func setSessionCookie(c *gin.Context, session *models.Session) {
	maxAge := session.ExpiresIn
	if maxAge <= 0 {
		maxAge = 24 * 3600
	}
	c.SetCookie(middleware.SessionCookie, session.AccessToken, maxAge, "/", "", false, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
}

func respondError(c *gin.Context, err error) {
	msg := errs.MessageOf(err)
	switch errs.KindOf(err) {
	case errs.KindInvalidInput:
		response.BadRequest(c, msg)
	case errs.KindUnauthenticated:
		response.Unauthorized(c, msg)
	case errs.KindForbidden:
		response.Forbidden(c, msg)
	case errs.KindNotFound:
		response.NotFound(c, msg)
	default:
		response.Internal(c, msg)
	}
}
