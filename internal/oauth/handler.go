package oauth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hacktopia/platform/internal/response"
)

// CodeInvalidState is returned when the callback state does not match.
const CodeInvalidState = "INVALID_STATE"

// Handler serves the Google sign-in endpoints. A nil service disables them.
type Handler struct {
	service *Service
	logger  *zap.SugaredLogger
}

// NewHandler creates the handler; svc may be nil when sign-in is not configured.
func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// RegisterRoutes mounts GET /google and GET /google/callback on the auth group.
func (h *Handler) RegisterRoutes(authGroup *gin.RouterGroup) {
	authGroup.GET("/google", h.Login)
	authGroup.GET("/google/callback", h.Callback)
}

// Login handles GET /auth/google.
func (h *Handler) Login(c *gin.Context) {
	if h.service == nil {
		h.disabled(c)
		return
	}

	target, err := h.service.LoginURL(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to start google sign-in", "error", err)
		response.Internal(c)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// Callback handles GET /auth/google/callback.
func (h *Handler) Callback(c *gin.Context) {
	if h.service == nil {
		h.disabled(c)
		return
	}

	target, err := h.service.Callback(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			response.Fail(c, http.StatusBadRequest, CodeInvalidState, "Invalid or expired sign-in state")
			return
		}
		h.logger.Errorw("google sign-in failed", "error", err)
		response.Fail(c, http.StatusInternalServerError, response.CodeInternalError, "Google authentication failed")
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (h *Handler) disabled(c *gin.Context) {
	response.Fail(c, http.StatusNotFound, response.CodeNotFound, "Google sign-in is not configured")
}
