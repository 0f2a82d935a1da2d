// Package router provides auth and profile routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hacktopia/platform/internal/auth"
	appConfig "github.com/hacktopia/platform/internal/config"
	"github.com/hacktopia/platform/internal/mail"
	"github.com/hacktopia/platform/internal/middleware"
	"github.com/hacktopia/platform/internal/user/handler"
	"github.com/hacktopia/platform/internal/user/repository"
	"github.com/hacktopia/platform/internal/user/service"
	"github.com/hacktopia/platform/internal/user/storage"
)

// Dependencies are the collaborators the user module needs.
type Dependencies struct {
	Tokens *auth.TokenManager
	Mailer mail.Sender
	Files  storage.Storage
	Auth   appConfig.AuthConfig
	// RequireAuth rejects requests without a valid bearer token.
	RequireAuth gin.HandlerFunc
}

// NewService wires the user service on top of db.
func NewService(db *gorm.DB, deps Dependencies, logger *zap.SugaredLogger) service.Service {
	repo := repository.New(db, logger)
	return service.New(repo, db, deps.Tokens, deps.Mailer, deps.Files, deps.Auth, logger)
}

// RegisterRoutes registers auth, token and profile routes under api (/api/v1).
func RegisterRoutes(api *gin.RouterGroup, svc service.Service, deps Dependencies, logger *zap.SugaredLogger) {
	h := handler.New(svc, deps.Files, deps.Auth.StrictIdentity, logger)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/forgot-password", h.ForgotPassword)
	authGroup.POST("/verify-otp", h.VerifyOTP)
	authGroup.GET("/check-user", h.CheckUser)
	if deps.Auth.StrictIdentity {
		authGroup.POST("/change-password", middleware.Auth(deps.Tokens, auth.PurposeReset), h.ResetPassword)
	} else {
		authGroup.POST("/change-password", h.ResetPassword)
	}

	api.POST("/token/validate", h.ValidateToken)

	userGroup := api.Group("/user", deps.RequireAuth)
	userGroup.GET("/profile", h.GetProfile)
	userGroup.POST("/profile", h.UpdateProfile)
	userGroup.POST("/change-password", h.ChangePassword)

	api.GET("/uploads/:file", deps.RequireAuth, h.ServeUpload)
}
