package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hacktopia/platform/internal/auth"
	appConfig "github.com/hacktopia/platform/internal/config"
	"github.com/hacktopia/platform/internal/mail"
	"github.com/hacktopia/platform/internal/middleware"
	"github.com/hacktopia/platform/internal/user/model"
	"github.com/hacktopia/platform/internal/user/storage"
)

func setupIntegrationDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Profile{}, &model.OneTimePassword{}))
	return db
}

func setupRouter(t *testing.T, strict bool) *gin.Engine {
	r, _ := setupRouterWithDB(t, strict)
	return r
}

func setupRouterWithDB(t *testing.T, strict bool) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop().Sugar()
	db := setupIntegrationDB(t)

	files, err := storage.NewLocal(t.TempDir(), 1<<20)
	require.NoError(t, err)

	cfg := appConfig.AuthConfig{
		JWTSecret:      "integration-secret",
		TokenTTL:       time.Hour,
		ResetTokenTTL:  5 * time.Minute,
		OTPTTL:         5 * time.Minute,
		BcryptCost:     bcrypt.MinCost,
		StrictIdentity: strict,
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	deps := Dependencies{
		Tokens:      tokens,
		Mailer:      mail.NewLogSender(logger),
		Files:       files,
		Auth:        cfg,
		RequireAuth: middleware.Auth(tokens),
	}

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), NewService(db, deps, logger), deps, logger)
	return r, db
}

func call(t *testing.T, r *gin.Engine, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestIntegration_RegisterLoginProfile(t *testing.T) {
	r := setupRouter(t, false)

	status, resp := call(t, r, http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"userName": "alice", "email": "alice@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "USER_CREATED", resp["code"])

	status, resp = call(t, r, http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"userName": "alice", "email": "other@example.com", "password": "secret"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "USERNAME_ALREADY_EXISTS", resp["code"])

	status, resp = call(t, r, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email_or_username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, status)
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)

	status, _ = call(t, r, http.MethodGet, "/api/v1/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, resp = call(t, r, http.MethodGet, "/api/v1/user/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	profile := resp["profile"].(map[string]any)
	assert.Equal(t, "alice", profile["userName"])

	status, resp = call(t, r, http.MethodPost, "/api/v1/token/validate", "", map[string]string{"token": token})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "TOKEN_VALID", resp["code"])

	status, resp = call(t, r, http.MethodGet, "/api/v1/auth/check-user?userName=alice", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "USERNAME_ALREADY_EXISTS", resp["code"])

	status, resp = call(t, r, http.MethodPost, "/api/v1/user/change-password", token,
		map[string]string{"currentPassword": "secret", "newPassword": "changed"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "PASSWORD_CHANGED_SUCCESSFULLY", resp["code"])

	status, _ = call(t, r, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email_or_username": "alice@example.com", "password": "changed"})
	assert.Equal(t, http.StatusOK, status)
}

func TestIntegration_StrictResetRequiresVerifiedOTP(t *testing.T) {
	r, db := setupRouterWithDB(t, true)

	status, resp := call(t, r, http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"userName": "bob", "email": "bob@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, status)
	userID := resp["userId"].(string)
	session := resp["token"].(string)

	body := map[string]string{"userId": userID, "newPassword": "n", "confirmPassword": "n"}

	status, _ = call(t, r, http.MethodPost, "/api/v1/auth/change-password", "", body)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, r, http.MethodPost, "/api/v1/auth/change-password", session, body)
	assert.Equal(t, http.StatusUnauthorized, status, "session token cannot reset")

	status, resp = call(t, r, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"email": "bob@example.com"})
	require.Equal(t, http.StatusOK, status)
	pending := resp["token"].(string)

	status, _ = call(t, r, http.MethodGet, "/api/v1/user/profile", pending, nil)
	assert.Equal(t, http.StatusUnauthorized, status, "unverified reset token cannot read the profile")

	status, _ = call(t, r, http.MethodPost, "/api/v1/auth/change-password", pending, body)
	assert.Equal(t, http.StatusUnauthorized, status, "unverified reset token cannot reset")

	status, resp = call(t, r, http.MethodPost, "/api/v1/token/validate", "", map[string]string{"token": pending})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, r, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email_or_username": "bob", "password": "n"})
	assert.Equal(t, http.StatusBadRequest, status)

	var otp model.OneTimePassword
	require.NoError(t, db.Where("user_id = ?", userID).First(&otp).Error)

	status, resp = call(t, r, http.MethodPost, "/api/v1/auth/verify-otp", "", map[string]string{"otp": otp.OTP, "userId": userID})
	require.Equal(t, http.StatusOK, status)
	reset := resp["token"].(string)

	status, _ = call(t, r, http.MethodGet, "/api/v1/user/profile", reset, nil)
	assert.Equal(t, http.StatusUnauthorized, status, "reset token is not a session")

	status, resp = call(t, r, http.MethodPost, "/api/v1/auth/change-password", reset, body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "PASSWORD_CHANGED_SUCCESSFULLY", resp["code"])

	status, _ = call(t, r, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email_or_username": "bob", "password": "n"})
	assert.Equal(t, http.StatusOK, status)
}
