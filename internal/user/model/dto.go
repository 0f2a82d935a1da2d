package model

import (
	"io"
	"time"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	UserName string `json:"userName" binding:"required"`
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the body of POST /auth/login. The identifier is an email
// when it contains "@", a username otherwise.
type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username" binding:"required"`
	Password        string `json:"password"          binding:"required"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// VerifyOTPRequest is the body of POST /auth/verify-otp.
type VerifyOTPRequest struct {
	OTP    string `json:"otp"    binding:"required"`
	UserID string `json:"userId"`
}

// ResetPasswordRequest is the body of POST /auth/change-password.
type ResetPasswordRequest struct {
	UserID          string `json:"userId"          binding:"required"`
	NewPassword     string `json:"newPassword"     binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// ChangePasswordRequest is the body of POST /user/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword"     binding:"required"`
}

// ValidateTokenRequest is the body of POST /token/validate.
type ValidateTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// Session is an issued bearer token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
}

// PasswordReset is the result of a reset request: the short-lived token and
// the account the emailed code belongs to.
type PasswordReset struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// Upload is a profile picture received from a client.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// UpdateProfileRequest carries the optional fields of POST /user/profile.
type UpdateProfileRequest struct {
	UserName string
	Picture  *Upload
}

// ProfileUpdate is the result of a profile update.
type ProfileUpdate struct {
	Profile *Profile
	Created bool
}
