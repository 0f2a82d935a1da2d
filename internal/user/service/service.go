// Package service provides business logic layer for user module.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hacktopia/platform/internal/auth"
	appConfig "github.com/hacktopia/platform/internal/config"
	"github.com/hacktopia/platform/internal/mail"
	"github.com/hacktopia/platform/internal/user/model"
	"github.com/hacktopia/platform/internal/user/repository"
	"github.com/hacktopia/platform/internal/user/storage"
)

// Service defines the interface for account and profile operations.
type Service interface {
	// Register creates a user with its profile and signs a session token.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.Session, error)

	// Login verifies credentials; the identifier is an email when it contains "@".
	Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error)

	// LoginWithOAuth signs in the account with the email, creating it when missing.
	LoginWithOAuth(ctx context.Context, email, displayName string) (*model.Session, error)

	// RequestPasswordReset issues and mails a one-time password.
	RequestPasswordReset(ctx context.Context, email string) (*model.PasswordReset, error)

	// VerifyOTP consumes a one-time password and signs a short-lived reset token.
	VerifyOTP(ctx context.Context, otp, userID string) (*model.Session, error)

	// ResetPassword sets a new password without the current one.
	ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error

	// ChangePassword sets a new password after checking the current one.
	ChangePassword(ctx context.Context, userID string, req *model.ChangePasswordRequest) error

	// UserNameAvailable reports whether no profile uses the username.
	UserNameAvailable(ctx context.Context, userName string) (bool, error)

	// ValidateToken verifies a token and that its user still exists.
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)

	// GetProfile returns the profile of a user.
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)

	// UpdateProfile changes username and/or picture, creating the profile when missing.
	UpdateProfile(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.ProfileUpdate, error)

	// PurgeExpiredOTPs deletes one-time passwords past their expiry.
	PurgeExpiredOTPs(ctx context.Context) (int64, error)
}

type service struct {
	repo   repository.Repository
	db     *gorm.DB
	tokens *auth.TokenManager
	mailer mail.Sender
	files  storage.Storage
	cfg    appConfig.AuthConfig
	logger *zap.SugaredLogger
	now    func() time.Time
}

// New creates a new user service instance.
func New(
	repo repository.Repository,
	db *gorm.DB,
	tokens *auth.TokenManager,
	mailer mail.Sender,
	files storage.Storage,
	cfg appConfig.AuthConfig,
	logger *zap.SugaredLogger,
) Service {
	return &service{
		repo:   repo,
		db:     db,
		tokens: tokens,
		mailer: mailer,
		files:  files,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

func identity(user *model.User) auth.Identity {
	id := auth.Identity{UserID: user.UserID, Email: user.Email}
	if user.Profile != nil {
		id.UserName = user.Profile.UserName
	}
	return id
}

func (s *service) session(user *model.User) (*model.Session, error) {
	token, expiresAt, err := s.tokens.Generate(identity(user))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &model.Session{Token: token, ExpiresAt: expiresAt, UserID: user.UserID}, nil
}

// resetToken signs a short-lived token that cannot authenticate API calls.
func (s *service) resetToken(user *model.User, purpose auth.Purpose) (*model.Session, error) {
	token, expiresAt, err := s.tokens.GenerateFor(identity(user), purpose, s.cfg.ResetTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &model.Session{Token: token, ExpiresAt: expiresAt, UserID: user.UserID}, nil
}

// createAccount inserts user and profile in one transaction.
func (s *service) createAccount(ctx context.Context, email, userName, password string) (*model.User, error) {
	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{Email: email, PasswordHash: hash}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.New(tx, s.logger)

		if err := txRepo.Create(ctx, user); err != nil {
			return err
		}

		profile := &model.Profile{UserID: user.UserID, UserName: userName}
		if err := txRepo.CreateProfile(ctx, profile); err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Register creates a user with its profile.
func (s *service) Register(ctx context.Context, req *model.RegisterRequest) (*model.Session, error) {
	email := strings.TrimSpace(req.Email)
	userName := strings.TrimSpace(req.UserName)
	s.logger.Debugw("Register called", "email", email, "user_name", userName)

	if email == "" || userName == "" || req.Password == "" {
		return nil, model.ErrMissingFields
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, model.ErrEmailExists
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	taken, err := s.repo.UserNameExists(ctx, userName)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, model.ErrUsernameExists
	}

	user, err := s.createAccount(ctx, email, userName, req.Password)
	if err != nil {
		if !errors.Is(err, model.ErrEmailExists) && !errors.Is(err, model.ErrUsernameExists) {
			s.logger.Errorw("Register failed", "email", email, "error", err)
		}
		return nil, err
	}

	s.logger.Infow("Register completed", "user_id", user.UserID)
	return s.session(user)
}

// Login verifies credentials.
func (s *service) Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error) {
	identifier := strings.TrimSpace(req.EmailOrUsername)
	s.logger.Debugw("Login called", "identifier", identifier)

	if identifier == "" || req.Password == "" {
		return nil, model.ErrMissingFields
	}

	var (
		user *model.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.repo.GetByEmail(ctx, identifier)
	} else {
		user, err = s.repo.GetByUserName(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}

	if !auth.ComparePassword(user.PasswordHash, req.Password) {
		s.logger.Infow("Login incorrect password", "user_id", user.UserID)
		return nil, model.ErrIncorrectPassword
	}

	s.logger.Infow("Login completed", "user_id", user.UserID)
	return s.session(user)
}

// LoginWithOAuth signs in or provisions an account for a verified email.
func (s *service) LoginWithOAuth(ctx context.Context, email, displayName string) (*model.Session, error) {
	s.logger.Debugw("LoginWithOAuth called", "email", email)

	if email == "" {
		return nil, model.ErrMissingFields
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return s.session(user)
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	userName, err := s.freeUserName(ctx, displayName, email)
	if err != nil {
		return nil, err
	}

	// Password login stays impossible until a reset sets a known password.
	user, err = s.createAccount(ctx, email, userName, uuid.NewString())
	if err != nil {
		s.logger.Errorw("LoginWithOAuth failed to create account", "email", email, "error", err)
		return nil, err
	}

	s.logger.Infow("LoginWithOAuth created account", "user_id", user.UserID, "user_name", userName)
	return s.session(user)
}

// freeUserName derives a username from the display name (or the email's local
// part), lower-cased without spaces, and suffixes it until it is unused.
func (s *service) freeUserName(ctx context.Context, displayName, email string) (string, error) {
	base := strings.ToLower(strings.Join(strings.Fields(displayName), ""))
	if base == "" {
		base, _, _ = strings.Cut(email, "@")
		base = strings.ToLower(base)
	}

	candidate := base
	for range 5 {
		taken, err := s.repo.UserNameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + uuid.NewString()[:6]
	}
	return base + "-" + uuid.NewString(), nil
}

// RequestPasswordReset issues a one-time password and mails it.
func (s *service) RequestPasswordReset(ctx context.Context, email string) (*model.PasswordReset, error) {
	email = strings.TrimSpace(email)
	s.logger.Debugw("RequestPasswordReset called", "email", email)

	if email == "" {
		return nil, model.ErrMissingFields
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	code, err := generateOTP()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	otp := &model.OneTimePassword{
		UserID: user.UserID,
		OTP:    code,
		Expiry: s.now().UTC().Add(s.cfg.OTPTTL),
	}
	if err := s.repo.UpsertOTP(ctx, otp); err != nil {
		return nil, err
	}

	body := fmt.Sprintf("Your password reset code is %s. It expires in %s.", code, s.cfg.OTPTTL)
	if err := s.mailer.Send(ctx, user.Email, "Password reset code", body); err != nil {
		s.logger.Errorw("RequestPasswordReset mail failed", "user_id", user.UserID, "error", err)
		return nil, fmt.Errorf("%w: %w", model.ErrOTPNotSent, err)
	}

	session, err := s.resetToken(user, auth.PurposeResetPending)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("RequestPasswordReset completed", "user_id", user.UserID)
	return &model.PasswordReset{Token: session.Token, UserID: user.UserID}, nil
}

// VerifyOTP consumes a one-time password.
func (s *service) VerifyOTP(ctx context.Context, code, userID string) (*model.Session, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	s.logger.Debugw("VerifyOTP called", "user_id", userID)

	if code == "" {
		return nil, model.ErrMissingFields
	}

	otp, err := s.repo.FindOTP(ctx, code, userID)
	if err != nil {
		return nil, err
	}

	if otp.Expired(s.now()) {
		s.logger.Infow("VerifyOTP expired", "user_id", otp.UserID)
		return nil, model.ErrOTPExpired
	}

	if err := s.repo.DeleteOTP(ctx, otp.UserID); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, otp.UserID)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("VerifyOTP completed", "user_id", user.UserID)
	return s.resetToken(user, auth.PurposeReset)
}

// ResetPassword sets a new password for the user.
func (s *service) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	s.logger.Debugw("ResetPassword called", "user_id", req.UserID)

	if req.UserID == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return model.ErrMissingFields
	}
	if req.NewPassword != req.ConfirmPassword {
		return model.ErrPasswordsDoNotMatch
	}

	return s.setPassword(ctx, req.UserID, req.NewPassword)
}

// ChangePassword checks the current password before replacing it.
func (s *service) ChangePassword(ctx context.Context, userID string, req *model.ChangePasswordRequest) error {
	s.logger.Debugw("ChangePassword called", "user_id", userID)

	if userID == "" || req.CurrentPassword == "" || req.NewPassword == "" {
		return model.ErrMissingFields
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.ComparePassword(user.PasswordHash, req.CurrentPassword) {
		return model.ErrIncorrectPassword
	}

	return s.setPassword(ctx, userID, req.NewPassword)
}

func (s *service) setPassword(ctx context.Context, userID, password string) error {
	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.logger.Infow("password changed", "user_id", userID)
	return nil
}

// UserNameAvailable reports whether the username is free.
func (s *service) UserNameAvailable(ctx context.Context, userName string) (bool, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return false, model.ErrMissingFields
	}

	taken, err := s.repo.UserNameExists(ctx, userName)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// ValidateToken verifies the token and its user.
func (s *service) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, model.ErrMissingFields
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if !claims.Allows() {
		return nil, auth.ErrInvalidToken
	}

	if _, err := s.repo.GetByID(ctx, claims.UserID); err != nil {
		return nil, err
	}
	return claims, nil
}

// GetProfile returns the profile of a user.
func (s *service) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	s.logger.Debugw("GetProfile called", "user_id", userID)
	return s.repo.GetProfile(ctx, userID)
}

// UpdateProfile stores the new picture first, then writes the profile row.
// The new file is removed when the write fails and the old one when it succeeds.
func (s *service) UpdateProfile(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.ProfileUpdate, error) {
	userName := strings.TrimSpace(req.UserName)
	s.logger.Debugw("UpdateProfile called", "user_id", userID, "user_name", userName, "picture", req.Picture != nil)

	if userID == "" || (userName == "" && req.Picture == nil) {
		return nil, model.ErrMissingFields
	}

	current, err := s.repo.GetProfile(ctx, userID)
	creating := errors.Is(err, model.ErrProfileNotFound)
	if err != nil && !creating {
		return nil, err
	}

	if creating {
		if userName == "" {
			return nil, model.ErrMissingFields
		}
		if _, err := s.repo.GetByID(ctx, userID); err != nil {
			return nil, err
		}
	}

	var picture string
	if req.Picture != nil {
		picture, err = s.files.Save(ctx, req.Picture.Filename, req.Picture.Content)
		if err != nil {
			if errors.Is(err, storage.ErrNotImage) || errors.Is(err, storage.ErrTooLarge) {
				return nil, fmt.Errorf("%w: %w", model.ErrInvalidFile, err)
			}
			return nil, err
		}
	}

	var profile *model.Profile
	if creating {
		profile = &model.Profile{UserID: userID, UserName: userName}
		if picture != "" {
			profile.UserProfilePicture = &picture
		}
		err = s.repo.CreateProfile(ctx, profile)
	} else {
		updates := map[string]any{}
		if userName != "" {
			updates["user_name"] = userName
		}
		if picture != "" {
			updates["user_profile_picture"] = picture
		}
		profile, err = s.repo.UpdateProfile(ctx, userID, updates)
	}

	if err != nil {
		if picture != "" {
			s.removeFile(picture)
		}
		return nil, err
	}

	if picture != "" && current != nil && current.UserProfilePicture != nil && *current.UserProfilePicture != "" {
		s.removeFile(*current.UserProfilePicture)
	}

	s.logger.Infow("UpdateProfile completed", "user_id", userID, "created", creating)
	return &model.ProfileUpdate{Profile: profile, Created: creating}, nil
}

func (s *service) removeFile(name string) {
	if err := s.files.Remove(name); err != nil {
		s.logger.Warnw("failed to remove picture", "file", name, "error", err)
	}
}

// PurgeExpiredOTPs deletes stale one-time passwords.
func (s *service) PurgeExpiredOTPs(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredOTPs(ctx, s.now().UTC())
}
