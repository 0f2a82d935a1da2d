// Package repository provides data access layer for user module.
package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hacktopia/platform/internal/database/database"
	"github.com/hacktopia/platform/internal/user/model"
)

// Repository defines the interface for account, profile and OTP data access.
type Repository interface {
	// GetByID finds user by user_id, with profile.
	GetByID(ctx context.Context, userID string) (*model.User, error)

	// GetByEmail finds user by email, with profile.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByUserName finds the user owning the profile with the given username.
	GetByUserName(ctx context.Context, userName string) (*model.User, error)

	// Create inserts a user. Returns ErrEmailExists on a taken email.
	Create(ctx context.Context, user *model.User) error

	// UpdatePassword replaces the password hash of a user.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// GetProfile returns the profile of a user.
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)

	// UserNameExists reports whether any profile uses the username.
	UserNameExists(ctx context.Context, userName string) (bool, error)

	// CreateProfile inserts a profile. Returns ErrUsernameExists on a taken username.
	CreateProfile(ctx context.Context, profile *model.Profile) error

	// UpdateProfile applies column updates to a profile and returns the result.
	UpdateProfile(ctx context.Context, userID string, updates map[string]any) (*model.Profile, error)

	// UpsertOTP stores the pending code of a user, replacing any previous one.
	UpsertOTP(ctx context.Context, otp *model.OneTimePassword) error

	// FindOTP finds a pending code. userID narrows the lookup when non-empty.
	FindOTP(ctx context.Context, otp, userID string) (*model.OneTimePassword, error)

	// DeleteOTP removes the pending code of a user.
	DeleteOTP(ctx context.Context, userID string) error

	// DeleteExpiredOTPs removes codes whose expiry is not after now.
	DeleteExpiredOTPs(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new user repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

func (r *repository) findUser(ctx context.Context, op, query string, arg string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where(query, arg).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Debugw(op+" user not found", "key", arg)
			return nil, model.ErrUserNotFound
		}
		r.logger.Errorw(op+" database error", "key", arg, "error", err)
		return nil, err
	}

	return &user, nil
}

// GetByID finds user by user_id.
func (r *repository) GetByID(ctx context.Context, userID string) (*model.User, error) {
	r.logger.Debugw("GetByID called", "user_id", userID)
	return r.findUser(ctx, "GetByID", "user_id = ?", userID)
}

// GetByEmail finds user by email.
func (r *repository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.logger.Debugw("GetByEmail called", "email", email)
	return r.findUser(ctx, "GetByEmail", "email = ?", email)
}

// GetByUserName resolves the username through profiles.
func (r *repository) GetByUserName(ctx context.Context, userName string) (*model.User, error) {
	r.logger.Debugw("GetByUserName called", "user_name", userName)
	return r.findUser(ctx, "GetByUserName",
		"user_id = (SELECT user_id FROM profiles WHERE user_name = ?)", userName)
}

// Create inserts a user.
func (r *repository) Create(ctx context.Context, user *model.User) error {
	r.logger.Debugw("Create called", "email", user.Email)

	if err := r.db.WithContext(ctx).Omit("Profile").Create(user).Error; err != nil {
		if database.IsDuplicateError(err) {
			r.logger.Debugw("Create email already exists", "email", user.Email)
			return model.ErrEmailExists
		}
		r.logger.Errorw("Create database error", "email", user.Email, "error", err)
		return err
	}

	r.logger.Infow("user created", "user_id", user.UserID)
	return nil
}

// UpdatePassword replaces the password hash.
func (r *repository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	r.logger.Infow("UpdatePassword called", "user_id", userID)

	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("password_hash", passwordHash)

	if result.Error != nil {
		r.logger.Errorw("UpdatePassword database error", "user_id", userID, "error", result.Error)
		return result.Error
	}

	if result.RowsAffected == 0 {
		r.logger.Debugw("UpdatePassword user not found", "user_id", userID)
		return model.ErrUserNotFound
	}

	return nil
}

// GetProfile returns the profile of a user.
func (r *repository) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	r.logger.Debugw("GetProfile called", "user_id", userID)

	var profile model.Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrProfileNotFound
		}
		r.logger.Errorw("GetProfile database error", "user_id", userID, "error", err)
		return nil, err
	}

	return &profile, nil
}

// UserNameExists reports whether the username is taken.
func (r *repository) UserNameExists(ctx context.Context, userName string) (bool, error) {
	r.logger.Debugw("UserNameExists called", "user_name", userName)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("user_name = ?", userName).
		Count(&count).Error

	if err != nil {
		r.logger.Errorw("UserNameExists database error", "user_name", userName, "error", err)
		return false, err
	}

	return count > 0, nil
}

// CreateProfile inserts a profile.
func (r *repository) CreateProfile(ctx context.Context, profile *model.Profile) error {
	r.logger.Debugw("CreateProfile called", "user_id", profile.UserID, "user_name", profile.UserName)

	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if database.IsDuplicateError(err) {
			r.logger.Debugw("CreateProfile username already exists", "user_name", profile.UserName)
			return model.ErrUsernameExists
		}
		r.logger.Errorw("CreateProfile database error", "user_id", profile.UserID, "error", err)
		return err
	}

	return nil
}

// UpdateProfile applies column updates and re-reads the profile.
func (r *repository) UpdateProfile(ctx context.Context, userID string, updates map[string]any) (*model.Profile, error) {
	r.logger.Infow("UpdateProfile called", "user_id", userID, "fields", len(updates))

	result := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("user_id = ?", userID).
		Updates(updates)

	if result.Error != nil {
		if database.IsDuplicateError(result.Error) {
			r.logger.Debugw("UpdateProfile username already exists", "user_id", userID)
			return nil, model.ErrUsernameExists
		}
		r.logger.Errorw("UpdateProfile database error", "user_id", userID, "error", result.Error)
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, model.ErrProfileNotFound
	}

	return r.GetProfile(ctx, userID)
}

// UpsertOTP stores the code, overwriting a previous one for the same user.
func (r *repository) UpsertOTP(ctx context.Context, otp *model.OneTimePassword) error {
	r.logger.Debugw("UpsertOTP called", "user_id", otp.UserID, "expiry", otp.Expiry)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"otp", "expiry", "updated_at"}),
		}).
		Create(otp).Error

	if err != nil {
		r.logger.Errorw("UpsertOTP database error", "user_id", otp.UserID, "error", err)
		return err
	}

	return nil
}

// FindOTP finds a pending code. Without userID a code held by two users
// is ambiguous.
func (r *repository) FindOTP(ctx context.Context, otp, userID string) (*model.OneTimePassword, error) {
	r.logger.Debugw("FindOTP called", "user_id", userID)

	query := r.db.WithContext(ctx).Where("otp = ?", otp)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var found []model.OneTimePassword
	if err := query.Limit(2).Find(&found).Error; err != nil {
		r.logger.Errorw("FindOTP database error", "user_id", userID, "error", err)
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, model.ErrInvalidOTP
	case 1:
		return &found[0], nil
	default:
		r.logger.Warnw("FindOTP code held by several users")
		return nil, model.ErrOTPAmbiguous
	}
}

// DeleteOTP removes the pending code of a user.
func (r *repository) DeleteOTP(ctx context.Context, userID string) error {
	r.logger.Debugw("DeleteOTP called", "user_id", userID)

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.OneTimePassword{}).Error

	if err != nil {
		r.logger.Errorw("DeleteOTP database error", "user_id", userID, "error", err)
		return err
	}

	return nil
}

// DeleteExpiredOTPs removes stale codes.
func (r *repository) DeleteExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expiry <= ?", now).
		Delete(&model.OneTimePassword{})

	if result.Error != nil {
		r.logger.Errorw("DeleteExpiredOTPs database error", "error", result.Error)
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		r.logger.Infow("expired OTPs deleted", "count", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
