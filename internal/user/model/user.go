// Package model defines accounts, profiles and one-time passwords.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account with login credentials.
type User struct {
	UserID       string    `gorm:"primaryKey;column:user_id;type:varchar(36)"                         json:"userId"`
	Email        string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex:idx_users_email" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null"                    json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"                                         json:"-"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"                                         json:"-"`
	Profile      *Profile  `gorm:"foreignKey:UserID;references:UserID"                                json:"profile,omitempty"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID when none is set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = uuid.NewString()
	}
	return nil
}

// Profile is the public face of a user: the unique username and picture.
type Profile struct {
	UserID             string    `gorm:"primaryKey;column:user_id;type:varchar(36)"                                  json:"userId"`
	UserName           string    `gorm:"column:user_name;type:varchar(255);not null;uniqueIndex:idx_profiles_user_name" json:"userName"`
	UserProfilePicture *string   `gorm:"column:user_profile_picture;type:varchar(512)"                               json:"userProfilePicture"`
	CreatedAt          time.Time `gorm:"column:created_at;not null"                                                  json:"-"`
	UpdatedAt          time.Time `gorm:"column:updated_at;not null"                                                  json:"-"`
}

// TableName specifies the table name for GORM.
func (Profile) TableName() string {
	return "profiles"
}

// OneTimePassword is the pending password-reset code of a user. One per user.
type OneTimePassword struct {
	UserID    string    `gorm:"primaryKey;column:user_id;type:varchar(36)"`
	OTP       string    `gorm:"column:otp;type:varchar(16);not null"`
	Expiry    time.Time `gorm:"column:expiry;not null;index:idx_one_time_passwords_expiry"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name for GORM.
func (OneTimePassword) TableName() string {
	return "one_time_passwords"
}

// Expired reports whether the code is no longer valid at now.
func (o OneTimePassword) Expired(now time.Time) bool {
	return !now.Before(o.Expiry)
}
