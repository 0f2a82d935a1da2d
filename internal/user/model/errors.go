package model

import "errors"

var (
	// ErrMissingFields indicates that a required input was empty.
	ErrMissingFields = errors.New("all fields are required")
	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists indicates that an account already uses the email.
	ErrEmailExists = errors.New("email already exists")
	// ErrUsernameExists indicates that a profile already uses the username.
	ErrUsernameExists = errors.New("username already exists")
	// ErrIncorrectPassword indicates a password mismatch on login or change.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrPasswordsDoNotMatch indicates that the new password and its confirmation differ.
	ErrPasswordsDoNotMatch = errors.New("passwords do not match")
	// ErrInvalidOTP indicates that no pending code matches.
	ErrInvalidOTP = errors.New("invalid otp")
	// ErrOTPAmbiguous indicates a code matching several users when no user id was given.
	ErrOTPAmbiguous = errors.New("otp matches several users")
	// ErrOTPExpired indicates that the matching code is past its expiry.
	ErrOTPExpired = errors.New("otp expired")
	// ErrOTPNotSent indicates that the reset code could not be delivered.
	ErrOTPNotSent = errors.New("otp not sent")
	// ErrProfileNotFound indicates that the user has no profile yet.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrInvalidFile indicates an upload that is not an image or is too large.
	ErrInvalidFile = errors.New("invalid file")
)
