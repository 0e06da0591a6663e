// Package common defines sentinel errors and small helpers shared by the
// storage, account and client layers of Dream Catcher. Callers should use
// errors.Is to match the error values.
package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// storage errors
	ErrStorageWrite        = errors.New("storage write failed")
	ErrInvalidBackupFormat = errors.New("invalid backup format: expected a JSON object")

	// authentication errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongProvider      = errors.New("this account uses Google sign-in, please continue with Google")
	ErrProviderConflict   = errors.New("an account with this email already exists with a different sign-in method")
	ErrCancelled          = errors.New("sign-in cancelled")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrNotAuthenticated   = errors.New("not signed in")

	// account errors
	ErrEmailTaken      = errors.New("an account with this email already exists")
	ErrUsernameTaken   = errors.New("this username is already taken")
	ErrInvalidProfile  = errors.New("email, username and password are required")
	ErrNotGuest        = errors.New("only a guest session can be upgraded")
	ErrInvalidAmount   = errors.New("amount must not be negative")
	ErrInvalidPassword = errors.New("password must not be empty")
)
