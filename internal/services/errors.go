package services

import "errors"

// Business-level sentinel errors. Handlers map these to HTTP statuses with
// errors.Is: validation problems to 400/422, ErrInvalidToken and
// ErrInvalidCredentials to 401, forbidden kinds to 403, not-found kinds to
// 404 and ErrUsernameTaken to 409. Anything else is a 500.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrPasswordTooLong    = errors.New("password must not exceed 72 bytes")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrCardNotFound       = errors.New("card not found")
	ErrCardNotEligible    = errors.New("card is not available for study")
	ErrAdminsDoNotStudy   = errors.New("admin accounts cannot study cards")
	ErrNotYetCompleted    = errors.New("card has not been completed yet")
	ErrProgressNotFound   = errors.New("progress not found")
	ErrForbidden          = errors.New("access to this resource is forbidden")
	ErrSelfAction         = errors.New("this action cannot target your own account")
	ErrInvalidAggregate   = errors.New("progress counters out of range")
)
