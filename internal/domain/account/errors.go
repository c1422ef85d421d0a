package account

import "errors"

// Account domain errors
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrEmailExists      = errors.New("email already registered")
	ErrAccountSuspended = errors.New("account is suspended")
	ErrAccountInactive  = errors.New("account is not active")
)
