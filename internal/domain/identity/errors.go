package identity

import "errors"

var (
	ErrIdentityNotFound = errors.New("user identity not found")
)
