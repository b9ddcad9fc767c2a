package errno

import (
	"errors"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrNotConnected     = errors.New("not connected to a tool server")
	ErrAlreadyConnected = errors.New("already connected")
	ErrCleanedUp        = errors.New("manager already cleaned up")
)
