package repositories

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// DefaultListLimit caps list queries when the caller passes no limit.
const DefaultListLimit = 50
