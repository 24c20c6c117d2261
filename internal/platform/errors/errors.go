package apperrors

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrInvalidGoal  = errors.New("goal duration is zero")
	ErrNotAttached  = errors.New("timer is not attached")
)
