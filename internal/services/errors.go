package services

import (
	"errors"
	"strings"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrCoinNotFound         = errors.New("coin not found")
	ErrAmountOutOfRange     = errors.New("amount out of range")
	ErrConfirmationRequired = errors.New("low liquidity, confirmation required")
	ErrCreationDisabled     = errors.New("post creation is disabled: wallet connect project id is not configured")
	ErrUpstream             = errors.New("upstream request failed")
	ErrRegistryWrite        = errors.New("coin deployed but registry update failed")
)

// ConfirmationError carries the liquidity warnings a trade must be
// confirmed against. It matches ErrConfirmationRequired.
type ConfirmationError struct {
	Warnings []string
}

func (e *ConfirmationError) Error() string {
	return ErrConfirmationRequired.Error() + ": " + strings.Join(e.Warnings, "; ")
}

func (e *ConfirmationError) Is(target error) bool {
	return target == ErrConfirmationRequired
}
