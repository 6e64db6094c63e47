package domain

import "errors"

var (
	ErrEmptyEntry        = errors.New("empty_entry")
	ErrUnbalancedEntry   = errors.New("unbalanced_entry")
	ErrInvalidLineAmount = errors.New("invalid_line_amount")
)
