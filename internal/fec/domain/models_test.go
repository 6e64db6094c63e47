package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateBalanced(t *testing.T) {
	ten := decimal.NewFromInt(10)
	assert.ErrorIs(t, ValidateBalanced(nil), ErrEmptyEntry)
	assert.NoError(t, ValidateBalanced([]Line{{Debit: ten}, {Credit: ten}}))
	assert.ErrorIs(t, ValidateBalanced([]Line{{Debit: ten}, {Credit: decimal.NewFromInt(9)}}), ErrUnbalancedEntry)
	assert.ErrorIs(t, ValidateBalanced([]Line{{Debit: ten, Credit: ten}}), ErrInvalidLineAmount)
}

func TestFileName(t *testing.T) {
	closing := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "123456789FEC20241231.txt", FileName("123456789", closing))
	assert.Equal(t, "000000000FEC20241231.txt", FileName("", closing))
}

func TestEntryNumber(t *testing.T) {
	assert.Equal(t, "000042", EntryNumber(42))
	assert.Equal(t, "1234567", EntryNumber(1234567))
}
