package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"not found", ErrCodeNotFound, http.StatusNotFound},
		{"validation", ErrCodeValidation, http.StatusBadRequest},
		{"invalid input", ErrCodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", ErrCodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrCodeForbidden, http.StatusForbidden},
		{"already exists", ErrCodeAlreadyExists, http.StatusConflict},
		{"concurrency conflict", ErrCodeConcurrencyConflict, http.StatusConflict},
		{"lock not acquired", ErrCodeLockNotAcquired, http.StatusConflict},
		{"already processed", ErrCodeAlreadyProcessed, http.StatusConflict},
		{"already initiated", ErrCodeAlreadyInitiated, http.StatusConflict},
		{"invalid state", ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{"expense finalized", ErrCodeExpenseFinalized, http.StatusUnprocessableEntity},
		{"invalid rule config", ErrCodeInvalidRuleConfig, http.StatusUnprocessableEntity},
		{"internal", ErrCodeInternal, http.StatusInternalServerError},
		{"unknown code falls back to 500", "ERR_SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"domain not found", "NOT_FOUND", ErrCodeNotFound},
		{"domain already exists", "ALREADY_EXISTS", ErrCodeAlreadyExists},
		{"domain already processed", "ALREADY_PROCESSED", ErrCodeAlreadyProcessed},
		{"domain expense finalized", "EXPENSE_FINALIZED", ErrCodeExpenseFinalized},
		{"domain rule config", "INVALID_RULE_CONFIG", ErrCodeInvalidRuleConfig},
		{"lock not acquired", "LOCK_NOT_ACQUIRED", ErrCodeLockNotAcquired},
		{"field validation amount", "INVALID_AMOUNT", ErrCodeInvalidInput},
		{"field validation currency", "INVALID_CURRENCY", ErrCodeInvalidInput},
		{"field validation approver", "INVALID_APPROVER", ErrCodeInvalidInput},
		{"already normalized", ErrCodeNotFound, ErrCodeNotFound},
		{"unknown passes through", "SOMETHING_ELSE", "SOMETHING_ELSE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeErrorCode(tt.code))
		})
	}
}

func TestNormalizeErrorCode_MappedCodesHaveStatus(t *testing.T) {
	// Every code the mapping can produce must resolve to a real status
	for domainCode, normalized := range domainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[normalized]
		assert.True(t, ok, "normalized code %s for %s has no HTTP status", normalized, domainCode)
	}
}
