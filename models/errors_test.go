package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsValidationError(t *testing.T) {
	err := NewValidationError("quantity must be greater than zero")
	if !IsValidationError(err) {
		t.Fatalf("expected validation error")
	}
	if !IsValidationError(fmt.Errorf("rejected: %w", err)) {
		t.Fatalf("expected wrapped validation error to match")
	}
	if IsValidationError(errors.New("boom")) {
		t.Fatalf("plain error must not classify as validation")
	}
	if IsValidationError(ErrAlreadyMatched) {
		t.Fatalf("conflict sentinel must not classify as validation")
	}
}
