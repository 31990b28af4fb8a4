package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestIsTypeFollowsWrapping(t *testing.T) {
	base := Division("yield quantity")
	wrapped := Wrap(TypeInternal, "costing failed", base)
	foreign := fmt.Errorf("request: %w", wrapped)

	tests := []struct {
		name string
		err  error
		typ  Type
		want bool
	}{
		{"direct", base, TypeDivision, true},
		{"outer type", wrapped, TypeInternal, true},
		{"through cause", wrapped, TypeDivision, true},
		{"through fmt wrapping", foreign, TypeDivision, true},
		{"other type", wrapped, TypeUnit, false},
		{"plain error", stderrors.New("boom"), TypeInternal, false},
		{"nil", nil, TypeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsType(tt.err, tt.typ); got != tt.want {
				t.Errorf("IsType(%v, %s) = %v, want %v", tt.err, tt.typ, got, tt.want)
			}
		})
	}
}

func TestTypeOf(t *testing.T) {
	if got := TypeOf(Unit("stone")); got != TypeUnit {
		t.Errorf("expected UNIT_ERROR, got %s", got)
	}
	if got := TypeOf(fmt.Errorf("outer: %w", IncompatibleUnits("g", "each"))); got != TypeIncompatibleUnits {
		t.Errorf("expected INCOMPATIBLE_UNITS, got %s", got)
	}
	if got := TypeOf(stderrors.New("boom")); got != TypeInternal {
		t.Errorf("expected INTERNAL_ERROR for a plain error, got %s", got)
	}
}

func TestErrorMessageAndContext(t *testing.T) {
	err := IncompatibleUnits("cups", "g").WithContext("ingredient", "flour")

	if got := err.Error(); got != "[INCOMPATIBLE_UNITS] cannot convert cups to g" {
		t.Errorf("unexpected message %q", got)
	}
	if err.Context["from"] != "cups" || err.Context["to"] != "g" || err.Context["ingredient"] != "flour" {
		t.Errorf("unexpected context: %v", err.Context)
	}

	cause := stderrors.New("disk full")
	wrapped := Internal("failed to save", cause)
	if got := wrapped.Error(); got != "[INTERNAL_ERROR] failed to save: disk full" {
		t.Errorf("unexpected wrapped message %q", got)
	}
	if !stderrors.Is(wrapped, cause) {
		t.Error("expected Unwrap to expose the cause")
	}
}
