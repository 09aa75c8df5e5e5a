package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Fields: map[string]string{
		"name":  "must be a PHP identifier",
		"layer": "unknown layer",
	}}

	if !errors.Is(err, ErrValidation) {
		t.Error("errors.Is(err, ErrValidation) = false, want true")
	}

	want := "validation error: layer: unknown layer; name: must be a PHP identifier"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	var verr *ValidationError
	if !errors.As(fmt.Errorf("make: %w", err), &verr) {
		t.Fatal("errors.As through wrap = false, want true")
	}
	if verr.Fields["layer"] != "unknown layer" {
		t.Errorf("Fields[layer] = %q", verr.Fields["layer"])
	}
}

func TestDomainFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantMsg string
		wantIs  []error
	}{
		{
			name:    "wrapped cause",
			err:     WrapDomainFailure("write src/Entities/Order.php", ErrConflict),
			wantMsg: "write src/Entities/Order.php: conflict",
			wantIs:  []error{ErrDomainFailure, ErrConflict},
		},
		{
			name:    "message only",
			err:     NewDomainFailure("layer has no path"),
			wantMsg: "layer has no path",
			wantIs:  []error{ErrDomainFailure},
		},
		{
			name:    "cause only",
			err:     WrapDomainFailure("", ErrNotFound),
			wantMsg: "not found",
			wantIs:  []error{ErrDomainFailure, ErrNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			for _, target := range tt.wantIs {
				if !errors.Is(tt.err, target) {
					t.Errorf("errors.Is(err, %v) = false, want true", target)
				}
			}
			if !IsDomainFailure(fmt.Errorf("outer: %w", tt.err)) {
				t.Error("IsDomainFailure through wrap = false, want true")
			}
		})
	}
}

func TestWrapDomainFailure_Nil(t *testing.T) {
	t.Parallel()

	if err := WrapDomainFailure("noop", nil); err != nil {
		t.Errorf("WrapDomainFailure(nil) = %v, want nil", err)
	}
}

func TestIsDomainFailure_PlainError(t *testing.T) {
	t.Parallel()

	if IsDomainFailure(ErrConflict) {
		t.Error("IsDomainFailure(ErrConflict) = true, want false")
	}
	if IsDomainFailure(nil) {
		t.Error("IsDomainFailure(nil) = true, want false")
	}
}
