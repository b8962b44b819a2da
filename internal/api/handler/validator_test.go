package handler

import (
	"strings"
	"testing"
)

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name string
		req  any
		want string
	}{
		{"required uses json name", &createAppointmentRequest{Service: "Corte de Cabelo", Time: "10:00"}, "missing required field: date"},
		{"email", &registerRequest{Name: "Alice", Email: "not-an-email", Password: "pw1"}, "email must be a valid email"},
		{"max", &registerRequest{Name: strings.Repeat("a", 121), Email: "a@example.com", Password: "pw1"}, "name must be at most 120 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.req)
			if err == nil || err.Error() != tc.want {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
		})
	}

	if err := v.Validate(&updateStatusRequest{Status: "confirmed"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
