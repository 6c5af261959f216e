package ports_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dejobratic/orderwatch/internal/orders/ports"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"permission denied", fmt.Errorf("%w: %w", ports.ErrPermissionDenied, cause), "permission-denied"},
		{"not found", fmt.Errorf("update status: %w", ports.ErrNotFound), "not-found"},
		{"subscription", fmt.Errorf("%w: %w", ports.ErrSubscription, cause), "subscription-error"},
		{"setup", fmt.Errorf("%w: %w", ports.ErrSetup, cause), "setup-error"},
		{"transport", fmt.Errorf("%w: %w", ports.ErrTransport, cause), "transport-error"},
		{"unclassified", cause, ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ports.KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}
