package types

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrCancelled", ErrCancelled},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotAuthenticated", ErrNotAuthenticated},
		{"ErrUnexpectedResponse", ErrUnexpectedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("expected error, got nil")
			}
			if tt.err.Error() == "" {
				t.Errorf("expected non-empty error message")
			}
		})
	}
}

func TestAPIError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "envelope message",
			err:  &APIError{StatusCode: 422, Message: "name is required"},
			want: "api error 422: name is required",
		},
		{
			name: "status text fallback",
			err:  &APIError{StatusCode: 429},
			want: "api error 429: Too Many Requests",
		},
		{
			name: "transport failure",
			err:  &APIError{Err: errors.New("connection refused")},
			want: "request failed: connection refused",
		},
		{
			name: "cancelled",
			err:  &APIError{Cancelled: true, Err: context.Canceled},
			want: "request cancelled: context canceled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusCodeAndHint(t *testing.T) {
	err := fmt.Errorf("list invoices: %w", &APIError{StatusCode: 429, RetryAfter: "2"})

	if got := StatusCode(err); got != 429 {
		t.Errorf("StatusCode() = %d, want 429", got)
	}

	hint, ok := RetryAfterHint(err)
	if !ok || hint != "2" {
		t.Errorf("RetryAfterHint() = %q, %v; want \"2\", true", hint, ok)
	}

	if got := StatusCode(errors.New("plain")); got != 0 {
		t.Errorf("StatusCode(plain) = %d, want 0", got)
	}
	if _, ok := RetryAfterHint(&APIError{StatusCode: 429}); ok {
		t.Error("expected no hint when header is empty")
	}
}

func TestIsCancelled(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrCancelled, true},
		{"context canceled", fmt.Errorf("do: %w", context.Canceled), true},
		{"deadline is not cancellation", context.DeadlineExceeded, false},
		{"api error flag", &APIError{StatusCode: 429, Cancelled: true}, true},
		{"rate limited", &APIError{StatusCode: 429}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCancelled(tt.err); got != tt.want {
				t.Errorf("IsCancelled() = %v, want %v", got, tt.want)
			}
		})
	}
}
