package errors

import "testing"

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      bool
	}{
		{ErrorTypeNetwork, true},
		{ErrorTypeRateLimit, true},
		{ErrorTypeServerError, true},
		{ErrorTypeNotFound, false},
		{ErrorTypeParsing, false},
		{ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		if got := IsRetryable(tt.errorType); got != tt.want {
			t.Errorf("IsRetryable(%s) = %v, want %v", tt.errorType, got, tt.want)
		}
	}
}

func TestIsRetryableStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{0, true},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{504, true},
		{401, false},
		{403, false},
		{404, false},
		{200, false},
	}

	for _, tt := range tests {
		if got := IsRetryableStatusCode(tt.code); got != tt.want {
			t.Errorf("IsRetryableStatusCode(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestTypeForStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want ErrorType
	}{
		{0, ErrorTypeNetwork},
		{429, ErrorTypeRateLimit},
		{404, ErrorTypeNotFound},
		{500, ErrorTypeServerError},
		{503, ErrorTypeServerError},
		{400, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		if got := TypeForStatusCode(tt.code); got != tt.want {
			t.Errorf("TypeForStatusCode(%d) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestErrorFormatting(t *testing.T) {
	err := &Error{Type: ErrorTypeRateLimit, Message: "rate limit exceeded", Code: 429}
	want := "rate_limit error (code 429): rate limit exceeded"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
