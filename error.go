package miniapp

import (
	"fmt"
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ErrSuccess Err = iota
	ErrNotFound
	ErrBadParameter
	ErrInternalServerError

	// Attachment validation
	ErrInvalidType
	ErrTooLarge

	// Generation failure taxonomy, as reported by the companion API
	ErrInsufficientBalance
	ErrBlocked
	ErrEmptyPrompt
	ErrImageRequired
	ErrGenerationTimeout
	ErrInvalidCredentials
	ErrNoImage
	ErrGenerationFailed
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Errors
type Err int

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (e Err) Error() string {
	switch e {
	case ErrSuccess:
		return "success"
	case ErrNotFound:
		return "not found"
	case ErrBadParameter:
		return "bad parameter"
	case ErrInternalServerError:
		return "internal server error"
	case ErrInvalidType:
		return "invalid_type"
	case ErrTooLarge:
		return "too_large"
	case ErrInsufficientBalance:
		return "insufficient_balance"
	case ErrBlocked:
		return "blocked"
	case ErrEmptyPrompt:
		return "empty_prompt"
	case ErrImageRequired:
		return "image_required"
	case ErrGenerationTimeout:
		return "generation_timeout"
	case ErrInvalidCredentials:
		return "invalid_api_key"
	case ErrNoImage:
		return "no image data received"
	case ErrGenerationFailed:
		return "generation failed"
	}
	return fmt.Sprintf("error code %d", int(e))
}

func (e Err) With(args ...interface{}) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprint(args...))
}

func (e Err) Withf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC FUNCTIONS

// Classify maps a diagnostic string from the companion API onto the closed
// generation failure taxonomy. The server reports failures as short codes
// inside the error body, so matching is by substring. Unrecognised text
// maps to ErrGenerationFailed.
func Classify(diagnostic string) Err {
	diagnostic = strings.ToLower(diagnostic)
	switch {
	case contains(diagnostic, "payment_required", "payment required", "insufficient_balance"):
		return ErrInsufficientBalance
	case contains(diagnostic, "blocked"):
		return ErrBlocked
	case contains(diagnostic, "empty_prompt"):
		return ErrEmptyPrompt
	case contains(diagnostic, "image_required"):
		return ErrImageRequired
	case contains(diagnostic, "generation_timeout"):
		return ErrGenerationTimeout
	case contains(diagnostic, "invalid_api_key"):
		return ErrInvalidCredentials
	}
	return ErrGenerationFailed
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func contains(s string, substrings ...string) bool {
	for _, substr := range substrings {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
