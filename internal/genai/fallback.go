package genai

import (
	"errors"
	"fmt"
)

// User-safe fallback replies, one per failure class. Raw backend errors never
// reach end users; a failed completion still produces assistant text.
const (
	FallbackNotConfigured = "I'm not fully configured yet! Please ask an administrator to add a valid Gemini API key to the service configuration."
	FallbackInvalidKey    = "My API key seems to be invalid. Please ask an administrator to check the GEMINI_API_KEY configuration."
	FallbackRateLimited   = "I'm receiving too many requests right now. Please try again in a moment."
	FallbackSafety        = "I cannot respond to that message as it may violate safety guidelines. Please rephrase your question."
	FallbackGeneric       = "I'm having trouble connecting to my brain right now. Please try again later. If this persists, please contact support."
)

// Fallback translates a backend failure into the assistant reply shown to the
// user. With verbose set, the generic case appends the underlying error for
// operator diagnosis; the specific cases never leak detail.
func Fallback(err error, verbose bool) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return FallbackNotConfigured
	case errors.Is(err, ErrInvalidCredential):
		return FallbackInvalidKey
	case errors.Is(err, ErrRateLimited):
		return FallbackRateLimited
	case errors.Is(err, ErrSafetyBlocked):
		return FallbackSafety
	default:
		if verbose && err != nil {
			return fmt.Sprintf("%s Error: %v.", FallbackGeneric, err)
		}
		return FallbackGeneric
	}
}
