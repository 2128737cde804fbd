// Package serrors provides structured errors carrying a stable machine code
// alongside the human-readable message.
package serrors

import "fmt"

type BaseError struct {
	Code         string
	Message      string
	LocaleKey    string
	TemplateData map[string]string
	cause        error
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
}

func (e *BaseError) Unwrap() error { return e.cause }

// WithTemplateData attaches key/value pairs for message templating and
// returns a copy so shared sentinel errors stay immutable.
func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	out := *e
	out.TemplateData = data
	return &out
}

// WithCause returns a copy wrapping the given cause.
func (e *BaseError) WithCause(cause error) *BaseError {
	out := *e
	out.cause = cause
	return &out
}

// Is matches errors by code so wrapped copies compare equal to their
// sentinel.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}
