// Package businessflow contains the core business logic for result ingestion and presentation
package businessflow

import (
	"errors"
	"fmt"

	"github.com/kbtwatch/tracker/app/services"
	"github.com/kbtwatch/tracker/repository"
)

// Business flow error constants
var (
	// Store-related errors
	ErrStoreUnavailable = errors.New("result store unavailable")

	// Read view errors
	ErrInvalidLimit = errors.New("limit must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

func IsInvalidLimit(err error) bool {
	return errors.Is(err, ErrInvalidLimit)
}

func IsDuplicateResult(err error) bool {
	return repository.IsDuplicateResult(err)
}

// IsNetworkError reports whether err came from the transport layer of the
// upstream fetch
func IsNetworkError(err error) bool {
	var ne *services.NetworkError
	return errors.As(err, &ne)
}

// IsParseError reports whether err came from decoding the upstream response
func IsParseError(err error) bool {
	var pe *services.ParseError
	return errors.As(err, &pe)
}
