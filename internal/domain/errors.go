package domain

import (
	"errors"
	"fmt"
)

// GenericErrorMessage is shown when a failure carries no usable server
// message.
const GenericErrorMessage = "Something went wrong. Please try again."

// ValidationError is a server-reported failure: the service answered with
// success:false and a message meant for the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// TransportError is a network-level fault: the request never produced a
// usable server response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AuthError is a 401-class failure: no valid stored session.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("not authenticated: %s", e.Message)
}

// UserMessage extracts the user-facing notification text from a classified
// error, falling back to a generic string when none is available.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message
	}
	var ae *AuthError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return GenericErrorMessage
}
