package shared

import "errors"

// General-purpose errors shared by every component. Component specific errors live
// next to the component's domain types.
var (
	ErrIncorrectFormat   = errors.New("wrong format was entered, please use a valid format")
	ErrNullObjectEntered = errors.New("the entered object was null, please make sure the entered object has an instance")
	ErrIndexOutOfRange   = errors.New("the entered index was out of the range, please use a positive index")
	ErrObjectNotFound    = errors.New("item was not found in the current context or the search key was wrong")
	ErrOperationFailed   = errors.New("an error occurred while initiating the process")
)
