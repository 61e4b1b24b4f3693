package chat

import "errors"

var (
	// ErrInvalidArgument marks a missing or empty required field.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound marks a missing user or conversation, or a sender outside the conversation.
	ErrNotFound = errors.New("not found")
	// ErrInternal wraps persistence and unexpected failures.
	ErrInternal = errors.New("internal error")
)
