package campus

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the campus services.
var (
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrEventClosed             = errors.New("event closed for betting")
	ErrAlreadyVoted            = errors.New("already voted in this election")
	ErrElectionNotActive       = errors.New("election not active")
	ErrEmailTaken              = errors.New("email already registered")
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
	ErrUnknownUser             = errors.New("unknown user")
	ErrUnknownEvent            = errors.New("unknown event")
	ErrUnknownElection         = errors.New("unknown election")
	ErrUnknownCandidate        = errors.New("unknown candidate")
	ErrInvalidUserID           = errors.New("invalid user id")
	ErrInvalidEventID          = errors.New("invalid event id")
	ErrInvalidBetID            = errors.New("invalid bet id")
	ErrInvalidElectionID       = errors.New("invalid election id")
	ErrInvalidCandidateID      = errors.New("invalid candidate id")
	ErrInvalidVoteID           = errors.New("invalid vote id")
	ErrInvalidIdempotencyKey   = errors.New("invalid idempotency key")
	ErrInvalidMetadataJSON     = errors.New("invalid metadata json")
	ErrInvalidEmail            = errors.New("invalid email")
	ErrInvalidName             = errors.New("invalid name")
	ErrInvalidStake            = errors.New("invalid stake")
	ErrInvalidSelection        = errors.New("invalid selection")
	ErrInvalidOdds             = errors.New("invalid odds")
	ErrInvalidRole             = errors.New("invalid role")
	ErrInvalidEventStatus      = errors.New("invalid event status")
	ErrInvalidBetStatus        = errors.New("invalid bet status")
	ErrInvalidElectionStatus   = errors.New("invalid election status")
	ErrInvalidServiceConfig    = errors.New("invalid service config")
)

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
