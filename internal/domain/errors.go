package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProtocol      = errors.New("protocol error")
	ErrCommunication = errors.New("communication error")

	ErrEmptyCommandID = errors.New("command identifier cannot be empty")
	ErrUnknownCommand = errors.New("unknown command")
	ErrWrongArity     = errors.New("wrong number of arguments")
	ErrNoConnection   = errors.New("no connection available")

	ErrCrossSlot                 = errors.New("keys in request don't hash to the same slot")
	ErrTooManyRedirections       = errors.New("too many cluster redirections")
	ErrNotSupportedInReplication = errors.New("command not supported in replication mode")
	ErrRoleMismatch              = errors.New("role mismatch")

	ErrWatchAfterMulti     = errors.New("sending WATCH after MULTI is not allowed")
	ErrNestedTransaction   = errors.New("cannot invoke execute or exec inside an active transaction context")
	ErrBlockAfterFluent    = errors.New("cannot execute a transaction block after using the fluent interface")
	ErrTransactionAborted  = errors.New("transaction aborted")
	ErrTransactionNotReady = errors.New("transaction is not initialized")
)

type (
	ServerError struct {
		Type    string
		Message string
	}

	ProtocolError struct {
		Reason string
	}

	CommunicationError struct {
		Endpoint string
		Err      error
	}

	RoleError struct {
		Endpoint string
		Expected string
		Actual   string
	}
)

// NewServerError keeps the full message and derives the type tag from the
// token before the first space.
func NewServerError(message string) *ServerError {
	errorType, _, _ := strings.Cut(message, " ")
	return &ServerError{Type: errorType, Message: message}
}

func (err *ServerError) Error() string {
	return err.Message
}

// Detail is the message without its type tag.
func (err *ServerError) Detail() string {
	_, detail, found := strings.Cut(err.Message, " ")
	if !found {
		return ""
	}

	return detail
}

func NewProtocolError(format string, args ...any) *ProtocolError {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...)}
}

func (err *ProtocolError) Error() string {
	return ErrProtocol.Error() + ": " + err.Reason
}

func (err *ProtocolError) Unwrap() error {
	return ErrProtocol
}

func NewCommunicationError(endpoint string, err error) *CommunicationError {
	return &CommunicationError{Endpoint: endpoint, Err: err}
}

func (err *CommunicationError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", ErrCommunication, err.Endpoint, err.Err)
}

func (err *CommunicationError) Unwrap() []error {
	return []error{ErrCommunication, err.Err}
}

func (err *RoleError) Error() string {
	return fmt.Sprintf("%s [%s]: expected %s, got %s", ErrRoleMismatch, err.Endpoint, err.Expected, err.Actual)
}

func (err *RoleError) Unwrap() error {
	return ErrRoleMismatch
}

func IsProtocolError(err error) bool {
	return errors.Is(err, ErrProtocol)
}

func IsCommunicationError(err error) bool {
	return errors.Is(err, ErrCommunication)
}

func IsServerError(err error) bool {
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}

// IsFatal reports errors that leave a connection unusable.
func IsFatal(err error) bool {
	return IsProtocolError(err) || IsCommunicationError(err)
}
