package ftp

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an FTP operation failed. It replaces the
// exception hierarchy of the original design with a flat sum type: a
// tagged error enum rather than a class tree per command.
type ErrorKind int

const (
	// KindNetwork covers socket I/O failures, short writes, and unexpected EOF.
	KindNetwork ErrorKind = iota
	// KindTimeout covers dial timeouts and reply-wait timeouts.
	KindTimeout
	// KindAuth covers a login rejected by the server (530 after PASS).
	KindAuth
	// KindProtocol covers an unexpected reply code or a malformed reply.
	KindProtocol
	// KindNotFound covers a missing remote file or directory (550).
	KindNotFound
	// KindExists covers a local destination that refuses to be overwritten.
	KindExists
	// KindArgument covers illegal input, such as an empty path.
	KindArgument
	// KindFeatureMissing covers a required server extension FEAT didn't advertise.
	KindFeatureMissing
)

// String returns a short, lowercase name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindAuth:
		return "auth"
	case KindProtocol:
		return "protocol"
	case KindNotFound:
		return "not_found"
	case KindExists:
		return "exists"
	case KindArgument:
		return "argument"
	case KindFeatureMissing:
		return "feature_missing"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by this package. It carries a
// Kind for programmatic branching, the command/response context that
// produced it (when applicable), and an optional wrapped cause.
type Error struct {
	Kind     ErrorKind
	Command  string
	Response string
	Code     int
	Cause    error
}

func (e *Error) Error() string {
	switch {
	case e.Command != "" && e.Response != "":
		return fmt.Sprintf("ftp: %s: %s failed: %s (code %d)", e.Kind, e.Command, e.Response, e.Code)
	case e.Cause != nil:
		return fmt.Sprintf("ftp: %s: %v", e.Kind, e.Cause)
	default:
		return fmt.Sprintf("ftp: %s", e.Kind)
	}
}

// Unwrap allows errors.Is/errors.As to see through to the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, &ftp.Error{Kind: ftp.KindNotFound}).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

func newError(kind ErrorKind, command, response string, code int) *Error {
	return &Error{Kind: kind, Command: command, Response: response, Code: code}
}

func wrapError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// kindForCode maps a failure reply code to an ErrorKind, per the
// failure-mapping column in the command catalog.
func kindForCode(code int) ErrorKind {
	switch code {
	case 530:
		return KindAuth
	case 550:
		return KindNotFound
	default:
		return KindProtocol
	}
}

// protocolErr builds the standard *Error for an unexpected reply to command,
// applying the code-to-kind mapping used throughout the command catalog.
func protocolErr(command string, reply *Reply) *Error {
	return newError(kindForCode(reply.Code), command, reply.Text, reply.Code)
}
