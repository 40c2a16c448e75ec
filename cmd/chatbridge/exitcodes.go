package main

import "fmt"

// Exit codes for the chatbridge CLI.
const (
	ExitOK            = 0 // Reply received.
	ExitInvalidArgs   = 1 // Invalid arguments, config, or missing credential.
	ExitAPIError      = 2 // The endpoint answered with an error document.
	ExitBridgeFailure = 3 // Construction, transport, or decode failure.
)

type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int { return e.code }

// exitError creates an exitCodeError. If msg is empty, the error message is
// set to a generic description of the exit code.
func exitError(code int, format string, args ...any) *exitCodeError {
	msg := fmt.Sprintf(format, args...)
	if msg == "" {
		switch code {
		case ExitAPIError:
			msg = "chatbridge: endpoint returned an error"
		case ExitBridgeFailure:
			msg = "chatbridge: request failed"
		default:
			msg = "chatbridge: error"
		}
	}
	return &exitCodeError{code: code, msg: msg}
}

// silentExit carries an exit code without printing anything.
func silentExit(code int) *exitCodeError {
	return &exitCodeError{code: code}
}
