package main

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks. Every typed error below unwraps to one of these.
var (
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrMalformedInstruction = errors.New("malformed instruction")
	ErrNoInverse            = errors.New("no modular inverse")
	ErrInvalidSymbol        = errors.New("invalid symbol")
	ErrMessageTooLong       = errors.New("message too long")
)

// IndexOutOfRangeError reports an index that is not valid for the message
// length at the moment the operation runs
type IndexOutOfRangeError struct {
	Op     string
	Index  int
	Length int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: index %d out of range for message of length %d", e.Op, e.Index, e.Length)
}

func (e *IndexOutOfRangeError) Unwrap() error { return ErrIndexOutOfRange }

// MalformedInstructionError reports an instruction that could not be parsed.
// Position is the 1-based position of the instruction in the operations string.
type MalformedInstructionError struct {
	Position int
	Text     string
	Reason   string
}

func (e *MalformedInstructionError) Error() string {
	return fmt.Sprintf("malformed instruction %d %q: %s", e.Position, e.Text, e.Reason)
}

func (e *MalformedInstructionError) Unwrap() error { return ErrMalformedInstruction }

// NoInverseError reports an affine key with no multiplicative inverse mod 26
type NoInverseError struct {
	A int
}

func (e *NoInverseError) Error() string {
	return fmt.Sprintf("affine key a=%d has no inverse modulo %d", e.A, alphabetSize)
}

func (e *NoInverseError) Unwrap() error { return ErrNoInverse }

// InvalidSymbolError reports a message byte outside A-Z
type InvalidSymbolError struct {
	Index  int
	Symbol byte
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol %q at index %d: messages may only contain A-Z", e.Symbol, e.Index)
}

func (e *InvalidSymbolError) Unwrap() error { return ErrInvalidSymbol }

// MessageTooLongError reports an operation that would grow the message past maxMessageLength
type MessageTooLongError struct {
	Op     string
	Length int
	Count  int
}

func (e *MessageTooLongError) Error() string {
	return fmt.Sprintf("%s: adding %d symbols to a message of length %d exceeds the limit of %d",
		e.Op, e.Count, e.Length, maxMessageLength)
}

func (e *MessageTooLongError) Unwrap() error { return ErrMessageTooLong }

// errorKind maps an engine error to the short kind string used in command responses
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrIndexOutOfRange):
		return "index_out_of_range"
	case errors.Is(err, ErrMalformedInstruction):
		return "malformed_instruction"
	case errors.Is(err, ErrNoInverse):
		return "no_inverse"
	case errors.Is(err, ErrInvalidSymbol):
		return "invalid_symbol"
	case errors.Is(err, ErrMessageTooLong):
		return "message_too_long"
	default:
		return ""
	}
}
