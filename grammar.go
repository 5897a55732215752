package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const instructionSeparator = ";"

// tokenType is the kind of a parameter token
type tokenType int

const (
	tokenEOF tokenType = iota
	tokenNumber
	tokenComma
	tokenInvalid
)

// paramToken is one token of an instruction's parameter text
type paramToken struct {
	Type tokenType
	Text string
}

// paramTokenizer splits parameter text like "-3,12" into numbers and commas
type paramTokenizer struct {
	text string
	pos  int
}

func newParamTokenizer(text string) *paramTokenizer {
	return &paramTokenizer{text: text}
}

// NextToken returns the next token. A sign is only valid directly in front of digits.
func (t *paramTokenizer) NextToken() paramToken {
	if t.pos >= len(t.text) {
		return paramToken{Type: tokenEOF}
	}

	ch := t.text[t.pos]
	if ch == ',' {
		t.pos++
		return paramToken{Type: tokenComma, Text: ","}
	}

	if isDigit(ch) || ch == '-' || ch == '+' {
		return t.readNumber()
	}

	t.pos++
	return paramToken{Type: tokenInvalid, Text: string(ch)}
}

// readNumber reads an optionally signed run of digits
func (t *paramTokenizer) readNumber() paramToken {
	start := t.pos
	if t.text[t.pos] == '-' || t.text[t.pos] == '+' {
		t.pos++
	}
	digits := t.pos
	for t.pos < len(t.text) && isDigit(t.text[t.pos]) {
		t.pos++
	}
	if t.pos == digits {
		return paramToken{Type: tokenInvalid, Text: t.text[start:t.pos]}
	}
	return paramToken{Type: tokenNumber, Text: t.text[start:t.pos]}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// parseParams converts "i,j" style text into integers. Empty text yields no parameters.
// On failure the returned string explains what was wrong.
func parseParams(text string) ([]int, string) {
	var params []int
	if text == "" {
		return params, ""
	}

	tokenizer := newParamTokenizer(text)
	for {
		tok := tokenizer.NextToken()
		switch tok.Type {
		case tokenNumber:
			n, err := strconv.Atoi(tok.Text)
			if err != nil {
				return nil, fmt.Sprintf("parameter %q is not a valid integer", tok.Text)
			}
			params = append(params, n)
		case tokenEOF:
			return nil, "expected integer parameter"
		default:
			return nil, fmt.Sprintf("unexpected %q in parameters", tok.Text)
		}

		tok = tokenizer.NextToken()
		switch tok.Type {
		case tokenEOF:
			return params, ""
		case tokenComma:
			continue
		default:
			return nil, fmt.Sprintf("unexpected %q in parameters", tok.Text)
		}
	}
}

// buildInstruction checks arity for the command code, fills in defaults
// and returns the typed record
func buildInstruction(code byte, params []int) (Instruction, string) {
	switch code {
	case 'S', 'D':
		switch len(params) {
		case 1:
			params = append(params, 1)
		case 2:
		default:
			return nil, fmt.Sprintf("%c takes 1 or 2 parameters, got %d", code, len(params))
		}
		if code == 'S' {
			return ShiftOp{Index: params[0], Offset: params[1]}, ""
		}
		return DuplicateOp{Index: params[0], Count: params[1]}, ""

	case 'R':
		switch len(params) {
		case 0:
			return RotateOp{Count: 1}, ""
		case 1:
			// its negation is not representable, so decode could not undo it
			if params[0] == math.MinInt {
				return nil, fmt.Sprintf("R count %d is out of range", params[0])
			}
			return RotateOp{Count: params[0]}, ""
		default:
			return nil, fmt.Sprintf("R takes at most 1 parameter, got %d", len(params))
		}

	case 'T', 'A':
		if len(params) != 2 {
			return nil, fmt.Sprintf("%c takes exactly 2 parameters, got %d", code, len(params))
		}
		if code == 'T' {
			return TradeOp{I: params[0], J: params[1]}, ""
		}
		return AffineOp{A: params[0], B: params[1]}, ""
	}

	return nil, fmt.Sprintf("unknown command %q", string(code))
}

// parseInstruction parses a single instruction like "S3,-2"
func parseInstruction(text string, position int) (Instruction, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &MalformedInstructionError{Position: position, Text: text, Reason: "empty instruction"}
	}

	code := strings.ToUpper(trimmed[:1])[0]
	params, reason := parseParams(trimmed[1:])
	if reason != "" {
		return nil, &MalformedInstructionError{Position: position, Text: trimmed, Reason: reason}
	}

	instr, reason := buildInstruction(code, params)
	if reason != "" {
		return nil, &MalformedInstructionError{Position: position, Text: trimmed, Reason: reason}
	}
	return instr, nil
}

// negateOffset returns a shift offset that undoes n. math.MinInt has no
// negation, so it is reduced modulo the alphabet first.
func negateOffset(n int) int {
	if n == math.MinInt {
		return -mod(n)
	}
	return -n
}

// ParseOperations converts a ';'-delimited operations string into instructions.
//
// In decode mode the instruction order is reversed before parsing and the
// Shift offset and Rotate count are negated. Duplicate, Trade and Affine keep
// their parameters; the driver pairs them with their structural inverse.
// Errors carry the instruction's 1-based position as written, in either mode.
func ParseOperations(operations string, mode Mode) ([]Instruction, error) {
	parts := strings.Split(operations, instructionSeparator)
	positions := make([]int, len(parts))
	for i := range parts {
		positions[i] = i + 1
	}

	if mode == ModeDecode {
		for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
			parts[i], parts[j] = parts[j], parts[i]
			positions[i], positions[j] = positions[j], positions[i]
		}
	}

	instrs := make([]Instruction, 0, len(parts))
	for i, part := range parts {
		instr, err := parseInstruction(part, positions[i])
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, instr)
	}

	if mode == ModeDecode {
		for i, instr := range instrs {
			switch op := instr.(type) {
			case ShiftOp:
				op.Offset = negateOffset(op.Offset)
				instrs[i] = op
			case RotateOp:
				op.Count = -op.Count
				instrs[i] = op
			}
		}
	}

	return instrs, nil
}
