package main

import (
	"fmt"
	"strings"
)

// Mode selects whether a pipeline encodes or decodes
type Mode int

const (
	ModeEncode Mode = iota
	ModeDecode
)

func (m Mode) String() string {
	if m == ModeDecode {
		return "decode"
	}
	return "encode"
}

// ParseMode accepts "encode"/"encrypt"/"e" and "decode"/"decrypt"/"d" in any case
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "e", "encode", "encrypt":
		return ModeEncode, nil
	case "d", "decode", "decrypt":
		return ModeDecode, nil
	}
	return ModeEncode, fmt.Errorf("unknown mode: %q", s)
}

// Instruction is one parsed operation record. Forward applies the operation;
// Reverse applies its structural inverse. For Shift and Rotate the decode-mode
// parser has already negated the parameter, so Reverse is the same operation.
type Instruction interface {
	Code() byte
	Params() []int
	Forward(m Message) (Message, error)
	Reverse(m Message) (Message, error)
	String() string
}

// ShiftOp shifts the symbol at Index by Offset letters
type ShiftOp struct {
	Index  int
	Offset int
}

func (op ShiftOp) Code() byte    { return 'S' }
func (op ShiftOp) Params() []int { return []int{op.Index, op.Offset} }

func (op ShiftOp) Forward(m Message) (Message, error) { return Shift(m, op.Index, op.Offset) }
func (op ShiftOp) Reverse(m Message) (Message, error) { return Shift(m, op.Index, op.Offset) }

func (op ShiftOp) String() string { return fmt.Sprintf("S%d,%d", op.Index, op.Offset) }

// RotateOp rotates the whole message right by Count
type RotateOp struct {
	Count int
}

func (op RotateOp) Code() byte    { return 'R' }
func (op RotateOp) Params() []int { return []int{op.Count} }

func (op RotateOp) Forward(m Message) (Message, error) { return Rotate(m, op.Count), nil }
func (op RotateOp) Reverse(m Message) (Message, error) { return Rotate(m, op.Count), nil }

func (op RotateOp) String() string { return fmt.Sprintf("R%d", op.Count) }

// DuplicateOp inserts Count copies of the symbol at Index right after it.
// Its inverse is RemoveDuplicate with the same parameters.
type DuplicateOp struct {
	Index int
	Count int
}

func (op DuplicateOp) Code() byte    { return 'D' }
func (op DuplicateOp) Params() []int { return []int{op.Index, op.Count} }

func (op DuplicateOp) Forward(m Message) (Message, error) { return Duplicate(m, op.Index, op.Count) }
func (op DuplicateOp) Reverse(m Message) (Message, error) {
	return RemoveDuplicate(m, op.Index, op.Count)
}

func (op DuplicateOp) String() string { return fmt.Sprintf("D%d,%d", op.Index, op.Count) }

// TradeOp swaps the symbols at I and J. It is its own inverse.
type TradeOp struct {
	I int
	J int
}

func (op TradeOp) Code() byte    { return 'T' }
func (op TradeOp) Params() []int { return []int{op.I, op.J} }

func (op TradeOp) Forward(m Message) (Message, error) { return Trade(m, op.I, op.J) }
func (op TradeOp) Reverse(m Message) (Message, error) { return Trade(m, op.I, op.J) }

func (op TradeOp) String() string { return fmt.Sprintf("T%d,%d", op.I, op.J) }

// AffineOp maps every symbol x to (A*x + B) mod 26
type AffineOp struct {
	A int
	B int
}

func (op AffineOp) Code() byte    { return 'A' }
func (op AffineOp) Params() []int { return []int{op.A, op.B} }

func (op AffineOp) Forward(m Message) (Message, error) { return AffineEncrypt(m, op.A, op.B), nil }
func (op AffineOp) Reverse(m Message) (Message, error) { return AffineDecrypt(m, op.A, op.B) }

func (op AffineOp) String() string { return fmt.Sprintf("A%d,%d", op.A, op.B) }

// FormatOperations renders instructions back into canonical grammar text
func FormatOperations(instrs []Instruction) string {
	parts := make([]string, len(instrs))
	for i, instr := range instrs {
		parts[i] = instr.String()
	}
	return strings.Join(parts, ";")
}

// InstructionRecord is the JSON form of an instruction used by export/import
type InstructionRecord struct {
	Code   string `json:"code"`
	Params []int  `json:"params"`
}

// ToRecords converts instructions into their JSON records
func ToRecords(instrs []Instruction) []InstructionRecord {
	records := make([]InstructionRecord, len(instrs))
	for i, instr := range instrs {
		records[i] = InstructionRecord{
			Code:   string(instr.Code()),
			Params: instr.Params(),
		}
	}
	return records
}

// FromRecords rebuilds encode-mode instructions from JSON records, applying
// the same arity rules and defaults as the text grammar
func FromRecords(records []InstructionRecord) ([]Instruction, error) {
	instrs := make([]Instruction, 0, len(records))
	for i, rec := range records {
		text := rec.Code + joinInts(rec.Params)
		if len(rec.Code) != 1 {
			return nil, &MalformedInstructionError{Position: i + 1, Text: text, Reason: "command code must be one letter"}
		}
		instr, reason := buildInstruction(strings.ToUpper(rec.Code)[0], append([]int(nil), rec.Params...))
		if reason != "" {
			return nil, &MalformedInstructionError{Position: i + 1, Text: text, Reason: reason}
		}
		instrs = append(instrs, instr)
	}
	return instrs, nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
