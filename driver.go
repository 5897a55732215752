package main

import "fmt"

// Step describes one applied instruction of a pipeline run
type Step struct {
	Number      int    `json:"step"`
	Mode        string `json:"mode"`
	Instruction string `json:"instruction"`
	Before      string `json:"before"`
	After       string `json:"after"`
}

// TraceFunc receives every step after it has been applied successfully
type TraceFunc func(Step)

// Encrypt parses operations in encode mode and applies each instruction in order
func Encrypt(message, operations string) (string, error) {
	return runString(message, operations, ModeEncode, nil)
}

// Decrypt parses operations in decode mode and applies the inverse of each
// instruction, last instruction first
func Decrypt(message, operations string) (string, error) {
	return runString(message, operations, ModeDecode, nil)
}

func runString(message, operations string, mode Mode, trace TraceFunc) (string, error) {
	instrs, err := ParseOperations(operations, mode)
	if err != nil {
		return "", err
	}
	msg, err := NewMessage(message)
	if err != nil {
		return "", err
	}
	out, err := Run(msg, instrs, mode, trace)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// Run applies already parsed instructions to message. In encode mode each
// instruction's Forward is used, in decode mode its Reverse. The first failing
// instruction aborts the run and no partial result is returned.
func Run(message Message, instrs []Instruction, mode Mode, trace TraceFunc) (Message, error) {
	current := message
	for i, instr := range instrs {
		var next Message
		var err error
		if mode == ModeDecode {
			next, err = instr.Reverse(current)
		} else {
			next, err = instr.Forward(current)
		}
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, instr, err)
		}

		if trace != nil {
			trace(Step{
				Number:      i + 1,
				Mode:        mode.String(),
				Instruction: instr.String(),
				Before:      current.String(),
				After:       next.String(),
			})
		}
		current = next
	}
	return current, nil
}
