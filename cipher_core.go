package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CipherCore is the headless core holding the current message, operations and mode.
// Every front end (menu, one-shot commands, socket server) drives one of these.
type CipherCore struct {
	message    string
	operations string
	mode       Mode
	output     string
	lastErr    error
	trace      []Step
	logger     *zap.Logger
}

// NewCipherCore creates a new CipherCore instance. A nil logger disables logging.
func NewCipherCore(logger *zap.Logger) *CipherCore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CipherCore{
		mode:   ModeEncode,
		logger: logger,
	}
}

// ============================================================================
// Pipeline State Methods
// ============================================================================

// SetMessage sets the message and processes it through the pipeline
func (cc *CipherCore) SetMessage(message string) {
	cc.message = message
	cc.processMessage()
}

// GetMessage returns the current message
func (cc *CipherCore) GetMessage() string {
	return cc.message
}

// SetOperations validates and stores the operations string, then reprocesses.
// An invalid string leaves the previous operations in place.
func (cc *CipherCore) SetOperations(operations string) error {
	if strings.TrimSpace(operations) != "" {
		if _, err := ParseOperations(operations, ModeEncode); err != nil {
			return err
		}
	}
	cc.operations = operations
	cc.processMessage()
	return nil
}

// GetOperations returns the current operations string
func (cc *CipherCore) GetOperations() string {
	return cc.operations
}

// SetMode switches between encoding and decoding and reprocesses
func (cc *CipherCore) SetMode(mode Mode) {
	cc.mode = mode
	cc.processMessage()
}

// GetMode returns the current mode
func (cc *CipherCore) GetMode() Mode {
	return cc.mode
}

// GetOutput returns the result of the last run, or the error that aborted it
func (cc *CipherCore) GetOutput() (string, error) {
	return cc.output, cc.lastErr
}

// GetTrace returns a copy of the steps of the last run
func (cc *CipherCore) GetTrace() []Step {
	return append([]Step{}, cc.trace...)
}

// ============================================================================
// One-shot Methods
// ============================================================================

// Encrypt sets message and operations in encode mode and returns the result
func (cc *CipherCore) Encrypt(message, operations string) (string, error) {
	return cc.runWith(message, operations, ModeEncode)
}

// Decrypt sets message and operations in decode mode and returns the result
func (cc *CipherCore) Decrypt(message, operations string) (string, error) {
	return cc.runWith(message, operations, ModeDecode)
}

func (cc *CipherCore) runWith(message, operations string, mode Mode) (string, error) {
	cc.message = message
	cc.operations = operations
	cc.mode = mode
	cc.processMessage()
	return cc.output, cc.lastErr
}

// Parse returns the instruction records the operations string parses to in mode
func (cc *CipherCore) Parse(operations string, mode Mode) ([]InstructionRecord, error) {
	instrs, err := ParseOperations(operations, mode)
	if err != nil {
		return nil, err
	}
	return ToRecords(instrs), nil
}

// ListOperations returns the catalog of supported commands
func (cc *CipherCore) ListOperations() []OperationInfo {
	return GetOperations()
}

// processMessage runs the pipeline on the current message and stores output, error and trace.
// With no operations configured the message passes through unchanged.
func (cc *CipherCore) processMessage() {
	cc.trace = nil
	cc.lastErr = nil

	if strings.TrimSpace(cc.operations) == "" {
		cc.output = cc.message
		return
	}

	runID := uuid.NewString()
	log := cc.logger.With(
		zap.String("run_id", runID),
		zap.Stringer("mode", cc.mode),
	)

	output, err := runString(cc.message, cc.operations, cc.mode, func(step Step) {
		cc.trace = append(cc.trace, step)
		log.Debug("step applied",
			zap.Int("step", step.Number),
			zap.String("instruction", step.Instruction),
			zap.String("before", step.Before),
			zap.String("after", step.After),
		)
	})
	if err != nil {
		cc.output = ""
		cc.lastErr = err
		log.Info("pipeline failed", zap.String("operations", cc.operations), zap.Error(err))
		return
	}

	cc.output = output
	log.Info("pipeline finished",
		zap.Int("steps", len(cc.trace)),
		zap.Int("input_length", len(cc.message)),
		zap.Int("output_length", len(output)),
	)
}

// ============================================================================
// Import/Export Methods
// ============================================================================

// pipelineExport is the JSON document written by ExportPipeline
type pipelineExport struct {
	Operations   string              `json:"operations"`
	Instructions []InstructionRecord `json:"instructions"`
}

// ExportPipeline exports the operations as JSON, with defaults made explicit
func (cc *CipherCore) ExportPipeline() (string, error) {
	export := pipelineExport{Instructions: []InstructionRecord{}}
	if strings.TrimSpace(cc.operations) != "" {
		instrs, err := ParseOperations(cc.operations, ModeEncode)
		if err != nil {
			return "", err
		}
		export.Operations = FormatOperations(instrs)
		export.Instructions = ToRecords(instrs)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ImportPipeline replaces the operations with those in an exported JSON document.
// The instruction list wins over the operations string when both are present.
func (cc *CipherCore) ImportPipeline(jsonStr string) error {
	var doc pipelineExport
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return fmt.Errorf("invalid pipeline JSON: %w", err)
	}

	operations := doc.Operations
	if len(doc.Instructions) > 0 {
		instrs, err := FromRecords(doc.Instructions)
		if err != nil {
			return err
		}
		operations = FormatOperations(instrs)
	}

	if strings.TrimSpace(operations) != "" {
		if _, err := ParseOperations(operations, ModeEncode); err != nil {
			return err
		}
	}
	cc.operations = operations
	cc.processMessage()
	return nil
}
