package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// remoteError is an error reported by the socket server. It unwraps to the
// matching sentinel so errors.Is works the same as with a local core.
type remoteError struct {
	kind    string
	message string
}

func (e *remoteError) Error() string { return e.message }

func (e *remoteError) Unwrap() error {
	switch e.kind {
	case "index_out_of_range":
		return ErrIndexOutOfRange
	case "malformed_instruction":
		return ErrMalformedInstruction
	case "no_inverse":
		return ErrNoInverse
	case "invalid_symbol":
		return ErrInvalidSymbol
	case "message_too_long":
		return ErrMessageTooLong
	}
	return nil
}

// SocketClientCommands wraps a SocketClient to implement the CipherCommands interface.
// This allows the menu to use the same interface whether connected to a socket server
// or using CipherCore directly.
type SocketClientCommands struct {
	client *SocketClient
	logger *zap.Logger
}

// NewSocketClientCommands creates a new socket client wrapper
func NewSocketClientCommands(client *SocketClient, logger *zap.Logger) *SocketClientCommands {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SocketClientCommands{client: client, logger: logger}
}

// call sends action with params and decodes the result into out (when non-nil)
func (s *SocketClientCommands) call(action string, params map[string]interface{}, out interface{}) error {
	cmdJSON, err := json.Marshal(Command{Action: action, Params: params})
	if err != nil {
		return err
	}

	resp, err := s.client.Execute(string(cmdJSON))
	if err != nil {
		return fmt.Errorf("socket error: %w", err)
	}

	if !resp.Success {
		if resp.Error == "" {
			return fmt.Errorf("%s failed with unknown error", action)
		}
		return &remoteError{kind: resp.Kind, message: resp.Error}
	}

	if out != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("%s: failed to decode result: %w", action, err)
		}
	}
	return nil
}

// ============================================================================
// One-shot Methods
// ============================================================================

// Encrypt implements CipherCommands.Encrypt
func (s *SocketClientCommands) Encrypt(message, operations string) (string, error) {
	return s.run("encrypt", message, operations)
}

// Decrypt implements CipherCommands.Decrypt
func (s *SocketClientCommands) Decrypt(message, operations string) (string, error) {
	return s.run("decrypt", message, operations)
}

func (s *SocketClientCommands) run(action, message, operations string) (string, error) {
	var result struct {
		Output string `json:"output"`
	}
	err := s.call(action, map[string]interface{}{
		"message":    message,
		"operations": operations,
	}, &result)
	if err != nil {
		return "", err
	}
	return result.Output, nil
}

// ============================================================================
// Pipeline State Methods
// ============================================================================

// SetMessage implements CipherCommands.SetMessage
func (s *SocketClientCommands) SetMessage(message string) {
	if err := s.call("set_message", map[string]interface{}{"message": message}, nil); err != nil {
		s.logger.Warn("SetMessage failed", zap.Error(err))
	}
}

// GetMessage implements CipherCommands.GetMessage
func (s *SocketClientCommands) GetMessage() string {
	var result struct {
		Message string `json:"message"`
	}
	if err := s.call("get_message", nil, &result); err != nil {
		s.logger.Warn("GetMessage failed", zap.Error(err))
	}
	return result.Message
}

// SetOperations implements CipherCommands.SetOperations
func (s *SocketClientCommands) SetOperations(operations string) error {
	return s.call("set_operations", map[string]interface{}{"operations": operations}, nil)
}

// GetOperations implements CipherCommands.GetOperations
func (s *SocketClientCommands) GetOperations() string {
	var result struct {
		Operations string `json:"operations"`
	}
	if err := s.call("get_operations", nil, &result); err != nil {
		s.logger.Warn("GetOperations failed", zap.Error(err))
	}
	return result.Operations
}

// SetMode implements CipherCommands.SetMode
func (s *SocketClientCommands) SetMode(mode Mode) {
	if err := s.call("set_mode", map[string]interface{}{"mode": mode.String()}, nil); err != nil {
		s.logger.Warn("SetMode failed", zap.Error(err))
	}
}

// GetMode implements CipherCommands.GetMode
func (s *SocketClientCommands) GetMode() Mode {
	var result struct {
		Mode string `json:"mode"`
	}
	if err := s.call("get_mode", nil, &result); err != nil {
		s.logger.Warn("GetMode failed", zap.Error(err))
		return ModeEncode
	}
	mode, err := ParseMode(result.Mode)
	if err != nil {
		s.logger.Warn("GetMode returned unknown mode", zap.String("mode", result.Mode))
	}
	return mode
}

// GetOutput implements CipherCommands.GetOutput
func (s *SocketClientCommands) GetOutput() (string, error) {
	var result struct {
		Output string `json:"output"`
	}
	if err := s.call("get_output", nil, &result); err != nil {
		return "", err
	}
	return result.Output, nil
}

// GetTrace implements CipherCommands.GetTrace
func (s *SocketClientCommands) GetTrace() []Step {
	var result struct {
		Steps []Step `json:"steps"`
	}
	if err := s.call("get_trace", nil, &result); err != nil {
		s.logger.Warn("GetTrace failed", zap.Error(err))
	}
	return result.Steps
}

// ============================================================================
// Query Methods
// ============================================================================

// Parse implements CipherCommands.Parse
func (s *SocketClientCommands) Parse(operations string, mode Mode) ([]InstructionRecord, error) {
	var result struct {
		Instructions []InstructionRecord `json:"instructions"`
	}
	err := s.call("parse_operations", map[string]interface{}{
		"operations": operations,
		"mode":       mode.String(),
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Instructions, nil
}

// ListOperations implements CipherCommands.ListOperations
func (s *SocketClientCommands) ListOperations() []OperationInfo {
	var result struct {
		Operations []OperationInfo `json:"operations"`
	}
	if err := s.call("list_operations", nil, &result); err != nil {
		s.logger.Warn("ListOperations failed", zap.Error(err))
	}
	return result.Operations
}

// ============================================================================
// Import/Export Methods
// ============================================================================

// ExportPipeline implements CipherCommands.ExportPipeline
func (s *SocketClientCommands) ExportPipeline() (string, error) {
	var result struct {
		JSON string `json:"json"`
	}
	if err := s.call("export_pipeline", nil, &result); err != nil {
		return "", err
	}
	if result.JSON == "" {
		return "", errors.New("export_pipeline returned no JSON")
	}
	return result.JSON, nil
}

// ImportPipeline implements CipherCommands.ImportPipeline
func (s *SocketClientCommands) ImportPipeline(jsonStr string) error {
	return s.call("import_pipeline", map[string]interface{}{"json": jsonStr}, nil)
}
