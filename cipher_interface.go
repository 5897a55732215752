package main

// CipherCommands defines the interface for all cipher operations.
// Both CipherCore (direct implementation) and SocketClientCommands (socket wrapper)
// implement this interface, so the menu works the same locally or against a server.
type CipherCommands interface {
	// =========================================================================
	// One-shot - Run a whole pipeline in one call
	// =========================================================================

	// Encrypt applies the operations to message in order
	Encrypt(message, operations string) (string, error)

	// Decrypt applies the inverse operations to message in reverse order
	Decrypt(message, operations string) (string, error)

	// =========================================================================
	// Pipeline State - Set inputs and read the result
	// =========================================================================

	// SetMessage sets the message to be processed by the pipeline
	SetMessage(message string)

	// GetMessage returns the current message
	GetMessage() string

	// SetOperations validates and stores the operations string
	SetOperations(operations string) error

	// GetOperations returns the current operations string
	GetOperations() string

	// SetMode selects encoding or decoding
	SetMode(mode Mode)

	// GetMode returns the current mode
	GetMode() Mode

	// GetOutput returns the result of processing the message, or why it failed
	GetOutput() (string, error)

	// GetTrace returns every step of the last run
	GetTrace() []Step

	// =========================================================================
	// Query Operations
	// =========================================================================

	// Parse returns the normalized instructions for an operations string
	Parse(operations string, mode Mode) ([]InstructionRecord, error)

	// ListOperations returns the supported commands
	ListOperations() []OperationInfo

	// =========================================================================
	// Import/Export - Serialize and deserialize the pipeline
	// =========================================================================

	// ExportPipeline returns the operations as a JSON string
	ExportPipeline() (string, error)

	// ImportPipeline loads operations from a JSON string
	ImportPipeline(jsonStr string) error
}
