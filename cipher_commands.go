package main

import (
	"encoding/json"
)

// Command represents a JSON command sent to the core
type Command struct {
	Action string                 `json:"action"`
	Params map[string]interface{} `json:"params"`
}

// Response represents a JSON response from command execution.
// Kind classifies engine errors so clients can rebuild them.
type Response struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

// ExecuteCommand executes a JSON command and returns a JSON response
func (cc *CipherCore) ExecuteCommand(cmdJSON string) string {
	var cmd Command
	if err := json.Unmarshal([]byte(cmdJSON), &cmd); err != nil {
		return cc.errorResponse("Invalid JSON: " + err.Error())
	}

	switch cmd.Action {
	case "encrypt":
		return cc.cmdRun(cmd.Params, ModeEncode)
	case "decrypt":
		return cc.cmdRun(cmd.Params, ModeDecode)
	case "parse_operations":
		return cc.cmdParseOperations(cmd.Params)
	case "set_message":
		return cc.cmdSetMessage(cmd.Params)
	case "get_message":
		return cc.successResponse(map[string]interface{}{"message": cc.GetMessage()})
	case "set_operations":
		return cc.cmdSetOperations(cmd.Params)
	case "get_operations":
		return cc.successResponse(map[string]interface{}{"operations": cc.GetOperations()})
	case "set_mode":
		return cc.cmdSetMode(cmd.Params)
	case "get_mode":
		return cc.successResponse(map[string]interface{}{"mode": cc.GetMode().String()})
	case "get_output":
		return cc.cmdGetOutput(cmd.Params)
	case "get_trace":
		return cc.successResponse(map[string]interface{}{"steps": cc.GetTrace()})
	case "export_pipeline":
		return cc.cmdExportPipeline(cmd.Params)
	case "import_pipeline":
		return cc.cmdImportPipeline(cmd.Params)
	case "list_operations":
		return cc.successResponse(map[string]interface{}{"operations": cc.ListOperations()})
	default:
		return cc.errorResponse("Unknown action: " + cmd.Action)
	}
}

// ============================================================================
// Command Handlers
// ============================================================================

// cmdRun runs a one-shot encrypt or decrypt
func (cc *CipherCore) cmdRun(params map[string]interface{}, mode Mode) string {
	message := getStr(params, "message", "")
	operations := getStr(params, "operations", "")
	if operations == "" {
		return cc.errorResponse("Missing required parameter: operations")
	}

	var output string
	var err error
	if mode == ModeDecode {
		output, err = cc.Decrypt(message, operations)
	} else {
		output, err = cc.Encrypt(message, operations)
	}
	if err != nil {
		return cc.engineErrorResponse(err)
	}

	return cc.successResponse(map[string]interface{}{
		"output": output,
		"steps":  cc.GetTrace(),
	})
}

// cmdParseOperations returns the normalized instructions without running them
func (cc *CipherCore) cmdParseOperations(params map[string]interface{}) string {
	operations := getStr(params, "operations", "")
	mode, err := ParseMode(getStr(params, "mode", "encode"))
	if err != nil {
		return cc.errorResponse(err.Error())
	}

	records, err := cc.Parse(operations, mode)
	if err != nil {
		return cc.engineErrorResponse(err)
	}

	return cc.successResponse(map[string]interface{}{
		"instructions": records,
		"canonical":    canonicalFromRecords(records),
	})
}

// cmdSetMessage sets the message and processes it
func (cc *CipherCore) cmdSetMessage(params map[string]interface{}) string {
	cc.SetMessage(getStr(params, "message", ""))
	return cc.successResponse(map[string]interface{}{
		"success": true,
	})
}

// cmdSetOperations validates and stores the operations
func (cc *CipherCore) cmdSetOperations(params map[string]interface{}) string {
	if err := cc.SetOperations(getStr(params, "operations", "")); err != nil {
		return cc.engineErrorResponse(err)
	}
	return cc.successResponse(map[string]interface{}{
		"success": true,
	})
}

// cmdSetMode switches between encode and decode
func (cc *CipherCore) cmdSetMode(params map[string]interface{}) string {
	modeStr := getStr(params, "mode", "")
	if modeStr == "" {
		return cc.errorResponse("Missing required parameter: mode")
	}

	mode, err := ParseMode(modeStr)
	if err != nil {
		return cc.errorResponse(err.Error())
	}

	cc.SetMode(mode)
	return cc.successResponse(map[string]interface{}{
		"success": true,
	})
}

// cmdGetOutput returns the current output, or the error of the last run
func (cc *CipherCore) cmdGetOutput(params map[string]interface{}) string {
	output, err := cc.GetOutput()
	if err != nil {
		return cc.engineErrorResponse(err)
	}
	return cc.successResponse(map[string]interface{}{
		"output": output,
	})
}

// cmdExportPipeline exports the operations as JSON
func (cc *CipherCore) cmdExportPipeline(params map[string]interface{}) string {
	jsonStr, err := cc.ExportPipeline()
	if err != nil {
		return cc.engineErrorResponse(err)
	}
	return cc.successResponse(map[string]interface{}{
		"json": jsonStr,
	})
}

// cmdImportPipeline imports operations from JSON
func (cc *CipherCore) cmdImportPipeline(params map[string]interface{}) string {
	jsonStr := getStr(params, "json", "")
	if jsonStr == "" {
		return cc.errorResponse("Missing required parameter: json")
	}

	if err := cc.ImportPipeline(jsonStr); err != nil {
		return cc.engineErrorResponse(err)
	}

	return cc.successResponse(map[string]interface{}{
		"success":    true,
		"operations": cc.GetOperations(),
	})
}

// ============================================================================
// Helper Functions
// ============================================================================

// getStr safely extracts a string parameter, with a default value
func getStr(params map[string]interface{}, key, defaultValue string) string {
	if val, ok := params[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return defaultValue
}

func canonicalFromRecords(records []InstructionRecord) string {
	instrs, err := FromRecords(records)
	if err != nil {
		return ""
	}
	return FormatOperations(instrs)
}

// successResponse creates a successful response
func (cc *CipherCore) successResponse(result interface{}) string {
	resp := Response{
		Success: true,
		Result:  result,
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

// errorResponse creates an error response for a bad request
func (cc *CipherCore) errorResponse(errorMsg string) string {
	resp := Response{
		Success: false,
		Error:   errorMsg,
		Kind:    "invalid_request",
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

// engineErrorResponse creates an error response that keeps the engine error kind
func (cc *CipherCore) engineErrorResponse(err error) string {
	resp := Response{
		Success: false,
		Error:   err.Error(),
		Kind:    errorKind(err),
	}
	data, _ := json.Marshal(resp)
	return string(data)
}
