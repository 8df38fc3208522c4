package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// errorPayload is the serialized failure shape returned to clients
type errorPayload struct {
	Error    string   `json:"error"`
	Warnings []string `json:"warnings,omitempty"`
}

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse serializes a tool failure. Warnings computed
// before the failure (regex-misuse hints) ride along so the client
// still sees them.
func createErrorResponse(err error, warnings ...string) (*mcp.CallToolResult, error) {
	content, marshalErr := json.Marshal(errorPayload{
		Error:    err.Error(),
		Warnings: warnings,
	})
	if marshalErr != nil {
		return nil, fmt.Errorf("failed to marshal error response: %v", marshalErr)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
		IsError: true,
	}, nil
}
