// Package tools implements the MCP tool handlers for Nexus.
//
// Each tool is a struct holding the service it drives and exposes
// Definition for registration and Handle for calls.
//
// Design principles:
// - SRP: each file = one tool
// - Tools never touch the filesystem or git directly; the service does
// - Results are indented JSON so the agent can branch on fields
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// jsonResult renders v as an indented JSON text result. A non-empty
// errMsg marks the result as a tool error while keeping the JSON body.
func jsonResult(v any, errMsg string) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	result := mcp.NewToolResultText(string(data))
	result.IsError = errMsg != ""
	return result, nil
}
