// Nexus: session bootstrap for a personal-assistant workspace.
//
// An MCP server (and matching CLI) that loads a workspace's memory,
// projects, and skills in one call, tells the AI what to do next, and keeps
// the system files in sync with the upstream template.
//
// Usage:
//
//	nexus serve           # Start MCP server (stdio transport)
//	nexus startup         # Print the startup bundle as JSON
//	nexus status          # Human-readable workspace summary
//	nexus sync --dry-run  # Show which system files would be updated
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
