package main

import (
	"agent-bootstrap/cmd" // CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// agent-bootstrap puts exactly one of two client services on a machine:
//   - the tunnel agent (cloudflared), which opens an outbound tunnel to a managed edge network
//   - the bridge client (cloudbridge-client), which maintains a managed point-to-point bridge
//
// A run asks for the target and a registration token, detects a previous
// installation through the OS service manager (offering to remove it), downloads
// the latest release artifact to a unique temp file, installs it silently,
// registers the service with the token and removes the temp file.
//
// Error handling strategy:
//   - An empty registration token ends the process with a non-zero status before anything happens
//   - Every other failure ends the selected install sequence with a message; the process exits normally
func main() {
	cmd.Execute()
}
