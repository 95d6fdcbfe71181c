//go:build windows

package main

import "os"

// interruptSignals cancel a running simulation or MCP server. On Windows only
// os.Interrupt (Ctrl+C) is delivered; SIGTERM does not exist.
var interruptSignals = []os.Signal{os.Interrupt}
