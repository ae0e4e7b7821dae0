// Package subprocess launches MCP server processes.
//
// This package implements config.Launcher by spawning the server as a child
// process and exposing its stdin and stdout as the duplex stream the MCP
// stdio transport runs over. It handles executable resolution, stderr
// buffering, and a graceful-then-forced shutdown.
package subprocess
