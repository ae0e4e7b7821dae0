// Package mcp binds the registry to the official Model Context Protocol SDK.
//
// Connector performs the client handshake over a spawned process's stdio and
// returns a config.ProtocolClient. ToolServer builds real SDK servers from
// tool definitions; it backs the bundled BMI server and the in-memory
// servers used in tests. Unknown tool names are answered with an error
// result rather than a JSON-RPC error, so callers can tell a failed tool
// apart from a failed connection.
package mcp
