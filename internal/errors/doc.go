// Package errors defines error types for the MCP connection registry.
//
// This package provides structured error types for every failure a registry
// operation can surface: identifier conflicts, process launch failures,
// protocol handshake failures, transport-level protocol failures and
// shutdown failures. All error types support error unwrapping and can be
// checked using errors.Is, errors.As, and errors.AsType.
//
// A tool that reports failure through its own result (CallToolResult.IsError)
// is not an error at this level; it is a successful call.
package errors
