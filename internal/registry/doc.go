// Package registry implements the MCP connection registry.
//
// A Registry owns a map from caller-chosen connection ids to live sessions
// with MCP servers running as child processes. It exposes four operations
// (Connect, Disconnect, ListTools, CallTool) and delegates process spawning
// to a config.Launcher and the protocol handshake to a config.Connector.
//
// One mutex guards the whole map and is held only to look up, reserve,
// publish or remove entries; process spawning, handshakes and tool calls run
// outside it, so slow servers never block operations on other ids. Each id
// moves through connecting → active → closing and back to absent. A connect
// for an id that is connecting, active or closing fails with
// AlreadyConnectedError; every other operation on an id that is not active
// fails with NotConnectedError.
package registry
