// Package mcp wraps the Model Context Protocol SDK.
//
// Server exposes a tools.Registry to a single client over stdio,
// Session is the client side of one tool host, usually a spawned child process.
package mcp
