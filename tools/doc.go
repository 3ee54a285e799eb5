// Package tools defines the Tool interface of the tool host and the Registry
// that maps a registered tool name to its handler.
package tools
