// Package llms provides the provider-neutral chat model contract used by the orchestrator:
// messages with typed parts, tool definitions, tool calls and call options.
//
// Provider implementations live in subpackages; the internal directories within them
// contain the provider-specific client code.
package llms
