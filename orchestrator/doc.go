// Package orchestrator connects a chat-completion model to MCP tool hosts.
//
// The orchestrator spawns each tool host as a child process, advertises the
// tools of all hosts to the model and dispatches the first tool call of the
// model reply to the first host that accepts it. The model is then called a
// second time, without tools, to produce the answer.
package orchestrator
