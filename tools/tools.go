package tools

import (
	"context"

	"github.com/cockroachdb/errors"
)

//go:generate mockgen -destination=../mocks/mocktools/tools_mock.gen.go -package mocktools github.com/effective-security/mcpvolume/tools ITool,Callback

var (
	// ErrUnknownTool is returned when no tool is registered with the requested name.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrFailedUnmarshalInput is returned when the tool input can not be decoded.
	ErrFailedUnmarshalInput = errors.New("failed to unmarshal input")
)

// ITool is a tool exposed by the tool host.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the parameters definition of the function, to be used in the prompt.
	// It must marshal to a JSON schema object.
	Parameters() any

	// Call executes the tool with the given input and returns the result.
	// If the tool fails to parse the input, it should return ErrFailedUnmarshalInput error.
	Call(context.Context, string) (string, error)
}

type Callback interface {
	OnToolStart(context.Context, ITool, string)
	OnToolEnd(context.Context, ITool, string, string)
	OnToolError(context.Context, ITool, string, error)
}

type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}
