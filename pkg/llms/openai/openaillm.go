package openai

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpvolume/pkg/llms"
	"github.com/effective-security/mcpvolume/pkg/llms/openai/internal/openaiclient"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

// ErrEmptyResponse is returned when the model returns no choices.
var ErrEmptyResponse = openaiclient.ErrEmptyResponse

type LLM struct {
	client *openaiclient.Client
}

var _ llms.Model = (*LLM)(nil)

// New returns a new OpenAI LLM.
func New(opts ...Option) (*LLM, error) {
	_, c, err := newClient(opts...)
	if err != nil {
		return nil, err
	}
	return &LLM{
		client: c,
	}, nil
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ParseProviderType(string(o.client.Provider))
}

// Model returns the configured model name.
func (o *LLM) Model() string {
	return o.client.Model
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) { //nolint: lll, cyclop, funlen
	opts := llms.NewCallOptions(options...)

	chatMsgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, mc := range messages {
		msg, err := messageParam(mc)
		if err != nil {
			return nil, err
		}
		chatMsgs = append(chatMsgs, msg)
	}

	req := &openai.ChatCompletionNewParams{
		Model:    opts.Model,
		Messages: chatMsgs,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		req.Temperature = openai.Float(opts.Temperature)
	}
	if opts.Seed != 0 {
		req.Seed = openai.Int(int64(opts.Seed))
	}
	if opts.N > 0 {
		req.N = openai.Int(int64(opts.N))
	}
	if len(opts.StopWords) > 0 {
		req.Stop.OfStringArray = opts.StopWords
	}
	if len(opts.Metadata) > 0 {
		req.Metadata = shared.Metadata(opts.Metadata)
	}

	for _, tool := range opts.Tools {
		t, err := toolFromTool(tool)
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert llms tool to openai tool")
		}
		req.Tools = append(req.Tools, t)
	}
	if opts.ToolChoice != "" && len(req.Tools) > 0 {
		req.ToolChoice.OfAuto = openai.String(opts.ToolChoice)
	}

	result, err := o.client.CreateChat(ctx, req)
	if err != nil {
		return nil, err
	}

	choices := make([]*llms.ContentChoice, len(result.Choices))
	for i, c := range result.Choices {
		choices[i] = &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: c.FinishReason,
			GenerationInfo: map[string]any{
				"CompletionTokens": result.Usage.CompletionTokens,
				"PromptTokens":     result.Usage.PromptTokens,
				"TotalTokens":      result.Usage.TotalTokens,
				"ReasoningTokens":  result.Usage.CompletionTokensDetails.ReasoningTokens,
			},
		}

		for _, tool := range c.Message.ToolCalls {
			if tool.Type != "function" {
				continue
			}
			choices[i].ToolCalls = append(choices[i].ToolCalls, llms.ToolCall{
				ID:   tool.ID,
				Type: tool.Type,
				FunctionCall: &llms.FunctionCall{
					Name:      tool.Function.Name,
					Arguments: tool.Function.Arguments,
				},
			})
		}
	}
	return &llms.ContentResponse{Choices: choices}, nil
}

func messageParam(mc llms.Message) (openai.ChatCompletionMessageParamUnion, error) {
	switch mc.Role {
	case llms.RoleSystem:
		return openai.SystemMessage(textOf(mc)), nil
	case llms.RoleHuman:
		return openai.UserMessage(textOf(mc)), nil
	case llms.RoleAI:
		msg := openai.ChatCompletionAssistantMessageParam{}
		if text := textOf(mc); text != "" {
			msg.Content.OfString = openai.String(text)
		}
		for _, tc := range mc.ToolCalls() {
			msg.ToolCalls = append(msg.ToolCalls, toolCallFromToolCall(tc))
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &msg}, nil
	case llms.RoleTool:
		// parse mc.Parts (which should have one entry of type ToolCallResponse)
		if len(mc.Parts) != 1 {
			return openai.ChatCompletionMessageParamUnion{}, errors.Errorf("expected exactly one part for role %v, got %v", mc.Role, len(mc.Parts))
		}
		switch p := mc.Parts[0].(type) {
		case llms.ToolCallResponse:
			return openai.ToolMessage(p.Content, p.ToolCallID), nil
		default:
			return openai.ChatCompletionMessageParamUnion{}, errors.Errorf("expected part of type ToolCallResponse for role %v, got %T", mc.Role, mc.Parts[0])
		}
	}
	return openai.ChatCompletionMessageParamUnion{}, errors.Wrapf(llms.ErrUnexpectedRole, "role %v not supported", mc.Role)
}

func textOf(mc llms.Message) string {
	var text string
	for _, part := range mc.Parts {
		if tc, ok := part.(llms.TextContent); ok {
			if text != "" {
				text += "\n"
			}
			text += tc.Text
		}
	}
	return text
}

// toolFromTool converts an llms.Tool to a Tool.
func toolFromTool(t llms.Tool) (openai.ChatCompletionToolUnionParam, error) {
	if t.Type != "function" || t.Function == nil {
		return openai.ChatCompletionToolUnionParam{}, errors.Errorf("tool type %v not supported", t.Type)
	}
	params, err := functionParameters(t.Function.Parameters)
	if err != nil {
		return openai.ChatCompletionToolUnionParam{}, errors.WithMessagef(err, "tool %s", t.Function.Name)
	}
	def := shared.FunctionDefinitionParam{
		Name:       t.Function.Name,
		Parameters: params,
	}
	if t.Function.Description != "" {
		def.Description = openai.String(t.Function.Description)
	}
	if t.Function.Strict {
		def.Strict = openai.Bool(true)
	}
	return openai.ChatCompletionFunctionTool(def), nil
}

// functionParameters returns the JSON schema object of the parameters.
func functionParameters(params any) (shared.FunctionParameters, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return shared.FunctionParameters(p), nil
	case shared.FunctionParameters:
		return p, nil
	}
	js, err := json.Marshal(params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal parameters")
	}
	var m map[string]any
	if err = json.Unmarshal(js, &m); err != nil {
		return nil, errors.Wrap(err, "parameters must be a JSON object")
	}
	return shared.FunctionParameters(m), nil
}

// toolCallFromToolCall converts an llms.ToolCall to a ToolCall.
func toolCallFromToolCall(tc llms.ToolCall) openai.ChatCompletionMessageToolCallUnionParam {
	fn := openai.ChatCompletionMessageFunctionToolCallParam{
		ID: tc.ID,
	}
	if tc.FunctionCall != nil {
		fn.Function = openai.ChatCompletionMessageFunctionToolCallFunctionParam{
			Name:      tc.FunctionCall.Name,
			Arguments: tc.FunctionCall.Arguments,
		}
	}
	return openai.ChatCompletionMessageToolCallUnionParam{OfFunction: &fn}
}
