package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/effective-security/mcpvolume/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toolCallResponse = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o-mini",
	"choices": [{
		"index": 0,
		"finish_reason": "tool_calls",
		"message": {
			"role": "assistant",
			"content": null,
			"tool_calls": [
				{"id": "call_1", "type": "function", "function": {"name": "set_volume", "arguments": "{\"volume_level\":50}"}},
				{"id": "call_2", "type": "function", "function": {"name": "set_volume", "arguments": "{\"volume_level\":70}"}}
			]
		}
	}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

const textResponse = `{
	"id": "chatcmpl-2",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o-mini",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "The volume is now 50%."}
	}],
	"usage": {"prompt_tokens": 20, "completion_tokens": 7, "total_tokens": 27}
}`

func clearEnv(t *testing.T) {
	for _, name := range []string{tokenEnvVarName, modelEnvVarName, baseURLEnvVarName, baseAPIBaseEnvVarName, organizationEnvVarName} {
		t.Setenv(name, "")
	}
}

type capture struct {
	path   string
	query  string
	header http.Header
	body   map[string]any
}

func newServer(t *testing.T, status int, response string, got *capture) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.header = r.Header.Clone()
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got.body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew(t *testing.T) {
	clearEnv(t)

	_, err := New()
	assert.EqualError(t, err, "missing the OpenAI API key, set it in the OPENAI_API_KEY environment variable")

	t.Setenv(tokenEnvVarName, "fakekey")
	llm, err := New()
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, llm.Model())
	assert.Equal(t, llms.ProviderOpenAI, llm.GetProviderType())

	t.Setenv(modelEnvVarName, "gpt-4.1")
	llm, err = New()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", llm.Model())

	llm, err = New(WithModel("o3"))
	require.NoError(t, err)
	assert.Equal(t, "o3", llm.Model())

	_, err = New(WithProvider(ProviderAzure))
	require.NoError(t, err)

	t.Setenv(modelEnvVarName, "")
	_, err = New(WithProvider(ProviderAzure))
	assert.EqualError(t, err, "model is required for Azure deployments")
}

func TestGenerateContent_ToolCalls(t *testing.T) {
	clearEnv(t)

	var got capture
	srv := newServer(t, http.StatusOK, toolCallResponse, &got)

	llm, err := New(WithToken("fakekey"), WithBaseURL(srv.URL), WithOrganization("org-1"))
	require.NoError(t, err)

	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"volume_level": map[string]any{"type": "number"},
		},
		"required": []any{"volume_level"},
	}
	messages := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "be brief"),
		llms.MessageFromTextParts(llms.RoleHuman, "set volume to 50"),
	}
	resp, err := llm.GenerateContent(context.Background(), messages,
		llms.WithMaxTokens(1000),
		llms.WithTools([]llms.Tool{llms.FunctionTool("set_volume", "Set the master volume", params)}),
		llms.WithToolChoice("auto"),
	)
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)

	choice := resp.Choices[0]
	assert.Empty(t, choice.Content)
	assert.Equal(t, "tool_calls", choice.StopReason)
	require.Len(t, choice.ToolCalls, 2)
	assert.Equal(t, "call_1", choice.ToolCalls[0].ID)
	assert.Equal(t, "function", choice.ToolCalls[0].Type)
	assert.Equal(t, "set_volume", choice.ToolCalls[0].FunctionCall.Name)
	assert.Equal(t, `{"volume_level":50}`, choice.ToolCalls[0].FunctionCall.Arguments)
	assert.Equal(t, int64(15), choice.GenerationInfo["TotalTokens"])

	assert.Equal(t, "/chat/completions", got.path)
	assert.Equal(t, "Bearer fakekey", got.header.Get("Authorization"))
	assert.Equal(t, "org-1", got.header.Get("OpenAI-Organization"))
	assert.Equal(t, "gpt-4o-mini", got.body["model"])
	assert.EqualValues(t, 1000, got.body["max_tokens"])
	assert.Equal(t, "auto", got.body["tool_choice"])

	msgs := got.body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
	assert.Equal(t, "set volume to 50", msgs[1].(map[string]any)["content"])

	tools := got.body["tools"].([]any)
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]any)
	assert.Equal(t, "function", tool["type"])
	fn := tool["function"].(map[string]any)
	assert.Equal(t, "set_volume", fn["name"])
	assert.Equal(t, "Set the master volume", fn["description"])
	assert.Equal(t, params["required"], fn["parameters"].(map[string]any)["required"])
}

func TestGenerateContent_ToolResponse(t *testing.T) {
	clearEnv(t)

	var got capture
	srv := newServer(t, http.StatusOK, textResponse, &got)

	llm, err := New(WithToken("fakekey"), WithBaseURL(srv.URL), WithModel("gpt-4.1-mini"))
	require.NoError(t, err)

	call := llms.ToolCall{ID: "call_1", Type: "function", FunctionCall: &llms.FunctionCall{Name: "set_volume", Arguments: `{"volume_level":50}`}}
	messages := []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "set volume to 50"),
		llms.MessageFromToolCalls(llms.RoleAI, call),
		llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{ToolCallID: "call_1", Name: "set_volume", Content: "Volume set to 50.0%"}),
	}
	resp, err := llm.GenerateContent(context.Background(), messages)
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "The volume is now 50%.", resp.Choices[0].Content)
	assert.Empty(t, resp.Choices[0].ToolCalls)

	assert.Equal(t, "gpt-4.1-mini", got.body["model"])
	assert.NotContains(t, got.body, "tools")
	assert.NotContains(t, got.body, "max_tokens")

	msgs := got.body["messages"].([]any)
	require.Len(t, msgs, 3)

	assistant := msgs[1].(map[string]any)
	assert.Equal(t, "assistant", assistant["role"])
	calls := assistant["tool_calls"].([]any)
	require.Len(t, calls, 1)
	assert.Equal(t, "call_1", calls[0].(map[string]any)["id"])
	assert.Equal(t, "function", calls[0].(map[string]any)["type"])

	tool := msgs[2].(map[string]any)
	assert.Equal(t, "tool", tool["role"])
	assert.Equal(t, "call_1", tool["tool_call_id"])
	assert.Equal(t, "Volume set to 50.0%", tool["content"])
}

func TestGenerateContent_Azure(t *testing.T) {
	clearEnv(t)

	var got capture
	srv := newServer(t, http.StatusOK, textResponse, &got)

	llm, err := New(WithToken("azkey"), WithBaseURL(srv.URL), WithProvider(ProviderAzure), WithModel("gpt-4o"))
	require.NoError(t, err)
	assert.Equal(t, llms.ProviderAzure, llm.GetProviderType())

	_, err = llm.GenerateContent(context.Background(), []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "hi"),
	})
	require.NoError(t, err)
	assert.Equal(t, "/openai/deployments/gpt-4o/chat/completions", got.path)
	assert.Equal(t, "api-version="+DefaultAPIVersion, got.query)
	assert.Equal(t, "azkey", got.header.Get("api-key"))
}

func TestGenerateContent_Errors(t *testing.T) {
	clearEnv(t)

	t.Run("empty", func(t *testing.T) {
		var got capture
		srv := newServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`, &got)
		llm, err := New(WithToken("fakekey"), WithBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = llm.GenerateContent(context.Background(), []llms.Message{llms.MessageFromTextParts(llms.RoleHuman, "hi")})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("status", func(t *testing.T) {
		var got capture
		srv := newServer(t, http.StatusBadRequest, `{"error":{"message":"bad request","type":"invalid_request_error"}}`, &got)
		llm, err := New(WithToken("fakekey"), WithBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = llm.GenerateContent(context.Background(), []llms.Message{llms.MessageFromTextParts(llms.RoleHuman, "hi")})
		assert.ErrorContains(t, err, "400")
	})

	t.Run("roles", func(t *testing.T) {
		llm, err := New(WithToken("fakekey"), WithBaseURL("http://localhost:0"))
		require.NoError(t, err)

		_, err = llm.GenerateContent(context.Background(), []llms.Message{{Role: "generic"}})
		assert.ErrorIs(t, err, llms.ErrUnexpectedRole)

		_, err = llm.GenerateContent(context.Background(), []llms.Message{llms.MessageFromTextParts(llms.RoleTool, "a", "b")})
		assert.EqualError(t, err, "expected exactly one part for role tool, got 2")

		_, err = llm.GenerateContent(context.Background(), []llms.Message{llms.MessageFromTextParts(llms.RoleTool, "a")})
		assert.EqualError(t, err, "expected part of type ToolCallResponse for role tool, got llms.TextContent")
	})

	t.Run("tools", func(t *testing.T) {
		llm, err := New(WithToken("fakekey"), WithBaseURL("http://localhost:0"))
		require.NoError(t, err)

		_, err = llm.GenerateContent(context.Background(),
			[]llms.Message{llms.MessageFromTextParts(llms.RoleHuman, "hi")},
			llms.WithTools([]llms.Tool{{Type: "code_interpreter"}}),
		)
		assert.EqualError(t, err, "failed to convert llms tool to openai tool: tool type code_interpreter not supported")

		_, err = llm.GenerateContent(context.Background(),
			[]llms.Message{llms.MessageFromTextParts(llms.RoleHuman, "hi")},
			llms.WithTools([]llms.Tool{llms.FunctionTool("x", "", []int{1})}),
		)
		assert.ErrorContains(t, err, "parameters must be a JSON object")
	})
}

func TestFunctionParameters(t *testing.T) {
	p, err := functionParameters(nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	type schema struct {
		Type string `json:"type"`
	}
	p, err = functionParameters(&schema{Type: "object"})
	require.NoError(t, err)
	assert.Equal(t, "object", p["type"])

	p, err = functionParameters(json.RawMessage(`{"type":"object","properties":{}}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, p["properties"])
}
