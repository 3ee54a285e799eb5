package llms_test

import (
	"testing"

	"github.com/effective-security/mcpvolume/pkg/llms"
	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	tools := []llms.Tool{
		llms.FunctionTool("test", "test tool", map[string]any{"type": "object"}),
	}
	meta := map[string]string{"test": "test"}
	stopWords := []string{"stop"}

	opts := llms.NewCallOptions(
		llms.WithModel("test"),
		llms.WithMaxTokens(100),
		llms.WithTemperature(0.5),
		llms.WithStopWords(stopWords),
		llms.WithSeed(123),
		llms.WithN(1),
		llms.WithTools(tools),
		llms.WithToolChoice("auto"),
		llms.WithMetadata(meta),
	)

	assert.Equal(t, "test", opts.Model)
	assert.Equal(t, 100, opts.MaxTokens)
	assert.Equal(t, 0.5, opts.Temperature)
	assert.Equal(t, stopWords, opts.StopWords)
	assert.Equal(t, 123, opts.Seed)
	assert.Equal(t, 1, opts.N)
	assert.Equal(t, tools, opts.Tools)
	assert.Equal(t, "function", opts.Tools[0].Type)
	assert.Equal(t, "test", opts.Tools[0].Function.Name)
	assert.Equal(t, "auto", opts.ToolChoice)
	assert.Equal(t, meta, opts.Metadata)

	replaced := llms.NewCallOptions(llms.WithModel("x"), llms.WithOptions(llms.CallOptions{MaxTokens: 7}))
	assert.Empty(t, replaced.Model)
	assert.Equal(t, 7, replaced.MaxTokens)
}

func TestProviderType(t *testing.T) {
	assert.Equal(t, llms.ProviderOpenAI, llms.ParseProviderType(""))
	assert.Equal(t, llms.ProviderOpenAI, llms.ParseProviderType("open_ai"))
	assert.Equal(t, llms.ProviderOpenAI, llms.ParseProviderType("OPENAI"))
	assert.Equal(t, llms.ProviderAzure, llms.ParseProviderType("AZURE_AD"))
	assert.Equal(t, llms.ProviderPerplexity, llms.ParseProviderType(" perplexity "))

	assert.True(t, llms.ProviderOpenAI.Supports(llms.CapabilityFunctionCalling))
	assert.True(t, llms.ProviderAzure.Supports(llms.CapabilityFunctionCalling))
	assert.False(t, llms.ProviderPerplexity.Supports(llms.CapabilityFunctionCalling))
	assert.False(t, llms.ProviderType("UNKNOWN").Supports(llms.CapabilityText))
}
