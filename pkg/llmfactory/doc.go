// Package llmfactory creates the chat models from the provider configuration,
// supporting OpenAI-compatible providers (OpenAI, Azure, Perplexity) and model selection by name.
package llmfactory
