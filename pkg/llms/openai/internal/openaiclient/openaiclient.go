package openaiclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpvolume", "openai")

const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultChatModel = openai.ChatModelGPT4oMini
	DefaultMaxTokens = 1000
)

// ErrEmptyResponse is returned when the OpenAI API returns an empty response.
var ErrEmptyResponse = errors.New("empty response")

type ProviderType string

const (
	ProviderOpenAI     ProviderType = "OPENAI"
	ProviderAzure      ProviderType = "AZURE"
	ProviderAzureAD    ProviderType = "AZURE_AD"
	ProviderPerplexity ProviderType = "PERPLEXITY"
)

// Doer performs a HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the OpenAI chat completions API.
type Client struct {
	Model    string
	Provider ProviderType

	baseURL    string
	apiVersion string
	api        openai.Client
}

// New returns a new OpenAI client.
func New(provider ProviderType, model string, token string, baseURL string, organization string,
	apiVersion string, httpClient Doer,
) (*Client, error) {
	if token == "" {
		return nil, errors.New("missing the OpenAI API key, set it in the OPENAI_API_KEY environment variable")
	}

	c := &Client{
		Model:      model,
		Provider:   provider,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiVersion: apiVersion,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}

	opts := []option.RequestOption{
		option.WithMaxRetries(0),
	}
	if IsAzure(provider) {
		if model == "" {
			return nil, errors.New("model is required for Azure deployments")
		}
		// azure example url:
		// /openai/deployments/{model}/chat/completions?api-version={api_version}
		opts = append(opts,
			option.WithBaseURL(c.baseURL+"/openai/deployments/"+model+"/"),
			option.WithQuery("api-version", apiVersion),
			option.WithHeader("api-key", token),
		)
	} else {
		opts = append(opts,
			option.WithBaseURL(c.baseURL+"/"),
			option.WithAPIKey(token),
		)
	}
	if organization != "" {
		opts = append(opts, option.WithOrganization(organization))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	c.api = openai.NewClient(opts...)
	return c, nil
}

// CreateChat creates chat request.
func (c *Client) CreateChat(ctx context.Context, r *openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	if r.Model == "" {
		if c.Model == "" {
			r.Model = DefaultChatModel
		} else {
			r.Model = c.Model
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, *r)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			logger.ContextKV(ctx, xlog.DEBUG,
				"status", "api_error",
				"model", r.Model,
				"code", apiErr.StatusCode,
				"err", apiErr.Message,
			)
			return nil, errors.Newf("openai: %s (status %d)", apiErr.Message, apiErr.StatusCode)
		}
		return nil, errors.Wrap(err, "openai: failed to create chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "chat_completion",
		"model", resp.Model,
		"choices", len(resp.Choices),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return resp, nil
}

func IsAzure(apiType ProviderType) bool {
	return apiType == ProviderAzure || apiType == ProviderAzureAD
}
