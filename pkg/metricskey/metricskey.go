package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsLLMCalls is base for counter metric for total calls made to LLM
	StatsLLMCalls = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_calls",
		Help:         "stats_llm_calls provides total calls made to LLM",
		RequiredTags: []string{"model"},
	}

	StatsLLMMessagesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_messages_sent",
		Help:         "stats_llm_messages_sent provides total messages sent to LLM",
		RequiredTags: []string{"model"},
	}

	StatsLLMTotalTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_total_tokens",
		Help:         "stats_llm_total_tokens provides total tokens sent and received from LLM",
		RequiredTags: []string{"model"},
	}

	StatsQueriesSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_queries_succeeded",
		Help:         "stats_queries_succeeded provides total user queries succeeded",
		RequiredTags: []string{"model"},
	}

	StatsQueriesFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_queries_failed",
		Help:         "stats_queries_failed provides total user queries failed",
		RequiredTags: []string{"model"},
	}

	StatsDispatchSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_dispatch_succeeded",
		Help:         "stats_dispatch_succeeded provides total tool dispatch attempts accepted by a session",
		RequiredTags: []string{"session", "tool"},
	}

	StatsDispatchFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_dispatch_failed",
		Help:         "stats_dispatch_failed provides total tool dispatch attempts rejected by a session",
		RequiredTags: []string{"session", "tool"},
	}

	StatsDispatchDropped = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_dispatch_dropped",
		Help:         "stats_dispatch_dropped provides total tool calls no session accepted",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls not found",
		RequiredTags: []string{"tool"},
	}

	StatsVolumeSet = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_volume_set",
		Help:         "stats_volume_set provides total set_volume requests by outcome",
		RequiredTags: []string{"outcome"},
	}
)

// Perf
var (
	PerfQuery = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_query",
		Help:         "perf_query provides duration of user query processing",
		RequiredTags: []string{"model"},
	}

	PerfLLMCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_llm_call",
		Help:         "perf_llm_call provides duration of LLM call",
		RequiredTags: []string{"model"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfLLMCall,
	&PerfQuery,
	&PerfToolCall,
	&StatsDispatchDropped,
	&StatsDispatchFailed,
	&StatsDispatchSucceeded,
	&StatsLLMCalls,
	&StatsLLMMessagesSent,
	&StatsLLMTotalTokens,
	&StatsQueriesFailed,
	&StatsQueriesSucceeded,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
	&StatsVolumeSet,
}
