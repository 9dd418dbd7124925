// Package llm provides a chat-completion client for OpenAI-compatible APIs
// (Moonshot, OpenRouter, and similar).
//
// This package is used by:
//   - Ingestion lane: refine extracted document text
//   - Analysis lane: produce the structured document analysis
//   - Conversation lane: answer questions and translate passages
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: POST {base_url}/chat/completions and return choices[0].message.content.
// Client.HealthCheck: verify API key and model availability.
//
// # Errors
//
// Complete performs a single attempt. Failures are classified through the
// services markers: StatusError matches ErrHTTPStatus (and ErrRateLimited for
// 429, carrying the suggested wait), call-scoped timeouts wrap ErrNetworkTimeout,
// undecodable or empty payloads wrap ErrMalformedResponse, and connection
// failures surface as TransportError. Callers own the retry policy.
package llm
