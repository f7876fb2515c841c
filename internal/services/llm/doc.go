// Package llm provides a client for OpenAI-compatible chat completion
// endpoints (llama.cpp server, Ollama, OpenRouter and similar).
//
// The extraction stage sends one prompt per note through Client.Complete and
// parses the returned text itself. Client.Available reports whether a base
// URL and model are configured; the API key is optional for local servers.
//
// # Retry Behaviour
//
// Requests are retried on HTTP 408/429/5xx, network timeouts and empty
// completions with exponential backoff (base 1s, max 10s, 3 attempts by
// default). A Retry-After header adds its delay before the next attempt.
// Context cancellation aborts retries immediately.
package llm
