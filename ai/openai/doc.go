// Package openai implements the ai.Embedder interface over OpenAI-compatible
// embedding APIs (OpenAI, Ollama, LocalAI, vLLM) via langchaingo.
//
// Every provider call is bounded by the configured request timeout; a call
// that exceeds the budget fails and the error propagates to the caller.
package openai
