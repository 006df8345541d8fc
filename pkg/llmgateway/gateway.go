// Package llmgateway is the single blocking entry point every component uses
// to talk to a large language model provider. It owns prompt transport and
// tolerant JSON extraction; it never retries — callers (pkg/query, pkg/artifact)
// own their own retry policy.
package llmgateway

import (
	"context"
	"time"

	"github.com/tarsy-labs/chartpilot/pkg/metrics"
)

// Request is the single request contract shared by every caller.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int

	// RequiredKeys, when non-empty, are checked against the parsed JSON
	// object's top-level keys; missing keys are reported in Response.Missing
	// rather than failing the call outright, falling to per-field defaults.
	RequiredKeys []string
}

// Response is what a Gateway call returns on success.
type Response struct {
	// RawText is the model's full, un-parsed reply.
	RawText string

	// Parsed is the extracted JSON object, or nil if extraction failed or
	// was never attempted (callers that want plain text can ignore it).
	Parsed map[string]any

	// ParseError holds a structured description of why JSON extraction
	// failed, when Parsed is nil but a JSON object was expected.
	ParseError string

	// Missing lists entries from Request.RequiredKeys absent from Parsed.
	Missing []string
}

// Gateway is the interface every provider backend implements.
type Gateway interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// instrumented wraps a Gateway so every Complete call records its duration
// and outcome to pkg/metrics under the given provider label.
type instrumented struct {
	backend  Gateway
	provider string
}

// Instrumented wraps backend so its calls are observed in
// metrics.LLMCallDuration under provider.
func Instrumented(backend Gateway, provider string) Gateway {
	return &instrumented{backend: backend, provider: provider}
}

func (i *instrumented) Complete(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := i.backend.Complete(ctx, req)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.LLMCallDuration.WithLabelValues(i.provider, outcome).Observe(time.Since(start).Seconds())

	return resp, err
}

// WithJSONExtraction wraps a raw-text completion function with the tolerant
// JSON extraction and required-key validation shared by every backend, so
// each backend only needs to implement the provider call itself.
func completeWithExtraction(rawText string, req Request) *Response {
	resp := &Response{RawText: rawText}

	parsed, parseErr := ExtractJSON(rawText)
	if parseErr != "" {
		resp.ParseError = parseErr
		return resp
	}
	resp.Parsed = parsed

	for _, key := range req.RequiredKeys {
		if _, ok := parsed[key]; !ok {
			resp.Missing = append(resp.Missing, key)
		}
	}
	return resp
}
