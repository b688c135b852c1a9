// Package provider wraps the external language-model services behind a
// single request-response contract.
package provider

import (
	"context"
	"errors"
	"time"
)

// ErrServiceUnavailable wraps any provider transport or API failure.
// Callers substitute a character-specific fallback reply when they see it.
var ErrServiceUnavailable = errors.New("language model service unavailable")

// Provider is an opaque text-generation service.
type Provider interface {
	ID() string
	Name() string
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest is one completion request. System carries the full
// layered context; UserMessage is echoed as the conversation turn.
type GenerateRequest struct {
	Model       string  `json:"model"`
	System      string  `json:"system"`
	UserMessage string  `json:"user_message"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// GenerateResponse is the provider's reply.
type GenerateResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Config holds configuration for a provider instance.
type Config struct {
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	Name     string        `json:"name"`
	Endpoint string        `json:"endpoint"`
	APIKey   string        `json:"api_key"`
	Model    string        `json:"model"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}
