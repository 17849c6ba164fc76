package provider

import "github.com/BiBoyang/AIvsAI/internal/session"

// Request is the body for OpenAI-compatible chat-completion APIs.
type Request struct {
	Model       string                `json:"model"`
	Messages    []session.ChatMessage `json:"messages"`
	Temperature float64               `json:"temperature"`
}

// Response is the subset of the chat-completion response this tool
// reads: the first choice's message content.
type Response struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
