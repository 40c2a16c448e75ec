// Copyright 2026 The Chatbridge Authors
// SPDX-License-Identifier: MIT

package bridge

import (
	"bytes"
	"encoding/json"
)

const (
	// Endpoint is the chat-completion URL every request is sent to.
	Endpoint = "https://api.openai.com/v1/chat/completions"

	// Model is the model identifier placed in every request body.
	Model = "gpt-4o-mini"

	// SystemInstruction is sent as the system message and also prefixes the
	// user message content.
	SystemInstruction = "You are a helpful assistant. Answer concisely."

	// Temperature is the sampling temperature placed in every request body.
	Temperature = 0.7

	// userLabel joins the system instruction and the raw user input.
	userLabel = " \n\nUser: "
)

// Role labels a message within the conversation.
type Role string

// Conversation roles understood by the endpoint.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role/content pair.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the JSON body sent to the endpoint. Field order matches the
// wire order: model, messages, temperature.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// BuildPrompt returns the user message content for the given input. The input
// is appended verbatim; nothing is trimmed or escaped.
func BuildPrompt(userInput string) string {
	return SystemInstruction + userLabel + userInput
}

// NewChatRequest builds the request for a single invocation. The system
// instruction appears both as the system message and inside the user prompt.
func NewChatRequest(userInput string) ChatRequest {
	return ChatRequest{
		Model: Model,
		Messages: []Message{
			{Role: RoleSystem, Content: SystemInstruction},
			{Role: RoleUser, Content: BuildPrompt(userInput)},
		},
		Temperature: Temperature,
	}
}

// Marshal serializes the request without HTML escaping so that user text
// reaches the wire as typed.
func (r ChatRequest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
