//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

package model

// Role represents the role of a message author.
type Role string

// Role constants for message authors.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is one of the defined constants.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message represents a single message in a conversation.
type Message struct {
	// Role is the role of the message author.
	Role Role `json:"role"`
	// Content is the message content.
	Content string `json:"content,omitempty"`
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{
		Role:    RoleSystem,
		Content: content,
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{
		Role:    RoleUser,
		Content: content,
	}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{
		Role:    RoleAssistant,
		Content: content,
	}
}

// GenerationConfig contains configuration for text generation.
type GenerationConfig struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 to 2.0).
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP controls nucleus sampling (0.0 to 1.0).
	TopP *float64 `json:"top_p,omitempty"`
}

// StructuredOutputType identifies the structured output mechanism.
type StructuredOutputType string

// Structured output type constants.
const (
	// StructuredOutputJSONSchema requests native JSON-schema constrained output.
	StructuredOutputJSONSchema StructuredOutputType = "json_schema"
)

// JSONSchema describes a JSON schema for structured output.
type JSONSchema struct {
	// Name is the schema name reported to the provider.
	Name string `json:"name"`
	// Description is an optional schema description.
	Description string `json:"description,omitempty"`
	// Strict requests strict schema adherence from the provider.
	Strict bool `json:"strict"`
	// Schema is the JSON schema definition.
	Schema map[string]any `json:"schema"`
}

// StructuredOutput requests machine-parseable output from the model.
type StructuredOutput struct {
	// Type is the structured output mechanism to use.
	Type StructuredOutputType `json:"type"`
	// JSONSchema is the schema definition for json_schema outputs.
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// Request is a chat completion request.
type Request struct {
	// Messages is the conversation history.
	Messages []Message `json:"messages"`

	// GenerationConfig contains the generation parameters.
	GenerationConfig `json:",inline"`

	// StructuredOutput constrains the response format when set.
	StructuredOutput *StructuredOutput `json:"structured_output,omitempty"`
}
