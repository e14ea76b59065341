// Package prompt renders the chat prompt sent to the model.
//
// A Template is a system instruction followed by the user's question. The
// system instruction may reference {context}, which receives the retrieved
// chunks; the human message is always {input}. Templates use f-string
// syntax, so literal braces in a custom instruction must be doubled.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleSystem Role = "system"
	RoleHuman  Role = "human"
	RoleAI     Role = "ai"
)

// Template variables.
const (
	VarContext = "context"
	VarInput   = "input"
)

// DefaultSystemPrompt is used when no instruction is configured.
const DefaultSystemPrompt = "You are a medical assistant for question-answering tasks. " +
	"Use the following pieces of retrieved context to answer the question. " +
	"If you don't know the answer, say that you don't know. " +
	"Use three sentences maximum and keep the answer concise.\n\n" +
	"{context}"

const humanTemplate = "{input}"

// Message is one entry of a rendered prompt.
type Message struct {
	Role    Role
	Content string
}

// Template is a compiled system + human prompt.
type Template struct {
	system string
	chat   prompts.ChatPromptTemplate
}

// ErrNoContextSlot is returned for a system instruction that never places
// {context}, which would drop the retrieved chunks.
var ErrNoContextSlot = errors.New("system prompt must contain {context}")

// contextMarker is rendered into {context} to check the slot is used.
const contextMarker = "\x00context\x00"

// New compiles a template around the given system instruction. An empty
// instruction selects DefaultSystemPrompt. The instruction is rendered once
// so bad f-string syntax or a missing {context} slot fails here rather than
// on every question.
func New(systemPrompt string) (*Template, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}

	system := prompts.SystemMessagePromptTemplate{
		Prompt: prompts.PromptTemplate{
			Template:       systemPrompt,
			InputVariables: []string{VarContext},
			TemplateFormat: prompts.TemplateFormatFString,
		},
	}
	human := prompts.HumanMessagePromptTemplate{
		Prompt: prompts.PromptTemplate{
			Template:       humanTemplate,
			InputVariables: []string{VarInput},
			TemplateFormat: prompts.TemplateFormatFString,
		},
	}

	t := &Template{
		system: systemPrompt,
		chat:   prompts.NewChatPromptTemplate([]prompts.MessageFormatter{system, human}),
	}

	messages, err := t.Render(contextMarker, "")
	if err != nil {
		return nil, fmt.Errorf("invalid system prompt: %w", err)
	}
	if !strings.Contains(messages[0].Content, contextMarker) {
		return nil, ErrNoContextSlot
	}
	return t, nil
}

// MustNew is like New but panics on error. It is meant for instructions
// known at compile time.
func MustNew(systemPrompt string) *Template {
	t, err := New(systemPrompt)
	if err != nil {
		panic(err)
	}
	return t
}

// SystemPrompt returns the raw system instruction.
func (t *Template) SystemPrompt() string {
	return t.system
}

// Render fills the template. The result is ordered: system first, question last.
func (t *Template) Render(context, input string) ([]Message, error) {
	chatMessages, err := t.chat.FormatMessages(map[string]any{
		VarContext: context,
		VarInput:   input,
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	messages := make([]Message, 0, len(chatMessages))
	for _, m := range chatMessages {
		role, err := roleOf(m.GetType())
		if err != nil {
			return nil, err
		}
		messages = append(messages, Message{Role: role, Content: m.GetContent()})
	}
	return messages, nil
}

// ToLLM converts messages into the content list llms.Model expects.
func ToLLM(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		out = append(out, llms.TextParts(chatType(m.Role), m.Content))
	}
	return out
}

// JoinContext stuffs chunk texts into a single context string.
func JoinContext(contents []string) string {
	return strings.Join(contents, "\n\n")
}

func roleOf(t llms.ChatMessageType) (Role, error) {
	switch t {
	case llms.ChatMessageTypeSystem:
		return RoleSystem, nil
	case llms.ChatMessageTypeHuman:
		return RoleHuman, nil
	case llms.ChatMessageTypeAI:
		return RoleAI, nil
	default:
		return "", fmt.Errorf("%w: %s", llms.ErrUnexpectedChatMessageType, t)
	}
}

func chatType(r Role) llms.ChatMessageType {
	switch r {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAI:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
