package openai

import (
	"context"

	sdk "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hereandnowai/invoice-processor/internal/assistant"
)

// Assistant answers application usage questions over the chat API, replaying
// the session history on every call.
type Assistant struct {
	client *sdk.Client
	model  string
	logger *zap.Logger
}

func NewAssistant(apiKey, model string, logger *zap.Logger) *Assistant {
	var client *sdk.Client
	if apiKey != "" {
		client = sdk.NewClient(apiKey)
	}
	return &Assistant{client: client, model: model, logger: logger}
}

func (a *Assistant) Respond(ctx context.Context, session *assistant.Session, message string) (string, error) {
	if a.client == nil {
		return "AI Assistant is offline: API Key not configured.", nil
	}

	messages := []sdk.ChatCompletionMessage{{
		Role:    sdk.ChatMessageRoleSystem,
		Content: assistantSystemPrompt(session.Language),
	}}
	for _, msg := range session.History {
		role := sdk.ChatMessageRoleUser
		if msg.Role == assistant.RoleAssistant {
			role = sdk.ChatMessageRoleAssistant
		}
		messages = append(messages, sdk.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, sdk.ChatCompletionMessage{Role: sdk.ChatMessageRoleUser, Content: message})

	resp, err := a.client.CreateChatCompletion(ctx, sdk.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
	})
	if err != nil {
		a.logger.Error("assistant request failed", zap.Error(err))
		return "", &assistant.Error{Message: "Sorry, I couldn't process your request.", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &assistant.Error{Message: "Sorry, I couldn't process your request."}
	}
	return resp.Choices[0].Message.Content, nil
}
