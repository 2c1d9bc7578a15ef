// Package reasoning packages conversation context into requests to the
// external reasoning service and parses its structured replies.
package reasoning

import (
	"context"

	"vendebot/internal/domain"
)

// Model is the narrow surface of the external reasoning service: a system
// context plus the bounded history, answering free text with trailer lines.
type Model interface {
	Generate(ctx context.Context, system string, history []domain.ChatMessage) (string, error)
}

// Adapter composes prompts for a business and parses model replies.
type Adapter struct {
	model Model
}

// New builds an Adapter over the given model.
func New(model Model) *Adapter {
	return &Adapter{model: model}
}

// Ask sends the composed context and the conversation history to the model
// and parses the reply. The raw text is returned even when every trailer
// field failed to parse; trailer failures never surface to the customer.
func (a *Adapter) Ask(ctx context.Context, pc PromptContext, history []domain.ChatMessage) (Reply, error) {
	raw, err := a.model.Generate(ctx, pc.System(), history)
	if err != nil {
		return Reply{}, err
	}
	return ParseReply(raw), nil
}
