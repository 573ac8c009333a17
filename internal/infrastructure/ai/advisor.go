package ai

import (
	"context"

	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/ports"
)

// Advisor implements ports.SuggestionProvider on top of a ChatClient.
type Advisor struct {
	client ports.ChatClient
}

func NewAdvisor(client ports.ChatClient) *Advisor {
	return &Advisor{client: client}
}

// Suggest sends one stateless request and parses the reply. Transport, HTTP
// and body failures come back as *domain.AdvisorError; unparseable content
// is not an error.
func (a *Advisor) Suggest(ctx context.Context, request string, os domain.OSContext) (domain.AdvisorReply, error) {
	messages, err := BuildMessages(request, os)
	if err != nil {
		return domain.AdvisorReply{}, err
	}
	content, err := a.client.Complete(ctx, messages)
	if err != nil {
		return domain.AdvisorReply{}, err
	}
	return ParseReply(content), nil
}

var _ ports.SuggestionProvider = (*Advisor)(nil)
