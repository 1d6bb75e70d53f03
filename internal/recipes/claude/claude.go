package claude

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/wasteless/internal/recipes"
)

// maxTokens bounds the response; five one-line recipes need far less.
const maxTokens = 512

type ClaudeGenerator struct {
	model  string
	client *anthropic.Client
}

func NewClaudeGenerator(apiKey, model string, opts ...anthropic.ClientOption) *ClaudeGenerator {
	return &ClaudeGenerator{
		model:  model,
		client: anthropic.NewClient(apiKey, opts...),
	}
}

func (g *ClaudeGenerator) Suggest(ctx context.Context, ingredients []string) ([]recipes.Recipe, error) {
	if len(ingredients) == 0 {
		return nil, nil
	}

	resp, err := g.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(g.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(recipes.BuildPrompt(ingredients)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call claude: %w", err)
	}

	var text string
	for _, c := range resp.Content {
		if c.Type == anthropic.MessagesContentTypeText {
			text = c.GetText()
			break
		}
	}

	return recipes.ParseResponse(text), nil
}
