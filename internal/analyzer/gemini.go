package analyzer

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	generativelanguage "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

// GeminiProvider calls the Generative Language API generateContent method.
type GeminiProvider struct {
	models *generativelanguage.ModelsService
	model  string
}

// NewGeminiProvider builds a client authenticated with apiKey. Extra
// options (endpoint, HTTP client) are appended after the key.
func NewGeminiProvider(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*GeminiProvider, error) {
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{models: svc.Models, model: model}, nil
}

func (g *GeminiProvider) Name() string { return "gemini" }

func (g *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	parts := []*generativelanguage.Part{{Text: req.Prompt}}
	if req.Attachment != nil {
		parts = append(parts, &generativelanguage.Part{
			InlineData: &generativelanguage.Blob{
				MimeType: req.Attachment.MimeType,
				Data:     base64.StdEncoding.EncodeToString(req.Attachment.Data),
			},
		})
	}

	resp, err := g.models.GenerateContent("models/"+g.model, &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{Role: "user", Parts: parts}},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var sb strings.Builder
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p != nil {
				sb.WriteString(p.Text)
			}
		}
		break
	}
	return sb.String(), nil
}
