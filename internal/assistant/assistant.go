// Package assistant generates storefront chatbot replies.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"wallapi/internal/i18n"
	"wallapi/internal/model"
)

// ErrNoContent is returned when the model answers without any text.
var ErrNoContent = errors.New("assistant returned no content")

// Responder produces a reply to message given earlier turns, oldest first.
type Responder interface {
	Reply(ctx context.Context, lang string, history []model.ChatMessage, message string) (string, error)
}

// Gemini answers with a Google Gemini model.
type Gemini struct {
	client    *genai.Client
	modelName string
	catalog   *i18n.Catalog
}

func NewGemini(ctx context.Context, apiKey, modelName string, catalog *i18n.Catalog) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, modelName: modelName, catalog: catalog}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Reply(ctx context.Context, lang string, history []model.ChatMessage, message string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(g.catalog.Localizer(lang).T("chatbot.system_prompt"))},
	}
	m.SetTemperature(0.4)
	m.SetMaxOutputTokens(512)

	cs := m.StartChat()
	cs.History = toHistory(history)

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

// toHistory maps stored messages to Gemini turns. Gemini expects the
// conversation to start with a user turn, so leading assistant turns are dropped.
func toHistory(msgs []model.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		role := "user"
		if msg.Role == model.ChatRoleAssistant {
			if len(out) == 0 {
				continue
			}
			role = "model"
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}
	return out
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoContent
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}
