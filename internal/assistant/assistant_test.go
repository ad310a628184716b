package assistant

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallapi/internal/model"
)

func TestToHistory(t *testing.T) {
	h := toHistory([]model.ChatMessage{
		{Role: model.ChatRoleAssistant, Content: "Hoş geldiniz"},
		{Role: model.ChatRoleUser, Content: "Kargo ne kadar?"},
		{Role: model.ChatRoleAssistant, Content: "2000 TL üzeri ücretsiz."},
	})

	require.Len(t, h, 2)
	assert.Equal(t, "user", h[0].Role)
	assert.Equal(t, genai.Text("Kargo ne kadar?"), h[0].Parts[0])
	assert.Equal(t, "model", h[1].Role)
}

func TestResponseText(t *testing.T) {
	_, err := responseText(nil)
	assert.ErrorIs(t, err, ErrNoContent)

	_, err = responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}})
	assert.ErrorIs(t, err, ErrNoContent)

	text, err := responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text(" Merhaba, "), genai.Text("nasıl yardımcı olabilirim? ")}},
	}}})
	require.NoError(t, err)
	assert.Equal(t, "Merhaba, nasıl yardımcı olabilirim?", text)
}
