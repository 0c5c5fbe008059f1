package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiGenerator is the default ResponseGenerator, backed by the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		model:  client.GenerativeModel("gemini-1.5-flash"),
	}, nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

func (g *GeminiGenerator) Generate(ctx context.Context, message, persona, language string, history []string) (string, error) {
	prompt := buildPrompt(message, persona, language, history)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text parts")
	}

	return b.String(), nil
}

func buildPrompt(message, persona, language string, history []string) string {
	languageDesc := "English"
	switch language {
	case "hinglish":
		languageDesc = "Hinglish (a mix of Hindi and English, commonly used in India)"
	case "hi":
		languageDesc = "Hindi"
	}

	var b strings.Builder
	b.WriteString("You are a compassionate mental health companion for Indian youth.\n")
	b.WriteString("Respond with empathy, cultural sensitivity, and simple, practical guidance.\n\n")
	b.WriteString("Always:\n")
	b.WriteString("- Acknowledge the user's feelings in a warm, understanding way.\n")
	b.WriteString("- Give direct, step-by-step suggestions the user can try immediately (breathing exercises, journaling, calling a friend, a short walk).\n")
	b.WriteString("- Encourage small, doable actions that bring comfort or relief.\n")
	b.WriteString("- If the user shares ongoing sadness or hopelessness, gently recommend reaching out to a trusted friend, family member, or professional.\n\n")
	b.WriteString("Tone: warm, supportive, non-judgmental. Keep responses short, clear, and directly helpful.\n")
	b.WriteString(fmt.Sprintf("Respond in %s.\n", languageDesc))
	b.WriteString(fmt.Sprintf("The user persona is: %s.\n", persona))

	if len(history) > 0 {
		b.WriteString("\nConversation history:\n")
		b.WriteString(strings.Join(history, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\nUser: ")
	b.WriteString(message)
	return b.String()
}
