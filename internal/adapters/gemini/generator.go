// Package gemini generates itineraries with Google's Gemini models in JSON mode.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"tripgenie/internal/adapters/observability"
	"tripgenie/internal/domain"
)

const DefaultModel = "gemini-2.0-flash"

var ErrEmptyResponse = errors.New("gemini: no response candidates")

// textModel turns a prompt into raw response text.
type textModel interface {
	generate(ctx context.Context, prompt string) (string, error)
}

type Generator struct {
	model  textModel
	closer func() error
}

func New(ctx context.Context, apiKey, modelName string) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	m := client.GenerativeModel(modelName)
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0.7)
	return &Generator{model: &genaiModel{m: m}, closer: client.Close}, nil
}

func (g *Generator) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer()
}

func (g *Generator) Generate(ctx context.Context, prefs domain.TravelPreferences, today string) (domain.Itinerary, error) {
	return g.run(ctx, planPrompt(prefs, today))
}

func (g *Generator) GenerateFromQuery(ctx context.Context, query, departure, today string) (domain.Itinerary, error) {
	return g.run(ctx, geniePrompt(query, departure, today))
}

func (g *Generator) run(ctx context.Context, prompt string) (domain.Itinerary, error) {
	raw, err := g.model.generate(ctx, prompt)
	if err != nil {
		return domain.Itinerary{}, err
	}
	return parseItinerary(raw)
}

func parseItinerary(raw string) (domain.Itinerary, error) {
	clean := cleanJSONString(raw)
	var it domain.Itinerary
	if err := json.Unmarshal([]byte(clean), &it); err != nil {
		return domain.Itinerary{}, fmt.Errorf("parse itinerary: %w", err)
	}
	if it.HTMLContent == "" && len(it.Days) == 0 {
		return domain.Itinerary{}, fmt.Errorf("parse itinerary: no days and no htmlContent")
	}
	return it, nil
}

// cleanJSONString removes markdown code fences if present.
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}

type genaiModel struct{ m *genai.GenerativeModel }

func (g *genaiModel) generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := g.m.GenerateContent(ctx, genai.Text(prompt))
	status := 200
	if err != nil {
		status = 0
	}
	observability.ObserveExternal("gemini", "generate", status, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String(), nil
}
