package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/aish-sh/aish/core/config"
)

const (
	kindGenerate = "generate"
	kindError    = "error"
)

// commandSchema constrains GenerateCommand responses to the structured
// CommandResponse shape.
var commandSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"command": {
			Type:        genai.TypeString,
			Description: "The shell command to execute",
		},
		"explanation": {
			Type:        genai.TypeString,
			Description: "Brief explanation of what the command does",
		},
		"detailed_explanation": {
			Type:        genai.TypeString,
			Description: "Detailed explanation including command options, examples, and common use cases",
		},
	},
	Required:         []string{"command", "explanation", "detailed_explanation"},
	PropertyOrdering: []string{"command", "explanation", "detailed_explanation"},
}

// Gemini is a Client backed by the Gemini API with a read-through response
// cache.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float64
	maxTokens   int32
	cache       *Cache

	lastCacheHit bool
}

var _ Client = (*Gemini)(nil)

// NewGemini creates a Gemini-backed assistant. apiKey must be non-empty.
func NewGemini(ctx context.Context, apiKey string, cfg *config.Configuration, cache *Cache) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &Gemini{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
		cache:       cache,
	}, nil
}

// GenerateCommand implements Client.GenerateCommand.
func (g *Gemini) GenerateCommand(ctx context.Context, query string) (*CommandResponse, error) {
	var cached CommandResponse
	if g.cache.Get(kindGenerate, query, &cached) {
		g.lastCacheHit = true
		return &cached, nil
	}
	g.lastCacheHit = false

	prompt := fmt.Sprintf(`Convert this natural language query to a shell command and provide two levels of explanation:
1. A brief explanation of what the command does
2. A detailed explanation including:
   - All important command options and flags used
   - What each part of the command does
   - Common variations and use cases
   - Any relevant examples
   - Important notes or warnings

Query: %s`, query)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(g.temperature)),
			TopP:             genai.Ptr(float32(0.95)),
			TopK:             genai.Ptr(float32(64)),
			MaxOutputTokens:  g.maxTokens,
			ResponseMIMEType: "application/json",
			ResponseSchema:   commandSchema,
		})
	if err != nil {
		return nil, err
	}

	out := parseCommandResponse(resp.Text(), query)
	g.cache.Put(kindGenerate, query, out)
	return out, nil
}

// parseCommandResponse decodes the model's JSON answer, tolerating code
// fences and falling back to a first-line-is-the-command reading for
// unstructured text.
func parseCommandResponse(text, query string) *CommandResponse {
	jsonStr := text
	if idx := strings.Index(jsonStr, "```json"); idx >= 0 {
		jsonStr = jsonStr[idx+len("```json"):]
		if end := strings.Index(jsonStr, "```"); end >= 0 {
			jsonStr = jsonStr[:end]
		}
	} else if strings.Contains(jsonStr, "```") {
		parts := strings.SplitN(jsonStr, "```", 3)
		if len(parts) >= 2 {
			jsonStr = parts[1]
		}
	}
	jsonStr = strings.TrimSpace(jsonStr)

	var out CommandResponse
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		lines := strings.SplitN(strings.TrimSpace(text), "\n", 2)
		out.Command = strings.TrimSpace(lines[0])
		if len(lines) > 1 {
			out.Explanation = strings.TrimSpace(lines[1])
		}
	}

	if out.Command == "" {
		out.Command = fmt.Sprintf("echo 'Could not generate command for: %s'", query)
	}
	if out.Explanation == "" {
		out.Explanation = "No explanation available"
	}
	if out.DetailedExplanation == "" {
		out.DetailedExplanation = "No detailed explanation available"
	}
	return &out
}

// ExplainError implements Client.ExplainError.
func (g *Gemini) ExplainError(ctx context.Context, errorMessage string) (string, error) {
	var cached string
	if g.cache.Get(kindError, errorMessage, &cached) {
		g.lastCacheHit = true
		return cached, nil
	}
	g.lastCacheHit = false

	prompt := "Explain this shell error in two parts:\n" +
		"1. Problem (one line)\n" +
		"2. Solution (3-4 steps, use bullet points with - not numbers)\n" +
		"DO NOT USE NUMBERED LISTS IN THE SOLUTION\n\n" +
		"Error: " + errorMessage

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(float32(g.temperature)),
			MaxOutputTokens: g.maxTokens,
		})
	if err != nil {
		return "", err
	}

	result := strings.TrimSpace(resp.Text())
	g.cache.Put(kindError, errorMessage, result)
	return result, nil
}

// CacheHit reports whether the most recent call was answered from the
// cache, for session logging.
func (g *Gemini) CacheHit() bool {
	return g.lastCacheHit
}

// ClearCache drops all cached answers.
func (g *Gemini) ClearCache() {
	g.cache.Clear()
}
