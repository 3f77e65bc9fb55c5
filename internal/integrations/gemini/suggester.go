package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Suggester proposes labels from the rule set vocabulary for issues the
// regex rules did not match. Suggestions are advisory; the pipeline
// never applies them automatically.
type Suggester struct {
	client *genai.Client
	model  string
	retry  RetryConfig
}

// NewSuggester creates a new Gemini-backed suggester.
func NewSuggester(apiKey, model string) (*Suggester, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = "gemini-2.0-flash-lite" // Fast and cost-effective
	}

	return &Suggester{
		client: client,
		model:  model,
		retry:  DefaultRetryConfig(),
	}, nil
}

// Close closes the Gemini client.
func (s *Suggester) Close() error {
	return s.client.Close()
}

// SuggestLabels asks the model to pick labels for the issue from the
// given vocabulary. Labels outside the vocabulary are discarded.
func (s *Suggester) SuggestLabels(ctx context.Context, title, body string, vocabulary []string) ([]string, error) {
	if len(vocabulary) == 0 {
		return nil, nil
	}

	prompt := buildSuggestPrompt(title, body, vocabulary)

	model := s.client.GenerativeModel(s.model)
	model.SetTemperature(0.2) // Lower temperature for more consistent results
	// Request JSON response for structured parsing
	model.ResponseMIMEType = "application/json"

	resp, err := withRetry(ctx, s.retry, "suggest labels", func() (*genai.GenerateContentResponse, error) {
		return model.GenerateContent(ctx, genai.Text(prompt))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to suggest labels: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from LLM")
	}

	// Extract text from response
	var responseText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText += string(txt)
		}
	}

	return parseSuggestResponse(responseText, vocabulary)
}

func buildSuggestPrompt(title, body string, vocabulary []string) string {
	var sb strings.Builder
	sb.WriteString("You triage issue reports for the glideinwms project.\n")
	sb.WriteString("Pick the labels that apply to the issue below, choosing ONLY from this list:\n")
	for _, name := range vocabulary {
		sb.WriteString("- " + name + "\n")
	}
	sb.WriteString("\nRespond with JSON of the form {\"labels\": [\"name\", ...]}. ")
	sb.WriteString("Use an empty list if nothing applies.\n\n")
	fmt.Fprintf(&sb, "Title: %s\n\nBody:\n%s\n", title, body)
	return sb.String()
}

// parseSuggestResponse decodes the model's JSON answer and filters it
// to the known vocabulary; the model occasionally invents names.
func parseSuggestResponse(responseText string, vocabulary []string) ([]string, error) {
	var parsed struct {
		Labels []string `json:"labels"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(responseText)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	known := make(map[string]string, len(vocabulary))
	for _, name := range vocabulary {
		known[strings.ToLower(name)] = name
	}

	var labels []string
	seen := make(map[string]bool)
	for _, l := range parsed.Labels {
		name, ok := known[strings.ToLower(strings.TrimSpace(l))]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		labels = append(labels, name)
	}
	return labels, nil
}
