package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiExtractor implements Extractor using Google's Gemini API with forced
// function calling.
type GeminiExtractor struct {
	client  *genai.Client
	modelID string
}

// NewGeminiExtractor creates a new Gemini-backed extractor.
func NewGeminiExtractor(ctx context.Context, apiKey, modelID string) (*GeminiExtractor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("extract: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("extract: failed to create gemini client: %w", err)
	}

	return &GeminiExtractor{
		client:  client,
		modelID: modelID,
	}, nil
}

func leadFunctionDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        extractFunctionName,
		Description: "Record the structured lead fields extracted from one message.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"customer_name": {
					Type:        genai.TypeString,
					Description: "Customer name if stated, else empty.",
				},
				"customer_phone": {
					Type:        genai.TypeString,
					Description: "Phone number from the message text, else empty.",
				},
				"location_address": {
					Type:        genai.TypeString,
					Description: "Physical address only; no timing or urgency words.",
				},
				"service_type": {
					Type:        genai.TypeString,
					Description: "Requested service category.",
					Enum:        ServiceTypeValues(),
				},
				"special_instructions": {
					Type:        genai.TypeString,
					Description: "Timing, urgency, and other non-address notes.",
				},
			},
			Required: []string{"location_address"},
		},
	}
}

// Extract sends the message to Gemini and decodes the forced function call.
func (e *GeminiExtractor) Extract(ctx context.Context, rawText string) (Fields, error) {
	model := e.client.GenerativeModel(e.modelID)
	model.SetTemperature(0)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemInstruction))
	model.Tools = []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{leadFunctionDeclaration()}}}
	model.ToolConfig = &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode:                 genai.FunctionCallingAny,
			AllowedFunctionNames: []string{extractFunctionName},
		},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt(rawText)))
	if err != nil {
		return Fields{}, fmt.Errorf("%w: gemini call failed: %w", ErrUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Fields{}, fmt.Errorf("%w: gemini returned no candidates", ErrUnavailable)
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		call, ok := part.(genai.FunctionCall)
		if !ok || call.Name != extractFunctionName {
			continue
		}
		return fieldsFromArgs(call.Args), nil
	}
	return Fields{}, fmt.Errorf("%w: gemini response had no %s call", ErrUnavailable, extractFunctionName)
}

// Close releases resources held by the Gemini client.
func (e *GeminiExtractor) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
