package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockExtractor implements Extractor on the Bedrock Converse API with a
// forced tool call.
type BedrockExtractor struct {
	api     bedrockConverseAPI
	modelID string
}

// NewBedrockExtractor creates a Bedrock-backed extractor.
func NewBedrockExtractor(api bedrockConverseAPI, modelID string) (*BedrockExtractor, error) {
	if api == nil {
		return nil, errors.New("extract: bedrock converse client is required")
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("extract: bedrock model id is required")
	}
	return &BedrockExtractor{api: api, modelID: modelID}, nil
}

func leadToolSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"customer_name": map[string]any{
				"type":        "string",
				"description": "Customer name if stated, else empty.",
			},
			"customer_phone": map[string]any{
				"type":        "string",
				"description": "Phone number from the message text, else empty.",
			},
			"location_address": map[string]any{
				"type":        "string",
				"description": "Physical address only; no timing or urgency words.",
			},
			"service_type": map[string]any{
				"type":        "string",
				"description": "Requested service category.",
				"enum":        ServiceTypeValues(),
			},
			"special_instructions": map[string]any{
				"type":        "string",
				"description": "Timing, urgency, and other non-address notes.",
			},
		},
		"required": []string{"location_address"},
	}
}

// Extract sends the message through Converse and decodes the tool-use block.
func (e *BedrockExtractor) Extract(ctx context.Context, rawText string) (Fields, error) {
	out, err := e.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(e.modelID),
		System: []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: systemInstruction},
		},
		Messages: []brtypes.Message{{
			Role: brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{
				&brtypes.ContentBlockMemberText{Value: userPrompt(rawText)},
			},
		}},
		ToolConfig: &brtypes.ToolConfiguration{
			Tools: []brtypes.Tool{
				&brtypes.ToolMemberToolSpec{Value: brtypes.ToolSpecification{
					Name:        aws.String(extractFunctionName),
					Description: aws.String("Record the structured lead fields extracted from one message."),
					InputSchema: &brtypes.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(leadToolSchema())},
				}},
			},
			ToolChoice: &brtypes.ToolChoiceMemberTool{
				Value: brtypes.SpecificToolChoice{Name: aws.String(extractFunctionName)},
			},
		},
		InferenceConfig: &brtypes.InferenceConfiguration{
			Temperature: aws.Float32(0),
			MaxTokens:   aws.Int32(1024),
		},
	})
	if err != nil {
		return Fields{}, fmt.Errorf("%w: bedrock call failed: %w", ErrUnavailable, err)
	}

	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return Fields{}, fmt.Errorf("%w: bedrock returned no message output", ErrUnavailable)
	}

	for _, block := range msg.Value.Content {
		toolUse, ok := block.(*brtypes.ContentBlockMemberToolUse)
		if !ok || aws.ToString(toolUse.Value.Name) != extractFunctionName {
			continue
		}
		var args map[string]any
		if err := toolUse.Value.Input.UnmarshalSmithyDocument(&args); err != nil {
			return Fields{}, fmt.Errorf("%w: bedrock tool input decode: %w", ErrUnavailable, err)
		}
		return fieldsFromArgs(args), nil
	}
	return Fields{}, fmt.Errorf("%w: bedrock response had no %s call", ErrUnavailable, extractFunctionName)
}
