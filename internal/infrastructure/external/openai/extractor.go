// Package openai implements the extraction and assistant collaborators on
// top of the OpenAI chat completions API.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	sdk "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
	"github.com/hereandnowai/invoice-processor/internal/invoice"
)

// Vision requests are limited to the first pages to control token cost.
const maxVisionPages = 2

var fencePattern = regexp.MustCompile("(?s)^```(?:\\w+)?\\s*\\n?(.*?)\\n?\\s*```$")

// Extractor extracts structured invoice data from uploaded documents using
// the vision-capable chat API.
type Extractor struct {
	client *sdk.Client
	model  string
	logger *zap.Logger
}

// NewExtractor creates an extractor. An empty api key produces an extractor
// whose calls fail with a configuration error instead of panicking, so the
// rest of the application stays usable.
func NewExtractor(apiKey, model string, logger *zap.Logger) *Extractor {
	var client *sdk.Client
	if apiKey != "" {
		client = sdk.NewClient(apiKey)
	}
	return &Extractor{client: client, model: model, logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, file entity.FileRef) (*entity.ExtractedInvoiceData, error) {
	if e.client == nil {
		return nil, &invoice.ExtractionError{Message: "AI API Key is not configured for invoice extraction."}
	}

	live, ok := file.(*entity.LiveFile)
	if !ok {
		return nil, &invoice.ExtractionError{Message: "File content is not available for processing."}
	}

	pages, err := documentPages(live)
	if err != nil {
		e.logger.Error("document could not be rendered",
			zap.String("file_name", live.FileName), zap.Error(err))
		return nil, &invoice.ExtractionError{Message: "Failed to read the document", Err: err}
	}
	if len(pages) > maxVisionPages {
		pages = pages[:maxVisionPages]
	}

	parts := []sdk.ChatMessagePart{{
		Type: sdk.ChatMessagePartTypeText,
		Text: invoice.ExtractionPrompt(),
	}}
	for _, page := range pages {
		parts = append(parts, sdk.ChatMessagePart{
			Type: sdk.ChatMessagePartTypeImageURL,
			ImageURL: &sdk.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:%s;base64,%s", page.mimeType, base64.StdEncoding.EncodeToString(page.data)),
				Detail: sdk.ImageURLDetailHigh,
			},
		})
	}

	resp, err := e.client.CreateChatCompletion(ctx, sdk.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   4096,
		Temperature: 0.2,
		Messages: []sdk.ChatCompletionMessage{
			{Role: sdk.ChatMessageRoleUser, MultiContent: parts},
		},
		ResponseFormat: &sdk.ChatCompletionResponseFormat{
			Type: sdk.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Error("extraction request failed",
			zap.String("file_name", live.FileName), zap.Error(err))
		return nil, &invoice.ExtractionError{
			Message: "Failed to extract data. The AI model returned an unexpected response.",
			Err:     err,
		}
	}
	if len(resp.Choices) == 0 {
		return nil, &invoice.ExtractionError{
			Message: "Failed to extract data. The AI model returned an unexpected response.",
		}
	}

	data, err := parseExtractionResponse(resp.Choices[0].Message.Content)
	if err != nil {
		e.logger.Error("extraction response not parseable",
			zap.String("file_name", live.FileName), zap.Error(err))
		return nil, &invoice.ExtractionError{
			Message: "Failed to extract data. The AI model returned an unexpected response.",
			Err:     err,
		}
	}

	e.logger.Info("invoice data extracted",
		zap.String("file_name", live.FileName),
		zap.Int("pages", len(pages)),
		zap.Int("line_items", len(data.LineItems)))
	return data, nil
}

// parseExtractionResponse decodes the model output, tolerating a markdown
// code fence around the JSON object.
func parseExtractionResponse(content string) (*entity.ExtractedInvoiceData, error) {
	content = strings.TrimSpace(content)
	if m := fencePattern.FindStringSubmatch(content); m != nil {
		content = strings.TrimSpace(m[1])
	}

	var data entity.ExtractedInvoiceData
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}
	if data.LineItems == nil {
		data.LineItems = []entity.LineItem{}
	}
	invoice.EnsureLineItemIDs(&data)
	return &data, nil
}
