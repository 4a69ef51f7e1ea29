// Package gemini implements the extraction collaborator on top of the
// Google Gemini API, as an alternative to the OpenAI backend.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
	"github.com/hereandnowai/invoice-processor/internal/invoice"
)

// Extractor extracts structured invoice data using a Gemini multimodal model.
type Extractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

func NewExtractor(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*Extractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	model.ResponseMIMEType = "application/json"

	return &Extractor{client: client, model: model, logger: logger}, nil
}

func (e *Extractor) Extract(ctx context.Context, file entity.FileRef) (*entity.ExtractedInvoiceData, error) {
	live, ok := file.(*entity.LiveFile)
	if !ok {
		return nil, &invoice.ExtractionError{Message: "File content is not available for processing."}
	}

	parts := []genai.Part{
		genai.Blob{MIMEType: live.ContentType, Data: live.Data},
		genai.Text(invoice.ExtractionPrompt()),
	}

	resp, err := e.model.GenerateContent(ctx, parts...)
	if err != nil {
		e.logger.Error("extraction request failed",
			zap.String("file_name", live.FileName), zap.Error(err))
		return nil, &invoice.ExtractionError{
			Message: "Failed to extract data. The AI model returned an unexpected response.",
			Err:     err,
		}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &invoice.ExtractionError{
			Message: "Failed to extract data. The AI model returned an unexpected response.",
		}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	text := strings.TrimSpace(sb.String())
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var data entity.ExtractedInvoiceData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		e.logger.Error("extraction response not parseable",
			zap.String("file_name", live.FileName), zap.Error(err))
		return nil, &invoice.ExtractionError{
			Message: "Failed to extract data. The AI model returned an unexpected response.",
			Err:     err,
		}
	}
	if data.LineItems == nil {
		data.LineItems = []entity.LineItem{}
	}
	invoice.EnsureLineItemIDs(&data)

	e.logger.Info("invoice data extracted",
		zap.String("file_name", live.FileName),
		zap.Int("line_items", len(data.LineItems)))
	return &data, nil
}

// Close releases the underlying API client.
func (e *Extractor) Close() error {
	return e.client.Close()
}
