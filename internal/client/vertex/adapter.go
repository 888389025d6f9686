package vertexclient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/GregMSThompson/pitch-backend/internal/dto"
	"github.com/GregMSThompson/pitch-backend/internal/errs"
	"github.com/GregMSThompson/pitch-backend/pkg/logger"
)

type Adapter struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

func NewAdapter(ctx context.Context, log *slog.Logger, projectID, region, model string) (*Adapter, error) {
	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		client: client,
		model:  model,
		log:    log,
	}, nil
}

func (a *Adapter) Close() error {
	err := a.client.Close()
	if err != nil && a.log != nil {
		a.log.Error("vertex adapter close failed", "error", err)
	}
	return err
}

// GenerateContent runs one single-turn request. Safety blocks come back as a
// non-retryable GenerationError; transport failures are returned as is.
func (a *Adapter) GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error) {
	var out dto.VertexGenerateResponse

	modelName := req.Model
	if modelName == "" {
		modelName = a.model
	}
	if modelName == "" {
		return out, errs.NewConfigError("VERTEXMODEL", "vertex model is required")
	}

	parts := buildParts(req)
	if len(parts) == 0 {
		return out, fmt.Errorf("vertex generate request has no content")
	}

	model := a.client.GenerativeModel(modelName)
	configureModel(model, req)

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return out, err
	}
	if err := blocked(resp); err != nil {
		return out, err
	}

	out.Raw = resp
	out.Text, out.Truncated = parseContentResponse(resp)
	out.Usage = usage(resp)
	logger.FromContext(ctx).Debug("vertex generation finished",
		"model", modelName,
		"prompt_tokens", out.Usage.PromptTokens,
		"output_tokens", out.Usage.OutputTokens,
		"truncated", out.Truncated)
	return out, nil
}

func configureModel(model *genai.GenerativeModel, req dto.VertexGenerateRequest) {
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}
	if req.MaxOutputTokens != nil {
		model.SetMaxOutputTokens(*req.MaxOutputTokens)
	}
	if req.ResponseMIMEType != "" {
		model.ResponseMIMEType = req.ResponseMIMEType
		model.ResponseSchema = toGenaiSchema(req.ResponseSchema)
	}
}

// buildParts puts the user text first, then the attachments in request order.
func buildParts(req dto.VertexGenerateRequest) []genai.Part {
	parts := make([]genai.Part, 0, len(req.Attachments)+1)
	if req.UserMessage != "" {
		parts = append(parts, genai.Text(req.UserMessage))
	}
	for _, blob := range req.Attachments {
		if len(blob.Data) == 0 {
			continue
		}
		parts = append(parts, genai.Blob{MIMEType: blob.MIMEType, Data: blob.Data})
	}
	return parts
}

func blocked(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return nil
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockedReasonUnspecified {
		return errs.NewGenerationError(errs.GenerationBlocked,
			"the brief was rejected by the model's content filter",
			fmt.Errorf("prompt blocked: %v", fb.BlockReason))
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return errs.NewGenerationError(errs.GenerationBlocked,
			"the generated deck was withheld by the model's content filter",
			fmt.Errorf("candidate finished with %v", resp.Candidates[0].FinishReason))
	}
	return nil
}

// parseContentResponse reads the first candidate only; the deck comes back
// as one JSON document split over text parts.
func parseContentResponse(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}

	candidate := resp.Candidates[0]
	truncated := candidate.FinishReason == genai.FinishReasonMaxTokens
	if candidate.Content == nil {
		return "", truncated
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), truncated
}

func usage(resp *genai.GenerateContentResponse) dto.VertexUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return dto.VertexUsage{}
	}
	return dto.VertexUsage{
		PromptTokens: resp.UsageMetadata.PromptTokenCount,
		OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
	}
}

func toGenaiSchema(schema *dto.VertexSchema) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        toGenaiType(schema.Type),
		Description: schema.Description,
		Enum:        schema.Enum,
		Required:    schema.Required,
		Nullable:    schema.Nullable,
		Items:       toGenaiSchema(schema.Items),
	}
	if len(schema.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(schema.Properties))
		for key, value := range schema.Properties {
			out.Properties[key] = toGenaiSchema(value)
		}
	}
	return out
}

var genaiTypes = map[string]genai.Type{
	"object":  genai.TypeObject,
	"array":   genai.TypeArray,
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
}

func toGenaiType(schemaType string) genai.Type {
	if t, ok := genaiTypes[schemaType]; ok {
		return t
	}
	return genai.TypeUnspecified
}
