package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	openwebuiclient "github.com/GregMSThompson/pitch-backend/internal/client/openwebui"
	"github.com/GregMSThompson/pitch-backend/internal/dto"
	"github.com/GregMSThompson/pitch-backend/internal/errs"
	"github.com/GregMSThompson/pitch-backend/internal/metrics"
	"github.com/GregMSThompson/pitch-backend/pkg/helpers"
	"github.com/GregMSThompson/pitch-backend/pkg/logger"
)

const defaultChatTemperature = 0.6

type knowledgeClient interface {
	Complete(ctx context.Context, req openwebuiclient.CompletionRequest) (dto.ChatQueryResponse, error)
	KnowledgeBases(ctx context.Context) ([]dto.KnowledgeBase, error)
	Models(ctx context.Context) ([]dto.ChatModel, error)
}

type chatService struct {
	client       knowledgeClient
	defaultModel string
	clockNow     func() time.Time
}

func NewChatService(client knowledgeClient, defaultModel string) *chatService {
	return &chatService{client: client, defaultModel: defaultModel, clockNow: time.Now}
}

func (s *chatService) Query(ctx context.Context, req dto.ChatQueryRequest) (dto.ChatQueryResponse, error) {
	if strings.TrimSpace(req.Question) == "" {
		return dto.ChatQueryResponse{}, errs.NewValidationError("question is required")
	}
	mode := req.Mode
	if mode == "" {
		mode = dto.ChatModeKnowledge
	}
	if !mode.Valid() {
		return dto.ChatQueryResponse{}, errs.NewValidationError(fmt.Sprintf("unknown search mode %q", req.Mode))
	}
	temperature := helpers.ValueOr(req.Temperature, defaultChatTemperature)
	if temperature < 0 || temperature > 2 {
		return dto.ChatQueryResponse{}, errs.NewValidationError("temperature must be between 0 and 2")
	}
	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	completion := openwebuiclient.CompletionRequest{
		Model:       model,
		Question:    req.Question,
		Temperature: temperature,
		WebSearch:   mode.UsesWeb(),
	}
	if mode.UsesKnowledge() {
		completion.CollectionID = req.KnowledgeBaseID
	}

	start := s.clockNow()
	resp, err := s.client.Complete(ctx, completion)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordChat(string(mode), outcome, s.clockNow().Sub(start))
	if err != nil {
		return dto.ChatQueryResponse{}, err
	}

	if resp.Sources == nil {
		resp.Sources = []dto.ChatSource{}
	}
	logger.FromContext(ctx).Info("chat query completed", "mode", mode, "model", model, "sources", len(resp.Sources))
	return resp, nil
}

func (s *chatService) KnowledgeBases(ctx context.Context) ([]dto.KnowledgeBase, error) {
	return s.client.KnowledgeBases(ctx)
}

func (s *chatService) Models(ctx context.Context) ([]dto.ChatModel, error) {
	return s.client.Models(ctx)
}
