package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/pitch-backend/internal/dto"
	"github.com/GregMSThompson/pitch-backend/internal/response"
)

type ChatService interface {
	Query(ctx context.Context, req dto.ChatQueryRequest) (dto.ChatQueryResponse, error)
	KnowledgeBases(ctx context.Context) ([]dto.KnowledgeBase, error)
	Models(ctx context.Context) ([]dto.ChatModel, error)
}

type chatHandlers struct {
	ResponseHandler response.ResponseHandler
	ChatSvc         ChatService
}

func NewChatHandlers(deps *Deps) *chatHandlers {
	return &chatHandlers{
		ResponseHandler: deps.ResponseHandler,
		ChatSvc:         deps.ChatSvc,
	}
}

func (h *chatHandlers) ChatRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/query", h.Query)
	r.Get("/knowledge-bases", h.KnowledgeBases)
	r.Get("/models", h.Models)
	return r
}

func (h *chatHandlers) Query(w http.ResponseWriter, r *http.Request) {
	var body dto.ChatQueryRequest
	if err := decodeBody(w, r, &body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.ChatSvc.Query(r.Context(), body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *chatHandlers) KnowledgeBases(w http.ResponseWriter, r *http.Request) {
	kbs, err := h.ChatSvc.KnowledgeBases(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, kbs)
}

func (h *chatHandlers) Models(w http.ResponseWriter, r *http.Request) {
	models, err := h.ChatSvc.Models(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, models)
}
