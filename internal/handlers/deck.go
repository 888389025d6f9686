package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/pitch-backend/internal/deck"
	"github.com/GregMSThompson/pitch-backend/internal/dto"
	"github.com/GregMSThompson/pitch-backend/internal/export"
	"github.com/GregMSThompson/pitch-backend/internal/middleware"
	"github.com/GregMSThompson/pitch-backend/internal/response"
)

type DeckService interface {
	Generate(ctx context.Context, uid string, req dto.GenerateDeckRequest) (dto.DeckResponse, error)
	Get(ctx context.Context, uid, deckID string) (dto.DeckResponse, error)
	Current(ctx context.Context, uid string) (dto.DeckResponse, error)
	Delete(ctx context.Context, uid, deckID string) error
	Brief(ctx context.Context, uid, deckID string) (string, error)
	Present(ctx context.Context, uid, deckID, locale string) ([]byte, error)
	ExportStored(ctx context.Context, uid, deckID, fileName, locale string) (*export.File, error)
	Render(ctx context.Context, req dto.DeckRenderRequest) ([]byte, error)
	Export(ctx context.Context, req dto.DeckRenderRequest) (*export.File, error)
	Validate(d deck.Deck) dto.ValidateDeckResponse
}

type deckHandlers struct {
	ResponseHandler response.ResponseHandler
	DeckSvc         DeckService
}

func NewDeckHandlers(deps *Deps) *deckHandlers {
	return &deckHandlers{
		ResponseHandler: deps.ResponseHandler,
		DeckSvc:         deps.DeckSvc,
	}
}

func (h *deckHandlers) DeckRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Generate)
	r.Get("/current", h.Current)
	r.Post("/render", h.Render)
	r.Post("/export", h.Export)
	r.Post("/validate", h.Validate)
	r.Route("/{deckId}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Get("/brief", h.Brief)
		r.Get("/presentation", h.Present)
		r.Get("/export", h.ExportStored)
	})
	return r
}

func (h *deckHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	// Decode request body
	var body dto.GenerateDeckRequest
	if err := decodeBody(w, r, &body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	// Generate and store the caller's deck
	uid := middleware.UID(r.Context())
	resp, err := h.DeckSvc.Generate(r.Context(), uid, body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, resp)
}

func (h *deckHandlers) Get(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	resp, err := h.DeckSvc.Get(r.Context(), uid, chi.URLParam(r, "deckId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *deckHandlers) Current(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	resp, err := h.DeckSvc.Current(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *deckHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.DeckSvc.Delete(r.Context(), uid, chi.URLParam(r, "deckId")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *deckHandlers) Brief(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	brief, err := h.DeckSvc.Brief(r.Context(), uid, chi.URLParam(r, "deckId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{"prompt": brief})
}

func (h *deckHandlers) Present(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	html, err := h.DeckSvc.Present(r.Context(), uid, chi.URLParam(r, "deckId"), r.URL.Query().Get("locale"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteHTML(w, r, http.StatusOK, html)
}

func (h *deckHandlers) ExportStored(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	// fileName and locale are optional
	q := r.URL.Query()
	f, err := h.DeckSvc.ExportStored(r.Context(), uid, chi.URLParam(r, "deckId"), q.Get("fileName"), q.Get("locale"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteFile(w, r, f)
}

func (h *deckHandlers) Render(w http.ResponseWriter, r *http.Request) {
	var body dto.DeckRenderRequest
	if err := decodeBody(w, r, &body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	// Render without touching storage
	html, err := h.DeckSvc.Render(r.Context(), body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteHTML(w, r, http.StatusOK, html)
}

func (h *deckHandlers) Export(w http.ResponseWriter, r *http.Request) {
	var body dto.DeckRenderRequest
	if err := decodeBody(w, r, &body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	// Build the PPTX from the posted deck
	f, err := h.DeckSvc.Export(r.Context(), body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteFile(w, r, f)
}

func (h *deckHandlers) Validate(w http.ResponseWriter, r *http.Request) {
	var body dto.DeckRenderRequest
	if err := decodeBody(w, r, &body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	// Issues are reported, never rejected
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.DeckSvc.Validate(body.Deck))
}
