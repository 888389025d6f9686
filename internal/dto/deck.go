package dto

import (
	"time"

	"github.com/GregMSThompson/pitch-backend/internal/deck"
)

// AttachmentInput is one uploaded file; Data is base64 (a data: URL prefix
// is tolerated).
type AttachmentInput struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type GenerateDeckRequest struct {
	Prompt      string            `json:"prompt"`
	Attachments []AttachmentInput `json:"attachments,omitempty"`
}

type DeckResponse struct {
	DeckID    string         `json:"deckId"`
	Deck      deck.Deck      `json:"deck"`
	Issues    []deck.Issue   `json:"issues"`
	Summary   map[string]int `json:"summary"`
	CreatedAt time.Time      `json:"createdAt"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// DeckRenderRequest carries a deck for the stateless render and export
// endpoints.
type DeckRenderRequest struct {
	Deck     deck.Deck `json:"deck"`
	Locale   string    `json:"locale,omitempty"`
	FileName string    `json:"fileName,omitempty"`
}

type ValidateDeckResponse struct {
	Valid   bool           `json:"valid"`
	Issues  []deck.Issue   `json:"issues"`
	Summary map[string]int `json:"summary"`
}
