package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/GregMSThompson/pitch-backend/internal/errs"
	"github.com/GregMSThompson/pitch-backend/internal/response"
)

// maxBodyBytes bounds request bodies; generation requests carry base64
// attachments.
const maxBodyBytes = 32 << 20

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	DeckSvc         DeckService
	ChatSvc         ChatService
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.NewValidationError("request body too large")
		}
		return errs.NewValidationError("invalid request body")
	}
	return nil
}
