package response

import (
	"log/slog"
	"net/http"

	"github.com/GregMSThompson/pitch-backend/internal/export"
)

type ResponseHandler interface {
	WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any)
	WriteHTML(w http.ResponseWriter, r *http.Request, status int, body []byte)
	WriteFile(w http.ResponseWriter, r *http.Request, f *export.File)
	WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string)
	HandleError(w http.ResponseWriter, r *http.Request, err error)
}

type responseHandler struct {
	Log *slog.Logger
}

func New(log *slog.Logger) *responseHandler {
	return &responseHandler{Log: log}
}
