package server

import (
	"chat-relay/domain"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/samber/lo"
)

// MessageResponse is the JSON shape of a message on the wire.
// createdAt is in Unix milliseconds.
type MessageResponse struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Text      string `json:"text,omitempty"`
	Image     string `json:"image,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

type statusResponse struct {
	Message string `json:"message"`
}

func toMessageResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID.String(),
		From:      string(m.From),
		To:        string(m.To),
		Text:      m.Text,
		Image:     m.Image,
		CreatedAt: m.CreatedAt.UnixMilli(),
	}
}

func toMessageResponses(messages []domain.Message) []MessageResponse {
	return lo.Map(messages, func(item domain.Message, _ int) MessageResponse {
		return toMessageResponse(item)
	})
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Debug("Failed to write response", "error", err)
	}
}

func writeStatus(log *slog.Logger, w http.ResponseWriter, status int, message string) {
	writeJSON(log, w, status, statusResponse{Message: message})
}
