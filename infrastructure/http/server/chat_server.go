package server

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/services"
	"encoding/json"
	"log/slog"
	"net/http"
)

// maxMessageBodySize bounds the JSON body of POST /messages.
const maxMessageBodySize = 64 << 10

type ChatServer struct {
	chatService services.IChatService
	log         *slog.Logger
}

func NewChatServer(log *slog.Logger, chatService services.IChatService) *ChatServer {
	return &ChatServer{chatService: chatService, log: log}
}

type messagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}

type sentResponse struct {
	Message string          `json:"message"`
	Msg     MessageResponse `json:"msg"`
}

// GetMessages returns the history between user1 and user2, oldest first.
func (s *ChatServer) GetMessages(w http.ResponseWriter, r *http.Request) {
	user1 := r.URL.Query().Get("user1")
	user2 := r.URL.Query().Get("user2")
	if user1 == "" || user2 == "" {
		writeStatus(s.log, w, http.StatusBadRequest, "missing user1 or user2")
		return
	}

	messages, err := s.chatService.GetConversation(r.Context(), domain.Identity(user1), domain.Identity(user2))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(s.log, w, http.StatusOK, messagesResponse{Messages: toMessageResponses(messages)})
}

// PostMessage stores the message and pushes it to whoever is online.
// A 200 means stored; it says nothing about delivery.
func (s *ChatServer) PostMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBodySize)
	var cmd services.SendMessageCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeStatus(s.log, w, http.StatusRequestEntityTooLarge, "message too large")
			return
		}
		writeStatus(s.log, w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	stored, err := s.chatService.Send(r.Context(), cmd)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(s.log, w, http.StatusOK, sentResponse{Message: "sent", Msg: toMessageResponse(stored)})
}

func (s *ChatServer) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Chat Service is running"))
}

func (s *ChatServer) fail(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Chat request failed", "error", err)
		writeStatus(s.log, w, status, "internal error")
		return
	}
	writeStatus(s.log, w, status, err.Error())
}
