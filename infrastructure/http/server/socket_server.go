package server

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/services"
	"chat-relay/sink"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	registerEvent = "register"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundFrame struct {
	Event event.Name      `json:"event"`
	Data  MessageResponse `json:"data"`
}

// SocketServer upgrades /socket requests and binds each connection to a sink.
type SocketServer struct {
	chatService          services.IChatService
	log                  *slog.Logger
	upgrader             websocket.Upgrader
	connectionBufferSize int
}

func NewSocketServer(log *slog.Logger, chatService services.IChatService, connectionBufferSize int) *SocketServer {
	return &SocketServer{
		chatService:          chatService,
		log:                  log,
		connectionBufferSize: connectionBufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP blocks until the client disconnects.
// Every identity registered on this connection is released on exit.
func (s *SocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("Websocket upgrade failed", "error", err)
		return
	}

	connectionID := domain.ConnectionID(uuid.NewString())
	handle := sink.NewConnectionSink(connectionID, s.connectionBufferSize)
	s.log.Debug("Socket connected", "connection_id", connectionID)

	defer func() {
		s.chatService.Disconnect(handle)
		handle.Close()
		_ = conn.Close()
		s.log.Debug("Socket disconnected", "connection_id", connectionID)
	}()

	go s.writeLoop(conn, handle)
	s.readLoop(conn, handle)
}

func (s *SocketServer) readLoop(conn *websocket.Conn, handle *sink.ConnectionSink) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("Socket read failed", "connection_id", handle.ConnectionID(), "error", err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			s.log.Debug("Ignoring malformed frame", "connection_id", handle.ConnectionID(), "error", err)
			continue
		}
		switch frame.Event {
		case registerEvent:
			var identity string
			if err := json.Unmarshal(frame.Data, &identity); err != nil {
				s.log.Debug("Ignoring register without identity", "connection_id", handle.ConnectionID())
				continue
			}
			if err := s.chatService.Identify(domain.Identity(identity), handle); err != nil {
				s.log.Debug("Register refused", "connection_id", handle.ConnectionID(), "error", err)
			}
		default:
			s.log.Debug("Ignoring unknown event", "event", frame.Event)
		}
	}
}

// writeLoop is the only writer of conn.
func (s *SocketServer) writeLoop(conn *websocket.Conn, handle *sink.ConnectionSink) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-handle.Done():
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.closeOnWriteError(conn, handle, err)
				return
			}
		case evt := <-handle.Events:
			switch e := evt.(type) {
			case event.NewMessage:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				frame := outboundFrame{Event: e.EventName(), Data: toMessageResponse(e.Message)}
				if err := conn.WriteJSON(frame); err != nil {
					s.closeOnWriteError(conn, handle, err)
					return
				}
			}
		}
	}
}

// closeOnWriteError closes the socket so the read loop exits and unregisters.
func (s *SocketServer) closeOnWriteError(conn *websocket.Conn, handle *sink.ConnectionSink, err error) {
	s.log.Debug("Failed to push event to socket", "connection_id", handle.ConnectionID(), "error", err)
	handle.Close()
	_ = conn.Close()
}
