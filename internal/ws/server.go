package ws

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenValidator resolves the identity a client declares at join time. The
// hub trusts whatever it returns; proving it is the auth layer's job.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// PresenceRegistry mirrors join/leave into a shared store so other processes
// can see who is online. Nil-safe at every call site.
type PresenceRegistry interface {
	AddConnection(ctx context.Context, userID, socketID string, ttl time.Duration) error
	RemoveConnection(ctx context.Context, userID, socketID string) error
}

type Server struct {
	Hub      *Hub
	tokens   TokenValidator
	presence PresenceRegistry
	logger   *zap.SugaredLogger

	pingInterval  time.Duration
	writeDeadline time.Duration
	maxMsgSize    int64
}

func NewServer(tokens TokenValidator, presence PresenceRegistry, pingInterval, writeDeadline time.Duration, maxMsgSize int64, logger *zap.SugaredLogger) *Server {
	return &Server{
		Hub:           NewHub(),
		tokens:        tokens,
		presence:      presence,
		logger:        logger,
		pingInterval:  pingInterval,
		writeDeadline: writeDeadline,
		maxMsgSize:    maxMsgSize,
	}
}

// HandleWS is the websocket.Handler for the join handshake: /ws?token=<jwt>.
// The connection is keyed by the authenticated user id for the rest of its
// life; a reconnecting client goes through the whole handshake again.
func (s *Server) HandleWS(wsConn *websocket.Conn) {
	token := wsConn.Query("token")
	if token == "" {
		_ = wsConn.WriteMessage(websocket.TextMessage, []byte(`{"error":"missing token"}`))
		_ = wsConn.Close()
		return
	}
	userID, err := s.tokens.Validate(token)
	if err != nil {
		_ = wsConn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		_ = wsConn.Close()
		return
	}

	client := NewClient(wsConn)
	socketID := uuid.NewString()

	s.Hub.Join(userID, client)
	if s.presence != nil {
		_ = s.presence.AddConnection(context.Background(), userID, socketID, 24*time.Hour)
	}
	s.logger.Infow("client joined", "user", userID, "socket", socketID)

	go client.writePump(s.pingInterval, s.writeDeadline)
	client.readPump(s.Hub, s.maxMsgSize)

	if s.presence != nil {
		_ = s.presence.RemoveConnection(context.Background(), userID, socketID)
	}
	s.logger.Infow("client left", "user", userID, "socket", socketID)
}

// Send satisfies the event subscriber's sink.
func (s *Server) Send(userID string, payload []byte) {
	s.Hub.Send(userID, payload)
}
