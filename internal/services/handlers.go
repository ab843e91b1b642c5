package services

import (
	"time"

	"github.com/benmeehan/pulse-agent/internal/constants"
	"github.com/benmeehan/pulse-agent/internal/models"
	"github.com/benmeehan/pulse-agent/pkg/identity"
	"github.com/benmeehan/pulse-agent/pkg/ws"
)

// MessageHandler replies to one kind of inbound message.
type MessageHandler interface {
	Action() constants.Action
	Handle(msg models.InboundMessage) error
}

// AuthHandler answers the server's AUTH request with the client identity.
type AuthHandler struct {
	sessionInfo identity.SessionInfoInterface
	conn        ws.Connection
	now         func() time.Time
}

// NewAuthHandler creates an AuthHandler. A nil clock defaults to time.Now.
func NewAuthHandler(sessionInfo identity.SessionInfoInterface, conn ws.Connection, now func() time.Time) *AuthHandler {
	if now == nil {
		now = time.Now
	}
	return &AuthHandler{sessionInfo: sessionInfo, conn: conn, now: now}
}

// Action implements MessageHandler.
func (a *AuthHandler) Action() constants.Action {
	return constants.ActionAuth
}

// Handle sends the AUTH reply. The timestamp is taken when the reply is built.
func (a *AuthHandler) Handle(msg models.InboundMessage) error {
	id := a.sessionInfo.GetIdentity()

	reply := models.AuthReply{
		ID:           msg.ID,
		OriginAction: constants.ActionAuth,
		Result: models.AuthResult{
			BrowserID:   id.SessionID,
			UserID:      id.UserID,
			UserAgent:   id.UserAgent,
			Timestamp:   a.now().Unix(),
			DeviceType:  id.DeviceType,
			Version:     id.ExtensionVersion,
			ExtensionID: id.ExtensionID,
		},
	}
	return a.conn.WriteJSON(reply)
}

// PongHandler answers the server's PONG probe.
type PongHandler struct {
	conn ws.Connection
}

// NewPongHandler creates a PongHandler.
func NewPongHandler(conn ws.Connection) *PongHandler {
	return &PongHandler{conn: conn}
}

// Action implements MessageHandler.
func (p *PongHandler) Action() constants.Action {
	return constants.ActionPong
}

// Handle echoes the message id back with origin_action PONG.
func (p *PongHandler) Handle(msg models.InboundMessage) error {
	return p.conn.WriteJSON(models.PongReply{
		ID:           msg.ID,
		OriginAction: constants.ActionPong,
	})
}
