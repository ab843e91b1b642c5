package models

import (
	"encoding/json"
	"fmt"

	"github.com/benmeehan/pulse-agent/internal/constants"
)

// InboundMessage is a frame received from the server. Fields other than id and
// action are kept raw and not interpreted. Build it with DecodeInboundMessage:
// plain json.Unmarshal matches keys case-insensitively.
type InboundMessage struct {
	ID     string
	Action constants.Action
	Data   json.RawMessage
}

// DecodeInboundMessage decodes a frame, reading only the exact lowercase keys
// "id", "action" and "data". A null or missing action decodes as "".
func DecodeInboundMessage(payload []byte) (InboundMessage, error) {
	var msg InboundMessage

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return msg, err
	}

	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &msg.ID); err != nil {
			return msg, fmt.Errorf("invalid id: %w", err)
		}
	}
	if raw, ok := fields["action"]; ok {
		var action *string
		if err := json.Unmarshal(raw, &action); err != nil {
			return msg, fmt.Errorf("invalid action: %w", err)
		}
		if action != nil {
			msg.Action = constants.Action(*action)
		}
	}
	msg.Data = fields["data"]

	return msg, nil
}

// PongReply answers a PONG probe. It carries nothing but the echoed id.
type PongReply struct {
	ID           string           `json:"id"`
	OriginAction constants.Action `json:"origin_action"`
}
