package core

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/parleyhq/parley/internal/domain"
)

// ErrBadEnvelope marks an inbound frame that does not decode into a
// valid envelope. Callers log and drop, the connection stays open.
var ErrBadEnvelope = errors.New("bad envelope")

// TargetMode selects unicast vs room fan-out. Closed set; the decoder
// rejects anything else and the router matches exhaustively.
type TargetMode string

const (
	TargetDirect TargetMode = "direct"
	TargetRoom   TargetMode = "room"
)

func (m TargetMode) Valid() bool {
	switch m {
	case TargetDirect, TargetRoom:
		return true
	}
	return false
}

// MessageType classifies the payload. The ping type is a heartbeat and
// is swallowed before routing.
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageImage  MessageType = "image"
	MessageFile   MessageType = "file"
	MessageAudio  MessageType = "audio"
	MessageVideo  MessageType = "video"
	MessageEvent  MessageType = "event"
	MessageSignal MessageType = "signal"
	MessagePing   MessageType = "ping"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageFile, MessageAudio,
		MessageVideo, MessageEvent, MessageSignal, MessagePing:
		return true
	}
	return false
}

// Envelope is the uniform message shape carried on the wire and on the
// fan-out bus. ReceiverID is a UserID for direct messages and a RoomID
// for room messages. SenderID and SendTime are server-stamped; values
// supplied by the client are overwritten at the connection boundary.
type Envelope struct {
	TargetType TargetMode      `json:"messageTargetType"`
	Type       MessageType     `json:"messageType"`
	ReceiverID string          `json:"receiverId"`
	SenderID   domain.UserID   `json:"senderId"`
	SenderName string          `json:"senderNickName,omitempty"`
	Content    json.RawMessage `json:"content,omitempty"`
	SendTime   int64           `json:"sendTime"` // unix milliseconds
}

// DecodeEnvelope parses and validates an inbound wire frame.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if !env.TargetType.Valid() {
		return Envelope{}, fmt.Errorf("%w: unknown target type %q", ErrBadEnvelope, env.TargetType)
	}
	if !env.Type.Valid() {
		return Envelope{}, fmt.Errorf("%w: unknown message type %q", ErrBadEnvelope, env.Type)
	}
	if env.ReceiverID == "" {
		return Envelope{}, fmt.Errorf("%w: missing receiverId", ErrBadEnvelope)
	}
	return env, nil
}

// Encode serializes the envelope for the wire or the bus.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}
