package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/lo"

	"conversa/domain"
	"conversa/domain/event"
	"conversa/errors"
)

// greetingReply is the fixed acknowledgment sent for a greeting event.
const greetingReply = "How are you?"

// wireMessage is the serialized Message shape shared by live echoes and
// history backfill. Timestamps render as RFC 3339 with nanoseconds, which
// sorts lexicographically.
type wireMessage struct {
	ID           string    `json:"id"`
	FromUser     string    `json:"from_user"`
	ToUser       string    `json:"to_user"`
	Content      string    `json:"content"`
	Conversation string    `json:"conversation"`
	Timestamp    time.Time `json:"timestamp"`
}

func toWireMessage(m domain.Message) wireMessage {
	return wireMessage{
		ID:           m.ID.String(),
		FromUser:     m.Sender,
		ToUser:       m.Recipient,
		Content:      m.Content,
		Conversation: m.Conversation,
		Timestamp:    m.CreatedAt.UTC(),
	}
}

type onlineUserListEvent struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

type userJoinEvent struct {
	Type string `json:"type"`
	User string `json:"user"`
}

type userLeaveEvent struct {
	Type string `json:"type"`
	User string `json:"user"`
}

type lastMessagesEvent struct {
	Type     string        `json:"type"`
	Messages []wireMessage `json:"messages"`
	HasMore  bool          `json:"has_more"`
}

type greetingResponseEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type chatMessageEchoEvent struct {
	Type    string      `json:"type"`
	Name    string      `json:"name"`
	Message wireMessage `json:"message"`
}

// encodeEvent maps a domain event onto its wire shape. The variant set
// is closed; an unmapped event is a programming error, not client input.
func encodeEvent(e event.DomainEvent) ([]byte, error) {
	switch evt := e.(type) {
	case event.OnlineRoster:
		users := evt.Users
		if users == nil {
			users = []string{}
		}
		return json.Marshal(onlineUserListEvent{Type: "online_user_list", Users: users})
	case event.UserJoined:
		return json.Marshal(userJoinEvent{Type: "user_join", User: evt.Username})
	case event.UserLeft:
		return json.Marshal(userLeaveEvent{Type: "user_leave", User: evt.Username})
	case event.MessageEcho:
		return json.Marshal(chatMessageEchoEvent{
			Type:    "chat_message_echo",
			Name:    evt.Name,
			Message: toWireMessage(evt.Message),
		})
	default:
		return nil, fmt.Errorf("no wire shape for event %T", e)
	}
}

func encodeHistory(messages []domain.Message, hasMore bool) ([]byte, error) {
	return json.Marshal(lastMessagesEvent{
		Type:     "last_50_messages",
		Messages: lo.Map(messages, func(m domain.Message, _ int) wireMessage { return toWireMessage(m) }),
		HasMore:  hasMore,
	})
}

func encodeGreetingResponse() ([]byte, error) {
	return json.Marshal(greetingResponseEvent{Type: "greeting_response", Message: greetingReply})
}

// clientEvent is the decoded form of everything a client may send.
// Dispatch happens on Type; unrecognized values fall through to the
// guaranteed no-op arm in the session.
type clientEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type clientEventKind int

const (
	kindUnknown clientEventKind = iota
	kindGreeting
	kindChatMessage
)

// decodeClientEvent validates the inbound frame at the boundary. A frame
// that is not JSON, or lacks a type or a required message field, is
// malformed; the caller drops it without terminating the session.
func decodeClientEvent(data []byte) (clientEvent, clientEventKind, error) {
	var evt clientEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return clientEvent{}, kindUnknown, fmt.Errorf("%w: %v", errors.ErrMalformedEvent, err)
	}
	switch evt.Type {
	case "greeting":
		return evt, kindGreeting, nil
	case "chat_message":
		if evt.Message == "" {
			return clientEvent{}, kindUnknown, fmt.Errorf("%w: chat_message without message field", errors.ErrMalformedEvent)
		}
		return evt, kindChatMessage, nil
	case "":
		return clientEvent{}, kindUnknown, fmt.Errorf("%w: missing type", errors.ErrMalformedEvent)
	default:
		// Forward compatible: unknown types are ignored, not errors.
		return evt, kindUnknown, nil
	}
}
