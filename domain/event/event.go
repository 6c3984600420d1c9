package event

import "conversa/domain"

// DomainEvent is anything the hub can broadcast to a conversation group.
type DomainEvent interface {
	ConversationName() string
}

// OnlineRoster carries the current online set of a conversation. It is
// delivered to exactly one sink, the one whose session just joined.
type OnlineRoster struct {
	Conversation string
	Users        []string
}

func (e OnlineRoster) ConversationName() string { return e.Conversation }

// UserJoined announces a principal entering a conversation.
type UserJoined struct {
	Conversation string
	Username     string
}

func (e UserJoined) ConversationName() string { return e.Conversation }

// UserLeft announces a principal leaving a conversation.
type UserLeft struct {
	Conversation string
	Username     string
}

func (e UserLeft) ConversationName() string { return e.Conversation }

// MessageEcho carries a persisted message back to every member of the
// group, the sender included. A single rendering path on the client side
// handles both local and remote messages.
type MessageEcho struct {
	Name    string
	Message domain.Message
}

func (e MessageEcho) ConversationName() string { return e.Message.Conversation }
