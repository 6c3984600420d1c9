//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"fmt"

	"conversa/contract"
	"conversa/domain"
	"conversa/domain/event"
	"conversa/moderation"
	"conversa/repositories"
)

// HistoryLimit is how many messages a joining session is backfilled with.
const HistoryLimit = 50

type IChatService interface {
	JoinConversation(name, username string, sink contract.EventSink) error
	LeaveConversation(name, username string, sink contract.EventSink)
	History(name string) ([]domain.Message, bool, error)
	PostMessage(name, sender, content string) error
}

// ChatService orchestrates the hub and the message store on behalf of
// connection sessions. It owns no connection state itself.
type ChatService struct {
	hub           contract.IHub
	messages      repositories.IMessageRepository
	conversations repositories.IConversationRepository
	moderator     *moderation.Moderator
}

func NewChatService(hub contract.IHub,
	messages repositories.IMessageRepository,
	conversations repositories.IConversationRepository,
	moderator *moderation.Moderator) *ChatService {
	return &ChatService{
		hub:           hub,
		messages:      messages,
		conversations: conversations,
		moderator:     moderator,
	}
}

// JoinConversation resolves the conversation (creating it on first
// reference) and joins the caller's endpoint to its group. The caller's
// sink receives the online roster as its first event, then the join
// echo like every other member.
func (s *ChatService) JoinConversation(name, username string, sink contract.EventSink) error {
	if _, _, err := s.conversations.GetOrCreate(name); err != nil {
		return fmt.Errorf("resolving conversation %q: %w", name, err)
	}
	s.hub.Join(name, username, sink)
	return nil
}

func (s *ChatService) LeaveConversation(name, username string, sink contract.EventSink) {
	s.hub.Leave(name, username, sink)
}

// History returns the most recent messages of the conversation, newest
// first, and whether older messages exist beyond the returned window.
func (s *ChatService) History(name string) ([]domain.Message, bool, error) {
	messages, err := s.messages.Recent(name, HistoryLimit)
	if err != nil {
		return nil, false, err
	}
	count, err := s.messages.Count(name)
	if err != nil {
		return nil, false, err
	}
	return messages, count > HistoryLimit, nil
}

// PostMessage runs the ingestion path: moderate the content, resolve the
// recipient from the conversation name, persist, then echo to the whole
// group, sender included. A store failure aborts before any broadcast,
// so a message is never echoed as delivered without being durable.
func (s *ChatService) PostMessage(name, sender, content string) error {
	if s.moderator != nil {
		content = s.moderator.Censor(content)
	}

	conversation := domain.Conversation{Name: name}
	message := domain.NewMessage(name, sender, conversation.Receiver(sender), content)

	if err := s.messages.Append(message); err != nil {
		return fmt.Errorf("appending message to %q: %w", name, err)
	}

	s.hub.Publish(name, event.MessageEcho{Name: sender, Message: message})
	return nil
}
