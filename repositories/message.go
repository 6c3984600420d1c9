//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"conversa/domain"
)

type IMessageRepository interface {
	Append(message domain.Message) error
	Recent(conversation string, limit int) ([]domain.Message, error)
	Count(conversation string) (int, error)
}

// MessageRepository persists messages in BadgerDB.
// The key is formatted as "msg:{conversation}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order), so a reverse prefix scan yields newest-first.
//  2. Prevent data loss by using the UUID as a collision disconnector if
//     two messages arrive at the same nanosecond.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// storedMessage is the on-disk shape. Its JSON tags match the serialized
// Message sent to clients, so persisted history and live echoes carry
// identical field names.
type storedMessage struct {
	ID           string    `json:"id"`
	Sender       string    `json:"from_user"`
	Recipient    string    `json:"to_user"`
	Content      string    `json:"content"`
	Conversation string    `json:"conversation"`
	CreatedAt    time.Time `json:"timestamp"`
}

func (m MessageRepository) Append(message domain.Message) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		message.Conversation,
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(fromDomain(message))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// Recent retrieves the most recent messages of a conversation, newest
// first, at most limit of them. Thanks to the padded timestamp in the
// key, a reverse prefix scan walks them in exactly that order.
func (m MessageRepository) Recent(conversation string, limit int) ([]domain.Message, error) {
	var raw [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", conversation))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key of this conversation,
		// then walk backwards in time.
		seekKey := append(prefix, []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(raw) == limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", limit))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, b := range raw {
		var stored storedMessage
		if err = json.Unmarshal(b, &stored); err != nil {
			return nil, err
		}
		message, err := toDomain(stored)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// Count returns the total number of messages stored for a conversation.
// Keys-only iteration avoids touching value logs.
func (m MessageRepository) Count(conversation string) (int, error) {
	count := 0
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", conversation))
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

func fromDomain(message domain.Message) storedMessage {
	return storedMessage{
		ID:           message.ID.String(),
		Sender:       message.Sender,
		Recipient:    message.Recipient,
		Content:      message.Content,
		Conversation: message.Conversation,
		CreatedAt:    message.CreatedAt.UTC(),
	}
}

func toDomain(stored storedMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(stored.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:           parsedID,
		Sender:       stored.Sender,
		Recipient:    stored.Recipient,
		Content:      stored.Content,
		Conversation: stored.Conversation,
		CreatedAt:    stored.CreatedAt.UTC(),
	}, nil
}
