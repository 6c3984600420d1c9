//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"

	"conversa/domain"
)

type IConversationRepository interface {
	GetOrCreate(name string) (domain.Conversation, bool, error)
}

// ConversationRepository stores one record per conversation name.
// Conversations are created lazily on first connection referencing them.
type ConversationRepository struct {
	db *badger.DB
}

func NewConversationRepository(db *badger.DB) IConversationRepository {
	return &ConversationRepository{db: db}
}

type storedConversation struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// GetOrCreate returns the conversation for name, creating it if absent.
// The exists-check and the write happen inside a single Badger update
// transaction, so two sessions racing on the same fresh name cannot
// create duplicates: the loser of the race retries its conflicted
// transaction, finds the winner's record and reports created=false.
func (c ConversationRepository) GetOrCreate(name string) (domain.Conversation, bool, error) {
	for {
		created := false
		err := c.db.Update(func(txn *badger.Txn) error {
			created = false
			key := []byte("conv:" + name)
			_, err := txn.Get(key)
			if err == nil {
				return nil
			}
			if err != badger.ErrKeyNotFound {
				return err
			}

			data, err := json.Marshal(storedConversation{
				Name:      name,
				CreatedAt: time.Now().UTC(),
			})
			if err != nil {
				return err
			}
			created = true
			return txn.Set(key, data)
		})
		if err == badger.ErrConflict {
			continue
		}
		if err != nil {
			return domain.Conversation{}, false, err
		}
		return domain.Conversation{Name: name}, created, nil
	}
}
