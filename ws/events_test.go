package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"conversa/domain"
	"conversa/domain/event"
)

func TestDecodeClientEvent(t *testing.T) {
	req := require.New(t)

	// Greeting
	evt, kind, err := decodeClientEvent([]byte(`{"type":"greeting","message":"hello"}`))
	req.NoError(err)
	req.Equal(kindGreeting, kind)
	req.Equal("hello", evt.Message)

	// Chat message
	evt, kind, err = decodeClientEvent([]byte(`{"type":"chat_message","message":"hi bob"}`))
	req.NoError(err)
	req.Equal(kindChatMessage, kind)
	req.Equal("hi bob", evt.Message)

	// Unknown type: ignored, not an error
	_, kind, err = decodeClientEvent([]byte(`{"type":"typing_indicator"}`))
	req.NoError(err)
	req.Equal(kindUnknown, kind)
}

func TestDecodeClientEvent_Malformed(t *testing.T) {
	req := require.New(t)

	// Not JSON
	_, _, err := decodeClientEvent([]byte(`{{{`))
	req.Error(err)

	// Missing type
	_, _, err = decodeClientEvent([]byte(`{"message":"hi"}`))
	req.Error(err)

	// chat_message without content
	_, _, err = decodeClientEvent([]byte(`{"type":"chat_message"}`))
	req.Error(err)
}

func TestEncodeEvent_Shapes(t *testing.T) {
	req := require.New(t)

	payload, err := encodeEvent(event.OnlineRoster{Conversation: "alice__bob", Users: []string{"bob"}})
	req.NoError(err)
	req.JSONEq(`{"type":"online_user_list","users":["bob"]}`, string(payload))

	// An empty roster serializes as [], never null
	payload, err = encodeEvent(event.OnlineRoster{Conversation: "alice__bob"})
	req.NoError(err)
	req.JSONEq(`{"type":"online_user_list","users":[]}`, string(payload))

	payload, err = encodeEvent(event.UserJoined{Conversation: "alice__bob", Username: "alice"})
	req.NoError(err)
	req.JSONEq(`{"type":"user_join","user":"alice"}`, string(payload))

	payload, err = encodeEvent(event.UserLeft{Conversation: "alice__bob", Username: "alice"})
	req.NoError(err)
	req.JSONEq(`{"type":"user_leave","user":"alice"}`, string(payload))
}

func TestEncodeEvent_MessageEcho(t *testing.T) {
	req := require.New(t)

	message := domain.NewMessage("alice__bob", "alice", "bob", "hi")
	payload, err := encodeEvent(event.MessageEcho{Name: "alice", Message: message})
	req.NoError(err)

	var decoded struct {
		Type    string `json:"type"`
		Name    string `json:"name"`
		Message struct {
			ID           string    `json:"id"`
			FromUser     string    `json:"from_user"`
			ToUser       string    `json:"to_user"`
			Content      string    `json:"content"`
			Conversation string    `json:"conversation"`
			Timestamp    time.Time `json:"timestamp"`
		} `json:"message"`
	}
	req.NoError(json.Unmarshal(payload, &decoded))
	req.Equal("chat_message_echo", decoded.Type)
	req.Equal("alice", decoded.Name)
	req.Equal(message.ID.String(), decoded.Message.ID)
	req.Equal("alice", decoded.Message.FromUser)
	req.Equal("bob", decoded.Message.ToUser)
	req.Equal("hi", decoded.Message.Content)
	req.Equal("alice__bob", decoded.Message.Conversation)
	req.True(message.CreatedAt.Equal(decoded.Message.Timestamp))
}

func TestEncodeHistory(t *testing.T) {
	req := require.New(t)

	payload, err := encodeHistory([]domain.Message{
		domain.NewMessage("alice__bob", "alice", "bob", "newest"),
		domain.NewMessage("alice__bob", "bob", "alice", "older"),
	}, true)
	req.NoError(err)

	var decoded struct {
		Type     string `json:"type"`
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
		HasMore bool `json:"has_more"`
	}
	req.NoError(json.Unmarshal(payload, &decoded))
	req.Equal("last_50_messages", decoded.Type)
	req.Len(decoded.Messages, 2)
	req.Equal("newest", decoded.Messages[0].Content)
	req.True(decoded.HasMore)
}

func TestEncodeHistory_Empty(t *testing.T) {
	req := require.New(t)

	payload, err := encodeHistory(nil, false)
	req.NoError(err)
	req.JSONEq(`{"type":"last_50_messages","messages":[],"has_more":false}`, string(payload))
}
