package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConversation_Receiver_Resolves_Other_Participant(t *testing.T) {
	req := require.New(t)
	conversation := Conversation{Name: "alice__bob"}

	// The recipient is whichever token is not the sender
	req.Equal("bob", conversation.Receiver("alice"))
	req.Equal("alice", conversation.Receiver("bob"))
}

func TestConversation_Receiver_Foreign_Name_Returns_First_Token(t *testing.T) {
	req := require.New(t)
	conversation := Conversation{Name: "alice__bob"}

	// A sender appearing in neither token gets the first one,
	// scanned left to right
	req.Equal("alice", conversation.Receiver("clara"))
}

func TestConversation_Receiver_Self_Chat_Is_Undefined(t *testing.T) {
	req := require.New(t)
	conversation := Conversation{Name: "alice__alice"}

	// No token differs from the sender: empty recipient
	req.Empty(conversation.Receiver("alice"))
}

func TestConversationName_Joins_With_Delimiter(t *testing.T) {
	req := require.New(t)
	req.Equal("alice__bob", ConversationName("alice", "bob"))
}
