package domain

import "strings"

// NameDelimiter joins the two participant usernames into a conversation name.
const NameDelimiter = "__"

// Conversation is a named channel pairing exactly two principals.
// It is created lazily on first connection referencing its name.
type Conversation struct {
	Name string
}

// ConversationName builds the canonical name for a pair of usernames.
func ConversationName(a, b string) string {
	return a + NameDelimiter + b
}

// Receiver resolves the recipient of a message sent by sender: the first
// token of the name, scanned left to right, that differs from the sender's
// username. Returns "" when no token differs (self-conversation) or the
// name is empty; callers persist such messages with an empty recipient.
func (c Conversation) Receiver(sender string) string {
	for _, username := range strings.Split(c.Name, NameDelimiter) {
		if username != sender {
			return username
		}
	}
	return ""
}
