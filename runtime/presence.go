package runtime

import (
	"sort"
	"sync"
)

type set map[string]struct{}

// Presence tracks which principals are currently online per conversation.
// A username appears in a conversation's set iff at least one live session
// joined it there. Join and Leave are idempotent.
type Presence struct {
	mu     sync.RWMutex
	online map[string]set
}

func NewPresence() *Presence {
	return &Presence{online: make(map[string]set)}
}

func (p *Presence) Join(conversation, username string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.online[conversation]; !ok {
		p.online[conversation] = make(set)
	}
	p.online[conversation][username] = struct{}{}
}

// Leave removes the username; removing an absent one changes nothing.
func (p *Presence) Leave(conversation, username string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	members, ok := p.online[conversation]
	if !ok {
		return
	}
	delete(members, username)
	if len(members) == 0 {
		delete(p.online, conversation)
	}
}

// List returns the online usernames sorted, so rosters sent to clients
// are deterministic.
func (p *Presence) List(conversation string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	members, ok := p.online[conversation]
	if !ok {
		return nil
	}
	usernames := make([]string, 0, len(members))
	for username := range members {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)
	return usernames
}
