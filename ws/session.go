package ws

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coder/websocket"

	"conversa/domain/event"
	"conversa/services"
)

// Session drives one websocket connection through its lifecycle:
// Connecting (join the conversation group, send roster and history),
// Joined (dispatch inbound events), Closed (leave and release). It is
// the hub-facing delivery endpoint of its connection: broadcasts arrive
// through Consume and are forwarded verbatim by the write pump.
//
// A slow or dead client never blocks the hub: Consume refuses to block,
// and a full send buffer is reported as a delivery failure, which makes
// the hub evict this endpoint and trigger its teardown.
type Session struct {
	conn         *websocket.Conn
	chat         services.IChatService
	log          *slog.Logger
	username     string
	conversation string

	send      chan []byte
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	joined    bool
}

func NewSession(parentCtx context.Context, conn *websocket.Conn,
	chat services.IChatService, log *slog.Logger,
	username, conversation string, sendBuffer int) *Session {
	ctx, cancel := context.WithCancel(parentCtx)
	return &Session{
		conn:         conn,
		chat:         chat,
		log:          log.With(slog.String("user", username), slog.String("conversation", conversation)),
		username:     username,
		conversation: conversation,
		send:         make(chan []byte, sendBuffer),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Run blocks until the connection terminates. The join/leave compound
// operations are only ever executed from here, so each session mutates
// the hub at most once in each direction.
func (s *Session) Run() {
	go s.writePump()
	defer s.teardown()

	if err := s.chat.JoinConversation(s.conversation, s.username, s); err != nil {
		s.log.Error("join failed", slog.Any("error", err))
		s.close(websocket.StatusInternalError, "join failed")
		return
	}
	s.joined = true

	if err := s.sendHistory(); err != nil {
		s.log.Error("history backfill failed", slog.Any("error", err))
		s.close(websocket.StatusInternalError, "history unavailable")
		return
	}

	s.readLoop()
}

// Consume implements contract.EventSink. It never blocks: the event is
// either buffered for the write pump or refused with an error.
func (s *Session) Consume(e event.DomainEvent) error {
	payload, err := encodeEvent(e)
	if err != nil {
		return err
	}
	return s.enqueue(payload)
}

// Fail implements runtime.Failer: the hub calls it after evicting this
// endpoint. Only the transport is torn down here; the Leave cleanup runs
// in Run's teardown once the read loop unblocks.
func (s *Session) Fail(err error) {
	s.log.Warn("endpoint evicted by hub", slog.Any("error", err))
	s.close(websocket.StatusPolicyViolation, "delivery failure")
}

func (s *Session) readLoop() {
	for {
		typ, data, err := s.conn.Read(s.ctx)
		if err != nil {
			s.log.Info("connection closed", slog.String("status", websocket.CloseStatus(err).String()))
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		s.handle(data)
	}
}

// handle dispatches one inbound frame. Malformed frames are dropped and
// unknown types are a guaranteed no-op; neither terminates the session.
func (s *Session) handle(data []byte) {
	evt, kind, err := decodeClientEvent(data)
	if err != nil {
		s.log.Debug("dropping malformed client event", slog.Any("error", err))
		return
	}

	switch kind {
	case kindGreeting:
		payload, err := encodeGreetingResponse()
		if err != nil {
			return
		}
		if err := s.enqueue(payload); err != nil {
			s.log.Debug("greeting response not delivered", slog.Any("error", err))
		}
	case kindChatMessage:
		if err := s.chat.PostMessage(s.conversation, s.username, evt.Message); err != nil {
			// The message may not be durable; do not pretend it was
			// delivered. Surface the failure by ending the session.
			s.log.Error("message ingestion failed", slog.Any("error", err))
			s.close(websocket.StatusInternalError, "message not persisted")
		}
	case kindUnknown:
		// no-op, forward compatible
	}
}

func (s *Session) sendHistory() error {
	messages, hasMore, err := s.chat.History(s.conversation)
	if err != nil {
		return err
	}
	payload, err := encodeHistory(messages, hasMore)
	if err != nil {
		return err
	}
	return s.enqueue(payload)
}

func (s *Session) enqueue(payload []byte) error {
	select {
	case s.send <- payload:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("send buffer full")
	}
}

// writePump is the single writer on the connection.
func (s *Session) writePump() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case payload := <-s.send:
			if err := s.conn.Write(s.ctx, websocket.MessageText, payload); err != nil {
				s.close(websocket.StatusNormalClosure, "")
				return
			}
		}
	}
}

// teardown runs the Joined→Closed transition exactly once, after the
// read loop has ended. Leave runs before the transport is torn down so
// the compound cleanup does not race its own eviction. A session that
// never completed its join leaves no trace: no user_leave broadcast, no
// registry mutation.
func (s *Session) teardown() {
	if s.joined {
		s.chat.LeaveConversation(s.conversation, s.username, s)
	}
	s.close(websocket.StatusNormalClosure, "")
}

func (s *Session) close(status websocket.StatusCode, reason string) {
	s.closeOnce.Do(func() {
		s.cancel()
		_ = s.conn.Close(status, reason)
	})
}
