package fixgateway

import (
	"fmt"
	"sync"

	"github.com/ismaiel54/fix-counterparty-sim/internal/model"
	"github.com/quickfixgo/quickfix"
)

// HandleOf returns the opaque handle for a quickfix session
func HandleOf(id quickfix.SessionID) model.SessionHandle {
	return model.SessionHandle(id.String())
}

// Sessions tracks the logged-on sessions by handle
type Sessions struct {
	mu       sync.RWMutex
	byHandle map[model.SessionHandle]quickfix.SessionID
}

// NewSessions creates an empty registry
func NewSessions() *Sessions {
	return &Sessions{byHandle: make(map[model.SessionHandle]quickfix.SessionID)}
}

// Add registers a session
func (s *Sessions) Add(id quickfix.SessionID) model.SessionHandle {
	h := HandleOf(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byHandle[h] = id
	return h
}

// Remove forgets a session
func (s *Sessions) Remove(id quickfix.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byHandle, HandleOf(id))
}

// Lookup resolves a handle to its session
func (s *Sessions) Lookup(h model.SessionHandle) (quickfix.SessionID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHandle[h]
	return id, ok
}

// Len returns the number of live sessions
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byHandle)
}

// Sender transmits a FIX message on a session
type Sender func(m quickfix.Messagable, id quickfix.SessionID) error

// Dispatcher encodes outbound messages and sends them to registered sessions
type Dispatcher struct {
	sessions *Sessions
	send     Sender
}

// NewDispatcher creates a Dispatcher. A nil sender uses quickfix.SendToTarget.
func NewDispatcher(sessions *Sessions, send Sender) *Dispatcher {
	if send == nil {
		send = quickfix.SendToTarget
	}
	return &Dispatcher{sessions: sessions, send: send}
}

// Send implements handler.Dispatcher
func (d *Dispatcher) Send(h model.SessionHandle, m model.Outbound) error {
	id, ok := d.sessions.Lookup(h)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrSessionNotFound, h)
	}

	msg, err := Encode(m)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", m.MsgType(), err)
	}

	if err := d.send(msg, id); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrSessionNotFound, h, err)
	}
	return nil
}
