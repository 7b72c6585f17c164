package identity

import "sync"

type SessionState int

const (
	SignedIn SessionState = iota
	SignedOut
)

// SessionEvent announces a change in a user's session. Live
// subscriptions tear down when they observe a SignedOut event for
// their user.
type SessionEvent struct {
	UserID string
	State  SessionState
}

// SessionBroadcaster fans session events out to all subscribers. Sends
// never block: a subscriber that has fallen behind drops events, which
// is acceptable because the only terminal event repeats (a signed-out
// user stays signed out).
type SessionBroadcaster struct {
	mu   sync.Mutex
	subs map[chan SessionEvent]struct{}
}

func NewSessionBroadcaster() *SessionBroadcaster {
	return &SessionBroadcaster{subs: make(map[chan SessionEvent]struct{})}
}

// Subscribe returns a channel of session events and a cancel function.
func (b *SessionBroadcaster) Subscribe() (<-chan SessionEvent, func()) {
	ch := make(chan SessionEvent, 8)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *SessionBroadcaster) Announce(event SessionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
