package service

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// RedirectNavigator records the last navigation so an HTTP handler can turn it into a redirect.
type RedirectNavigator struct {
	mu     sync.Mutex
	target string
}

func (n *RedirectNavigator) Navigate(path string) {
	n.mu.Lock()
	n.target = path
	n.mu.Unlock()
}

// Take returns the pending navigation target and resets it.
func (n *RedirectNavigator) Take() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	target := n.target
	n.target = ""
	return target, target != ""
}

// FormSession is one browser session's reservation form.
type FormSession struct {
	ID        string
	Form      *ReservationForm
	Navigator *RedirectNavigator
	lastSeen  time.Time
}

// FormStore keeps a form per browser session for as long as the session is in use.
type FormStore struct {
	newForm func(Navigator) *ReservationForm
	clock   clock.Clock

	mu       sync.Mutex
	sessions map[string]*FormSession
}

func NewFormStore(newForm func(Navigator) *ReservationForm, clk clock.Clock) *FormStore {
	if clk == nil {
		clk = clock.New()
	}
	return &FormStore{
		newForm:  newForm,
		clock:    clk,
		sessions: make(map[string]*FormSession),
	}
}

// Get returns the session with the given id and marks it as used.
func (s *FormStore) Get(id string) (*FormSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		sess.lastSeen = s.clock.Now()
	}
	return sess, ok
}

// Create mounts a new empty form under a fresh session id.
func (s *FormStore) Create() *FormSession {
	nav := &RedirectNavigator{}
	sess := &FormSession{
		ID:        uuid.NewString(),
		Form:      s.newForm(nav),
		Navigator: nav,
	}
	s.mu.Lock()
	sess.lastSeen = s.clock.Now()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Remove unmounts the session's form, cancelling any pending error clear.
func (s *FormStore) Remove(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		sess.Form.Close()
	}
}

// Sweep removes sessions unused for longer than idle and returns how many were removed.
func (s *FormStore) Sweep(idle time.Duration) int {
	cutoff := s.clock.Now().Add(-idle)
	var stale []*FormSession
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
	for _, sess := range stale {
		sess.Form.Close()
	}
	return len(stale)
}

func (s *FormStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
