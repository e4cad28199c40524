package checklist

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/david/rfq-pilot/internal/decision"
)

// DefaultTTL is the inactivity bound after which a session is expired.
const DefaultTTL = 30 * time.Minute

// Session is one in-flight hold resolution. All mutation goes through the
// store, which serializes transitions per session.
type Session struct {
	ID       string
	Owner    string
	Document string
	Summary  string

	mu         sync.Mutex
	checklist  []Item
	answers    map[string]bool
	index      int
	lastActive time.Time
}

type ownerDoc struct {
	owner    string
	document string
}

// Store owns every live checklist session. Sessions are ephemeral: process
// restart loses them all. At most one session exists per (owner, document)
// pair; creating a second replaces the first.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*Session
	byPair   map[ownerDoc]string
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
		byPair:   make(map[ownerDoc]string),
	}
}

// Create registers a session for the given owner and document. A stale
// session for the same pair is destroyed, never resumed.
func (s *Store) Create(owner, document, summary string, items []Item) (*Session, error) {
	if len(items) == 0 {
		return nil, ErrEmptyChecklist
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	pair := ownerDoc{owner: owner, document: document}
	if staleID, ok := s.byPair[pair]; ok {
		delete(s.sessions, staleID)
		delete(s.byPair, pair)
	}

	session := &Session{
		ID:         uuid.NewString(),
		Owner:      owner,
		Document:   document,
		Summary:    summary,
		checklist:  append([]Item(nil), items...),
		answers:    make(map[string]bool, len(items)),
		lastActive: s.now(),
	}
	s.sessions[session.ID] = session
	s.byPair[pair] = session.ID
	return session, nil
}

// Get returns a read-only view of a live session.
func (s *Store) Get(id, requester string) (View, error) {
	session, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	if session.Owner != requester {
		return View{}, ErrNotSessionOwner
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	current := session.checklist[session.index]
	return View{
		ID:       session.ID,
		Document: session.Document,
		Summary:  session.Summary,
		Current:  &current,
		Position: session.index + 1,
		Total:    len(session.checklist),
	}, nil
}

// SubmitAnswer records one answer and advances the session by exactly one
// question. Answers are immutable once recorded. When the last item is
// answered the outcome is computed and the session destroyed.
func (s *Store) SubmitAnswer(id, requester, itemID string, answer bool) (Step, error) {
	session, err := s.lookup(id)
	if err != nil {
		return Step{}, err
	}
	if session.Owner != requester {
		return Step{}, ErrNotSessionOwner
	}

	session.mu.Lock()

	current := session.checklist[session.index]
	if current.ID != itemID {
		session.mu.Unlock()
		return Step{}, ErrUnknownItem
	}

	session.answers[current.ID] = answer
	session.index++
	session.lastActive = s.now()

	total := len(session.checklist)
	if session.index < total {
		next := session.checklist[session.index]
		step := Step{Next: &next, Position: session.index + 1, Total: total}
		session.mu.Unlock()
		return step, nil
	}

	outcome := session.outcomeLocked()
	session.mu.Unlock()
	s.destroy(session)
	return Step{Position: total, Total: total, Outcome: &outcome}, nil
}

// Cancel destroys a live session on the owner's request.
func (s *Store) Cancel(id, requester string) error {
	session, err := s.lookup(id)
	if err != nil {
		return err
	}
	if session.Owner != requester {
		return ErrNotSessionOwner
	}
	s.destroy(session)
	return nil
}

// lookup resolves a session id, lazily expiring it first.
func (s *Store) lookup(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	session.mu.Lock()
	expired := s.now().Sub(session.lastActive) > s.ttl
	session.mu.Unlock()
	if expired {
		s.destroyLocked(session)
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) destroy(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyLocked(session)
}

func (s *Store) destroyLocked(session *Session) {
	delete(s.sessions, session.ID)
	pair := ownerDoc{owner: session.Owner, document: session.Document}
	if s.byPair[pair] == session.ID {
		delete(s.byPair, pair)
	}
}

func (s *Store) sweepLocked() {
	cutoff := s.now().Add(-s.ttl)
	for _, session := range s.sessions {
		session.mu.Lock()
		stale := session.lastActive.Before(cutoff)
		session.mu.Unlock()
		if stale {
			s.destroyLocked(session)
		}
	}
}

// outcomeLocked evaluates the completed checklist. Every blocking item
// answered yes upgrades the decision; any blocking no confirms the HOLD.
func (session *Session) outcomeLocked() Outcome {
	var satisfied, failed []Item
	for _, item := range session.checklist {
		if !item.Blocking {
			continue
		}
		if session.answers[item.ID] {
			satisfied = append(satisfied, item)
		} else {
			failed = append(failed, item)
		}
	}

	responses := make(map[string]bool, len(session.answers))
	for id, answer := range session.answers {
		responses[id] = answer
	}

	if len(failed) == 0 {
		return Outcome{
			Decision:          "BID — conditional",
			Upgraded:          true,
			Summary:           upgradeSummary(satisfied),
			SatisfiedBlocking: satisfied,
			Responses:         responses,
		}
	}
	return Outcome{
		Decision:       decision.Hold,
		Summary:        confirmSummary(failed),
		FailedBlocking: failed,
		Responses:      responses,
	}
}

func upgradeSummary(satisfied []Item) string {
	lines := []string{
		"DECISION UPGRADED: BID (CONDITIONAL)",
		"",
		"You meet all blocking compliance requirements:",
	}
	for _, item := range satisfied {
		lines = append(lines, "- "+item.Question)
	}
	lines = append(lines, "", "Proceed to pricing and supplier validation.")
	return strings.Join(lines, "\n")
}

func confirmSummary(failed []Item) string {
	lines := []string{
		"DECISION REMAINS: HOLD",
		"",
		"Blocking compliance gaps detected:",
	}
	for _, item := range failed {
		lines = append(lines, "- "+item.Question)
	}
	lines = append(lines, "", "Resolve these items before bidding.")
	return strings.Join(lines, "\n")
}
