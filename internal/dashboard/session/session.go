// Package session holds the dashboard session state machine.
//
// A Session tracks the selected customer, the dashboard request lifecycle
// and the loaded customer list. Every dashboard request is tagged with a
// Token; completions whose token is no longer current are discarded so a
// late response can never overwrite a newer selection.
package session

import (
	"sync"

	"creditboard/internal/dashboard/models"
)

// Phase is the dashboard request lifecycle.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseError   Phase = "error"
)

func (p Phase) String() string {
	return string(p)
}

// Tone classifies a status line.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneGood    Tone = "good"
	ToneWarn    Tone = "warn"
)

// Status is the user-visible status line.
type Status struct {
	Text string `json:"text"`
	Tone Tone   `json:"tone"`
}

// Token identifies one dashboard request: the customer it targeted and
// its position in the request sequence.
type Token struct {
	CustomerID models.CustomerID
	Seq        uint64
}

// IsCurrent reports whether a completion for tok may still be applied,
// given the selection and the latest issued sequence at completion time.
// A token is stale once the selection moved away from its customer or a
// newer request has been issued.
func IsCurrent(tok Token, selected models.CustomerID, latest uint64) bool {
	return !tok.CustomerID.IsZero() && tok.CustomerID == selected && tok.Seq == latest
}

// State is a consistent copy of a session taken under its lock.
type State struct {
	Selected  models.CustomerID
	Phase     Phase
	Query     models.DashboardQuery
	Customers []models.CustomerSummary
	// Dashboard is the last snapshot that completed successfully. It is
	// kept across failures and selection changes.
	Dashboard *models.DashboardSnapshot
	Status    Status
	// Version increases with every change, so consumers can order copies.
	Version uint64
}

// Visible returns the snapshot to display for the current selection, or
// nil when the last good snapshot belongs to another customer.
func (s State) Visible() *models.DashboardSnapshot {
	if s.Dashboard == nil || s.Selected.IsZero() || s.Dashboard.CustomerID != s.Selected {
		return nil
	}
	return s.Dashboard
}

// Session is safe for concurrent use. Customer-list and dashboard updates
// each replace their own fields in a single assignment.
type Session struct {
	mu        sync.Mutex
	selected  models.CustomerID
	phase     Phase
	query     models.DashboardQuery
	customers []models.CustomerSummary
	dashboard *models.DashboardSnapshot
	seq       uint64
	status    Status
	version   uint64
}

// New returns an idle session with no customers and the given query.
func New(query models.DashboardQuery) *Session {
	return &Session{
		phase:  PhaseIdle,
		query:  query.Normalize(),
		status: Status{Tone: ToneNeutral},
	}
}

// Select makes id the current selection and starts a dashboard request.
// A blank id changes nothing and returns false.
func (s *Session) Select(id models.CustomerID) (Token, models.DashboardQuery, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id.IsZero() {
		return Token{}, s.query, false
	}
	s.selected = id
	s.version++
	return s.beginLocked(), s.query, true
}

// SetFilter updates one query filter. When a customer is selected it also
// starts a new dashboard request and returns started=true.
func (s *Session) SetFilter(field models.FilterField, value string) (tok Token, query models.DashboardQuery, started bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.query.With(field, value)
	if err != nil {
		return Token{}, s.query, false, err
	}
	s.query = next
	s.version++
	if s.selected.IsZero() {
		return Token{}, s.query, false, nil
	}
	return s.beginLocked(), s.query, true, nil
}

// Begin starts a new dashboard request for the current selection. It
// returns false when nothing is selected.
func (s *Session) Begin() (Token, models.DashboardQuery, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected.IsZero() {
		return Token{}, s.query, false
	}
	return s.beginLocked(), s.query, true
}

func (s *Session) beginLocked() Token {
	s.seq++
	s.version++
	s.phase = PhaseLoading
	return Token{CustomerID: s.selected, Seq: s.seq}
}

// IsCurrent reports whether tok is still the live request.
func (s *Session) IsCurrent(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return IsCurrent(tok, s.selected, s.seq)
}

// Complete applies a successful fetch together with its status line.
// Stale tokens are ignored and reported with false.
func (s *Session) Complete(tok Token, snap models.DashboardSnapshot, status Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !IsCurrent(tok, s.selected, s.seq) {
		return false
	}
	snap.CustomerID = tok.CustomerID
	s.dashboard = &snap
	s.phase = PhaseReady
	s.status = status
	s.version++
	return true
}

// Fail records a failed fetch and its status line. The last good snapshot
// is left in place.
func (s *Session) Fail(tok Token, status Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !IsCurrent(tok, s.selected, s.seq) {
		return false
	}
	s.phase = PhaseError
	s.status = status
	s.version++
	return true
}

// ReplaceCustomers swaps in a freshly loaded list. Later entries repeating
// an id are dropped and returned so the caller can report them.
func (s *Session) ReplaceCustomers(list []models.CustomerSummary) (duplicates []models.CustomerID) {
	seen := make(map[models.CustomerID]struct{}, len(list))
	kept := make([]models.CustomerSummary, 0, len(list))
	for _, c := range list {
		if _, ok := seen[c.ID]; ok {
			duplicates = append(duplicates, c.ID)
			continue
		}
		seen[c.ID] = struct{}{}
		kept = append(kept, c)
	}

	s.mu.Lock()
	s.customers = kept
	s.version++
	s.mu.Unlock()
	return duplicates
}

// SetStatus replaces the status line.
func (s *Session) SetStatus(text string, tone Tone) {
	s.mu.Lock()
	s.status = Status{Text: text, Tone: tone}
	s.version++
	s.mu.Unlock()
}

// Announce sets the status line for an in-flight request. It does nothing
// once tok has been superseded.
func (s *Session) Announce(tok Token, status Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !IsCurrent(tok, s.selected, s.seq) || s.phase != PhaseLoading {
		return false
	}
	s.status = status
	s.version++
	return true
}

// Snapshot returns a consistent copy of the session.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Selected:  s.selected,
		Phase:     s.phase,
		Query:     s.query,
		Customers: s.customers,
		Dashboard: s.dashboard,
		Status:    s.status,
		Version:   s.version,
	}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}
