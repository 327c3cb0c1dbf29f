package bot

import "sync"

// Conversation steps. A user is in at most one step at a time; stepDefault
// means free navigation.
const (
	stepDefault       = ""
	stepDepositAmount = "awaiting_deposit_amount"
	stepCustomAmount  = "awaiting_custom_amount"
	stepAdjustTarget  = "awaiting_adjust_target"
	stepAdjustDelta   = "awaiting_adjust_delta"
)

type flowState struct {
	step string
	data map[string]string
}

// StateStore keeps per-user conversation state. All mutation goes through the
// mutex; abandoning a flow (Begin or Clear) drops the collected data with it.
type StateStore struct {
	mu     sync.Mutex
	states map[int64]*flowState
}

func NewStateStore() *StateStore {
	return &StateStore{states: make(map[int64]*flowState)}
}

// Begin enters a step and discards whatever a previous flow collected.
func (s *StateStore) Begin(userID int64, step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = &flowState{step: step, data: make(map[string]string)}
}

// Advance moves to the next step of the current flow, keeping collected data.
func (s *StateStore) Advance(userID int64, step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[userID]; ok {
		st.step = step
		return
	}
	s.states[userID] = &flowState{step: step, data: make(map[string]string)}
}

func (s *StateStore) Step(userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[userID]; ok {
		return st.step
	}
	return stepDefault
}

func (s *StateStore) Put(userID int64, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[userID]; ok {
		st.data[key] = value
	}
}

func (s *StateStore) Get(userID int64, key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[userID]; ok {
		return st.data[key]
	}
	return ""
}

func (s *StateStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}
