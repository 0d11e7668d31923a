package bot

import (
	"sync"

	"cfdnsbot/internal/model"
)

// flowStep marks where a user is inside a record flow. These flows are
// bot-level conveniences, separate from the onboarding wizard and its
// durable session store.
type flowStep int

const (
	stepNone flowStep = iota
	stepAddName
	stepAddContent
	stepAwaitFile
	stepEditContent
)

type flowState struct {
	step       flowStep
	recordType string
	name       string
	content    string
	ttl        int
	proxied    bool
	record     *model.DNSRecord // edit/remove target
	zones      []model.Zone     // switch-zone choices
}

// flowManager keys in-flight record flows by user id. Last writer wins, as
// with wizard sessions: starting a new flow replaces the old one.
type flowManager struct {
	mu     sync.Mutex
	states map[int64]*flowState
}

func newFlowManager() *flowManager {
	return &flowManager{states: make(map[int64]*flowState)}
}

func (m *flowManager) get(userID int64) *flowState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[userID]
}

func (m *flowManager) set(userID int64, st *flowState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = st
}

func (m *flowManager) active(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[userID]
	return ok && st.step != stepNone
}

func (m *flowManager) clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}
