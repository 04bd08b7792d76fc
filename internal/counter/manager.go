package counter

import (
	"context"
	"sync"

	"babykicks-backend/internal/models"
)

// Manager owns one Engine per account. Engines are created on demand and kept
// for the lifetime of the process; growth is bounded by the number of active
// accounts.
type Manager struct {
	mu       sync.Mutex
	engines  map[string]*Engine
	history  HistoryAppender
	dispatch DispatchFunc
}

func NewManager(history HistoryAppender, dispatch DispatchFunc) *Manager {
	return &Manager{
		engines:  make(map[string]*Engine),
		history:  history,
		dispatch: dispatch,
	}
}

// Engine returns the account's engine, creating it if necessary.
func (m *Manager) Engine(accountID string) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.engines[accountID]
	if !ok {
		e = NewEngine(accountID, m.history, m.dispatch)
		m.engines[accountID] = e
	}
	return e
}

// ApplyAnalysis routes an evaluator result to the account's engine. When no
// engine exists (for example after a restart), the patch goes straight to the
// history store.
func (m *Manager) ApplyAnalysis(ctx context.Context, accountID, sessionID string, analysis models.AnomalyAnalysis) bool {
	m.mu.Lock()
	e, ok := m.engines[accountID]
	m.mu.Unlock()

	if ok {
		return e.ApplyAnalysis(ctx, sessionID, analysis)
	}
	found, err := m.history.PatchAnalysis(ctx, accountID, sessionID, analysis)
	return err == nil && found
}
