package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"babykicks-backend/internal/models"
	"babykicks-backend/internal/storage"
)

const guestHistoryKey = "history:guest"

// HistoryService owns the account-scoped session history: whole-list reads and
// full-replace writes against the key-value store, id-keyed insertion, the
// post-hoc anomaly patch, and the guest-to-account merge performed at login.
type HistoryService struct {
	store storage.Store
}

func NewHistoryService(store storage.Store) *HistoryService {
	return &HistoryService{store: store}
}

// historyKey resolves the storage key: the guest sentinel key for absent or
// guest account ids, an account-scoped key otherwise.
func historyKey(accountID string) string {
	if accountID == "" || accountID == models.GuestAccountID {
		return guestHistoryKey
	}
	return "history:" + accountID
}

// Load returns the account's history. An absent or corrupt blob reads as
// empty and is never surfaced as an error.
func (s *HistoryService) Load(ctx context.Context, accountID string) []models.KickSession {
	raw, err := s.store.Get(ctx, historyKey(accountID))
	if err != nil {
		log.Printf("history read for %q failed, treating as empty: %v", accountID, err)
		return nil
	}
	if raw == nil {
		return nil
	}

	var history []models.KickSession
	if err := json.Unmarshal(raw, &history); err != nil {
		log.Printf("history blob for %q is corrupt, treating as empty: %v", accountID, err)
		return nil
	}
	return history
}

// Save serializes the full list under the account's key (full-replace write).
func (s *HistoryService) Save(ctx context.Context, history []models.KickSession, accountID string) error {
	if history == nil {
		history = []models.KickSession{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to serialize history: %w", err)
	}
	return s.store.Set(ctx, historyKey(accountID), raw)
}

// Append inserts the session unless its id is already present. The id check
// makes insertion idempotent, which is what guards the save transition against
// racing with the async anomaly update.
func (s *HistoryService) Append(ctx context.Context, accountID string, session models.KickSession) error {
	history := s.Load(ctx, accountID)
	for _, existing := range history {
		if existing.ID == session.ID {
			return nil
		}
	}
	history = append(history, session)
	return s.Save(ctx, history, accountID)
}

// PatchAnalysis applies an evaluator result to the stored session with the
// given id. Returns false when no such session exists (it was discarded or
// never saved). Reapplying the same result is a no-op.
func (s *HistoryService) PatchAnalysis(ctx context.Context, accountID, sessionID string, analysis models.AnomalyAnalysis) (bool, error) {
	history := s.Load(ctx, accountID)
	for i := range history {
		if history[i].ID != sessionID {
			continue
		}
		if history[i].AnomalyStatus == analysis.Severity && history[i].AnomalyReason == analysis.Message {
			return true, nil
		}
		history[i].AnomalyStatus = analysis.Severity
		history[i].AnomalyReason = analysis.Message
		return true, s.Save(ctx, history, accountID)
	}
	return false, nil
}

// Merge folds local (pre-login) history into the target account's store: every
// local session whose id is absent from the target is appended, the merged
// list is persisted under the target key and returned. A set union by id, not
// a field-level reconciliation; order beyond "all of remote, then new local
// items" is unspecified, consumers re-sort by start time.
func (s *HistoryService) Merge(ctx context.Context, localHistory []models.KickSession, targetAccountID string) ([]models.KickSession, error) {
	merged := s.Load(ctx, targetAccountID)

	existing := make(map[string]struct{}, len(merged))
	for _, session := range merged {
		existing[session.ID] = struct{}{}
	}

	for _, session := range localHistory {
		if _, ok := existing[session.ID]; ok {
			continue
		}
		merged = append(merged, session)
		existing[session.ID] = struct{}{}
	}

	if err := s.Save(ctx, merged, targetAccountID); err != nil {
		return nil, err
	}
	return merged, nil
}
