package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"babykicks-backend/internal/counter"
	"babykicks-backend/internal/middleware"
	"babykicks-backend/internal/models"
	"babykicks-backend/internal/services"
)

// SessionHandler exposes the session state machine over HTTP. Each account has
// one engine; all transition errors map to CONFLICT because they mean the
// machine is not in the state the request assumed.
type SessionHandler struct {
	manager  *counter.Manager
	history  *services.HistoryService
	profiles *services.ProfileService
}

func NewSessionHandler(manager *counter.Manager, history *services.HistoryService, profiles *services.ProfileService) *SessionHandler {
	return &SessionHandler{manager: manager, history: history, profiles: profiles}
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req struct {
		Method models.CountMethod `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if !req.Method.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "method must be 1h or 2h", r))
		return
	}

	// Snapshot the gestational week at session start; it is analysis context,
	// never recomputed later.
	week := 0
	if profile := h.profiles.Get(r.Context(), accountID); profile != nil {
		week, _ = models.Gestation(profile.DueDate, nowInProfileZone(profile))
	}

	engine := h.manager.Engine(accountID)
	if err := engine.Start(req.Method, week); err != nil {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", err.Error(), r))
		return
	}

	writeJSON(w, http.StatusCreated, engine.Snapshot())
}

func (h *SessionHandler) Tap(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	engine := h.manager.Engine(accountID)
	engine.Tap()
	writeJSON(w, http.StatusOK, engine.Snapshot())
}

func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	writeJSON(w, http.StatusOK, h.manager.Engine(accountID).Snapshot())
}

func (h *SessionHandler) Finish(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	engine := h.manager.Engine(accountID)
	if err := engine.Finish(); err != nil {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", err.Error(), r))
		return
	}
	writeJSON(w, http.StatusOK, engine.Snapshot())
}

func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	engine := h.manager.Engine(accountID)
	session, err := engine.Save(r.Context())
	if err != nil {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", err.Error(), r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": session,
	})
}

func (h *SessionHandler) Discard(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	engine := h.manager.Engine(accountID)
	if err := engine.Discard(); err != nil {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", err.Error(), r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session discarded"})
}

// List returns the account's saved history, most recent first. Merge order is
// unspecified, so the sort happens here.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	history := h.history.Load(r.Context(), accountID)
	sort.Slice(history, func(i, j int) bool {
		return history[i].StartTime > history[j].StartTime
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": history,
	})
}
