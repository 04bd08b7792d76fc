package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"babykicks-backend/internal/middleware"
	"babykicks-backend/internal/models"
	"babykicks-backend/internal/services"
)

type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get returns the stored profile plus the derived gestational progress. The
// week/day pair is always recomputed from the due date, never stored.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	profile := h.profiles.Get(r.Context(), accountID)
	if profile == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"profile": nil,
		})
		return
	}

	week, day := models.Gestation(profile.DueDate, nowInProfileZone(profile))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
		"week":    week,
		"day":     day,
	})
}

// Update validates and persists the profile under the caller's account key.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.profiles.Save(r.Context(), accountID, &profile); err != nil {
		handleServiceError(w, r, err)
		return
	}

	week, day := models.Gestation(profile.DueDate, nowInProfileZone(&profile))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
		"week":    week,
		"day":     day,
	})
}

// nowInProfileZone resolves "today" in the profile's timezone so the derived
// week flips at the user's midnight, not the server's.
func nowInProfileZone(profile *models.UserProfile) time.Time {
	loc, err := time.LoadLocation(profile.Timezone)
	if err != nil {
		return time.Now()
	}
	return time.Now().In(loc)
}
