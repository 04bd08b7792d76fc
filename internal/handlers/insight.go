package handlers

import (
	"net/http"
	"strconv"

	"babykicks-backend/internal/middleware"
	"babykicks-backend/internal/models"
	"babykicks-backend/internal/services"
)

type InsightHandler struct {
	insights *services.InsightService
	profiles *services.ProfileService
}

func NewInsightHandler(insights *services.InsightService, profiles *services.ProfileService) *InsightHandler {
	return &InsightHandler{insights: insights, profiles: profiles}
}

// Weekly returns the advisory content for the caller's current week. Language
// and timezone come from the profile; week defaults to the derived gestational
// week but can be overridden with ?week= for browsing other weeks.
func (h *InsightHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	profile := h.profiles.Get(r.Context(), accountID)
	if profile == nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Complete onboarding before requesting insights", r))
		return
	}

	week, _ := models.Gestation(profile.DueDate, nowInProfileZone(profile))
	if q := r.URL.Query().Get("week"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 42 {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "week must be between 1 and 42", r))
			return
		}
		week = n
	}
	if week == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Gestational week could not be determined from the due date", r))
		return
	}

	insight := h.insights.GetInsight(r.Context(), week, profile.Language, profile.Timezone)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"insight": insight,
	})
}
