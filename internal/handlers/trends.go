package handlers

import (
	"net/http"
	"time"

	"babykicks-backend/internal/middleware"
	"babykicks-backend/internal/models"
	"babykicks-backend/internal/services"
)

type TrendsHandler struct {
	history  *services.HistoryService
	profiles *services.ProfileService
}

func NewTrendsHandler(history *services.HistoryService, profiles *services.ProfileService) *TrendsHandler {
	return &TrendsHandler{history: history, profiles: profiles}
}

// Report returns daily totals, the active-hours distribution and the pattern
// summary for the requested range (?range=1w|3w|7w|all, default 1w).
func (h *TrendsHandler) Report(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	trendsRange := services.TrendsRange(r.URL.Query().Get("range"))
	switch trendsRange {
	case services.Range1W, services.Range3W, services.Range7W, services.RangeAll:
	case "":
		trendsRange = services.Range1W
	default:
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "range must be 1w, 3w, 7w or all", r))
		return
	}

	lang, loc := h.localeFor(r, accountID)
	history := h.history.Load(r.Context(), accountID)

	writeJSON(w, http.StatusOK, services.BuildTrends(history, trendsRange, lang, loc))
}

// Today returns the dashboard counters for the current day in the profile
// timezone.
func (h *TrendsHandler) Today(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	_, loc := h.localeFor(r, accountID)
	history := h.history.Load(r.Context(), accountID)

	writeJSON(w, http.StatusOK, services.BuildTodayStats(history, loc))
}

func (h *TrendsHandler) localeFor(r *http.Request, accountID string) (models.Language, *time.Location) {
	lang := models.LangZH
	loc := time.UTC
	if profile := h.profiles.Get(r.Context(), accountID); profile != nil {
		if profile.Language.Valid() {
			lang = profile.Language
		}
		if l, err := time.LoadLocation(profile.Timezone); err == nil {
			loc = l
		}
	}
	return lang, loc
}
