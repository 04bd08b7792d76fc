package models

import (
	"testing"
	"time"
)

func TestGestation(t *testing.T) {
	today := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		dueDate  string
		wantWeek int
		wantDay  int
	}{
		{"mid pregnancy", "2025-09-16", 26, 0},     // 98 days left -> 182 elapsed
		{"due today", "2025-06-10", 40, 0},         // 280 elapsed
		{"one day in", "2026-03-16", 0, 1},         // 279 days left -> week 0
		{"not pregnant yet", "2026-06-10", 0, 0},   // 365 days left -> negative elapsed
		{"overdue past cutoff", "2024-06-10", 0, 1}, // week would exceed 42, day keeps the mod
		{"malformed date", "soon", 0, 0},
		{"empty date", "", 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			week, day := Gestation(tc.dueDate, today)
			if week != tc.wantWeek || day != tc.wantDay {
				t.Errorf("Gestation(%q) = %d/%d, want %d/%d", tc.dueDate, week, day, tc.wantWeek, tc.wantDay)
			}
		})
	}
}

func TestGestation_ClockTimeIgnored(t *testing.T) {
	due := "2025-09-16"
	morning := time.Date(2025, 6, 10, 0, 1, 0, 0, time.UTC)
	night := time.Date(2025, 6, 10, 23, 59, 0, 0, time.UTC)

	w1, d1 := Gestation(due, morning)
	w2, d2 := Gestation(due, night)
	if w1 != w2 || d1 != d2 {
		t.Errorf("same calendar day gave different results: %d/%d vs %d/%d", w1, d1, w2, d2)
	}
}

func TestAccountInfo_IsGuest(t *testing.T) {
	var nilAccount *AccountInfo
	if !nilAccount.IsGuest() {
		t.Error("nil account should be guest")
	}
	if !(&AccountInfo{Provider: ProviderGuest, ID: "guest"}).IsGuest() {
		t.Error("guest provider should be guest")
	}
	if (&AccountInfo{Provider: ProviderGoogle, ID: "google_1"}).IsGuest() {
		t.Error("google account should not be guest")
	}
}

func TestUserProfile_AccountID(t *testing.T) {
	var nilProfile *UserProfile
	if got := nilProfile.AccountID(); got != GuestAccountID {
		t.Errorf("nil profile id = %q, want %q", got, GuestAccountID)
	}
	p := &UserProfile{Account: &AccountInfo{ID: "google_1", Provider: ProviderGoogle}}
	if got := p.AccountID(); got != "google_1" {
		t.Errorf("account id = %q, want google_1", got)
	}
	if got := (&UserProfile{}).AccountID(); got != GuestAccountID {
		t.Errorf("profile without account id = %q, want %q", got, GuestAccountID)
	}
}

func TestCountMethod(t *testing.T) {
	if MethodStandardHour.MaxDuration() != time.Hour {
		t.Error("1h ceiling wrong")
	}
	if MethodExtendedTwoHour.MaxDuration() != 2*time.Hour {
		t.Error("2h ceiling wrong")
	}
	if !MethodStandardHour.Valid() || !MethodExtendedTwoHour.Valid() {
		t.Error("known methods should validate")
	}
	if CountMethod("45m").Valid() {
		t.Error("unknown method should not validate")
	}
}
