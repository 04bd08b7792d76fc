package models

import "time"

// Language of advisory content and user-facing messages.
type Language string

const (
	LangZH Language = "zh"
	LangEN Language = "en"
)

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LangZH || l == LangEN
}

// AccountProvider identifies how the account was established.
type AccountProvider string

const (
	ProviderGoogle AccountProvider = "google"
	ProviderGuest  AccountProvider = "guest"
)

// GuestAccountID is the fixed sentinel used as the storage-key identity for
// unauthenticated users. It is deliberately not a fresh id per logout, so
// repeated logouts keep pointing at the same local history.
const GuestAccountID = "guest"

type AccountInfo struct {
	ID        string          `json:"id"`
	Provider  AccountProvider `json:"provider"`
	Email     string          `json:"email,omitempty"`
	AvatarURL string          `json:"avatar_url,omitempty"`
}

// IsGuest reports whether the account should be treated as unauthenticated.
func (a *AccountInfo) IsGuest() bool {
	return a == nil || a.ID == "" || a.Provider == ProviderGuest
}

// UserProfile holds the onboarding data. The gestational week/day is always
// derived from DueDate, never stored.
type UserProfile struct {
	Name     string       `json:"name"`
	DueDate  string       `json:"due_date"` // YYYY-MM-DD, no time component
	Language Language     `json:"language"`
	Timezone string       `json:"timezone"` // IANA zone name
	Account  *AccountInfo `json:"account,omitempty"`
}

// AccountID resolves the storage-key identity for the profile.
func (p *UserProfile) AccountID() string {
	if p == nil || p.Account.IsGuest() {
		return GuestAccountID
	}
	return p.Account.ID
}

const gestationDays = 280

// Gestation computes the pregnancy week and day-of-week for a due date as of
// the given day. Week is clamped to (0, 42], day to >= 0; out-of-range values
// collapse to 0 so a bad due date never produces a bogus week.
func Gestation(dueDate string, today time.Time) (week, day int) {
	due, err := time.ParseInLocation("2006-01-02", dueDate, today.Location())
	if err != nil {
		return 0, 0
	}

	daysRemaining := calendarDaysBetween(today, due)
	daysElapsed := gestationDays - daysRemaining

	week = daysElapsed / 7
	if week <= 0 || week > 42 {
		week = 0
	}
	day = daysElapsed % 7
	if day < 0 {
		day = 0
	}
	return week, day
}

// calendarDaysBetween counts calendar days from a to b, ignoring clock time.
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	at := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bt := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bt.Sub(at) / (24 * time.Hour))
}
