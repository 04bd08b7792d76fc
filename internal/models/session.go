package models

import "time"

// CountMethod selects the session ceiling: standard one hour or extended two hours.
type CountMethod string

const (
	MethodStandardHour    CountMethod = "1h"
	MethodExtendedTwoHour CountMethod = "2h"
)

// MaxDuration returns the auto-stop ceiling for the method.
func (m CountMethod) MaxDuration() time.Duration {
	if m == MethodExtendedTwoHour {
		return 2 * time.Hour
	}
	return time.Hour
}

// Valid reports whether m is one of the two supported methods.
func (m CountMethod) Valid() bool {
	return m == MethodStandardHour || m == MethodExtendedTwoHour
}

// AnomalySeverity is the post-hoc medical concern flag attached to a session.
type AnomalySeverity string

const (
	SeverityNone   AnomalySeverity = "none"
	SeverityLow    AnomalySeverity = "low"
	SeverityMedium AnomalySeverity = "medium"
	SeverityHigh   AnomalySeverity = "high"
)

// Valid reports whether s is a known severity value.
func (s AnomalySeverity) Valid() bool {
	switch s {
	case SeverityNone, SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// KickSession is one bounded counting interval. Immutable once saved, except the
// anomaly fields, which are patched at most once when async analysis completes.
type KickSession struct {
	ID              string          `json:"id"`
	StartTime       int64           `json:"start_time"` // epoch milliseconds
	EndTime         int64           `json:"end_time"`   // epoch milliseconds
	DurationSeconds int             `json:"duration_seconds"`
	Count           int             `json:"count"`     // debounced valid movements
	RawCount        int             `json:"raw_count"` // total taps before debouncing
	Method          CountMethod     `json:"method"`
	WeekOfPregnancy int             `json:"week_of_pregnancy"`
	AnomalyStatus   AnomalySeverity `json:"anomaly_status"`
	AnomalyReason   string          `json:"anomaly_reason,omitempty"`
}

// StartHour returns the local hour of day (0-23) the session started at.
func (s *KickSession) StartHour() int {
	return time.UnixMilli(s.StartTime).Hour()
}

// AnomalyAnalysis is the transient evaluator result. Only Severity and Message
// are folded back into a KickSession record.
type AnomalyAnalysis struct {
	IsAnomaly      bool            `json:"isAnomaly"`
	Severity       AnomalySeverity `json:"severity"`
	Message        string          `json:"message"`
	MedicalContext string          `json:"medicalContext"`
}
