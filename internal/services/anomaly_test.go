package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"babykicks-backend/internal/models"
)

type stubAnalysisSource struct {
	result   *models.AnomalyAnalysis
	err      error
	calls    int
	avgKicks float64
	hour     int
}

func (s *stubAnalysisSource) AnalyzeSession(_ context.Context, _ models.KickSession, avgKicks float64, hourOfDay int, _ models.Language) (*models.AnomalyAnalysis, error) {
	s.calls++
	s.avgKicks = avgKicks
	s.hour = hourOfDay
	if s.err != nil {
		return nil, s.err
	}
	copied := *s.result
	return &copied, nil
}

// sessionAtHour builds a session whose local start hour is fixed, so the
// window comparison in personalAverage is deterministic under any TZ.
func sessionAtHour(id string, hour, count int, daysAgo int) models.KickSession {
	start := time.Date(2025, 6, 10, hour, 15, 0, 0, time.Local).AddDate(0, 0, -daysAgo)
	return models.KickSession{
		ID:        id,
		StartTime: start.UnixMilli(),
		Count:     count,
	}
}

func TestEvaluator_DegradedRule(t *testing.T) {
	e := NewEvaluator(nil)
	ctx := context.Background()

	tests := []struct {
		name         string
		count        int
		duration     int
		wantSeverity models.AnomalySeverity
		wantAnomaly  bool
	}{
		{"few kicks over long session", 2, 4000, models.SeverityMedium, true},
		{"few kicks but short session", 2, 3600, models.SeverityNone, false},
		{"enough kicks over long session", 5, 4000, models.SeverityNone, false},
		{"zero kicks exactly at the hour", 0, 3600, models.SeverityNone, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			session := models.KickSession{ID: "s", Count: tc.count, DurationSeconds: tc.duration}
			got := e.Evaluate(ctx, session, nil, models.LangEN)
			if got.Severity != tc.wantSeverity || got.IsAnomaly != tc.wantAnomaly {
				t.Errorf("severity=%q anomaly=%v, want %q/%v", got.Severity, got.IsAnomaly, tc.wantSeverity, tc.wantAnomaly)
			}
			if got.MedicalContext == "" {
				t.Error("degraded result should carry the guideline context")
			}
		})
	}
}

func TestEvaluator_DegradedLocalization(t *testing.T) {
	e := NewEvaluator(nil)
	session := models.KickSession{ID: "s", Count: 1, DurationSeconds: 5000}

	zh := e.Evaluate(context.Background(), session, nil, models.LangZH)
	en := e.Evaluate(context.Background(), session, nil, models.LangEN)
	if zh.Message == en.Message {
		t.Errorf("zh and en messages should differ, both %q", zh.Message)
	}
	if zh.Message != lowMovementMessage(models.LangZH)+disclaimerSuffix(models.LangZH) {
		t.Errorf("zh message = %q", zh.Message)
	}
}

func TestEvaluator_RemoteSuccessAppendsDisclaimer(t *testing.T) {
	src := &stubAnalysisSource{result: &models.AnomalyAnalysis{
		IsAnomaly: true,
		Severity:  models.SeverityLow,
		Message:   "Slightly below your usual pattern.",
	}}
	e := &Evaluator{source: src}

	got := e.Evaluate(context.Background(), models.KickSession{ID: "s"}, nil, models.LangEN)
	want := "Slightly below your usual pattern." + disclaimerSuffix(models.LangEN)
	if got.Message != want {
		t.Errorf("message = %q, want %q", got.Message, want)
	}
	if got.Severity != models.SeverityLow {
		t.Errorf("severity = %q, want %q", got.Severity, models.SeverityLow)
	}
	if src.calls != 1 {
		t.Errorf("remote called %d times, want 1", src.calls)
	}
}

func TestEvaluator_RemoteFailureIsNeutral(t *testing.T) {
	src := &stubAnalysisSource{err: errors.New("quota exceeded")}
	e := &Evaluator{source: src}

	got := e.Evaluate(context.Background(), models.KickSession{ID: "s", Count: 0, DurationSeconds: 7200}, nil, models.LangEN)
	if got.IsAnomaly || got.Severity != models.SeverityNone {
		t.Errorf("failed analysis must resolve neutral, got severity=%q anomaly=%v", got.Severity, got.IsAnomaly)
	}
	want := sessionRecordedMessage(models.LangEN) + disclaimerSuffix(models.LangEN)
	if got.Message != want {
		t.Errorf("message = %q, want %q", got.Message, want)
	}
}

func TestPersonalAverage_HourWindow(t *testing.T) {
	history := []models.KickSession{
		sessionAtHour("in-1", 20, 10, 1),  // |20-21| = 1, in
		sessionAtHour("in-2", 23, 6, 2),   // |23-21| = 2, in
		sessionAtHour("edge", 18, 8, 3),   // |18-21| = 3, in (inclusive)
		sessionAtHour("out", 9, 100, 4),   // |9-21| = 12, out
	}
	current := sessionAtHour("now", 21, 0, 0)

	avg := personalAverage(history, current.StartHour())
	want := float64(10+6+8) / 3
	if math.Abs(avg-want) > 1e-9 {
		t.Errorf("avg = %v, want %v", avg, want)
	}
}

func TestPersonalAverage_NoWrapAcrossMidnight(t *testing.T) {
	// 23:00 vs 01:00 is 2 hours apart on a clock, but the window comparison
	// is a plain absolute difference, so it does not qualify.
	history := []models.KickSession{sessionAtHour("late", 23, 12, 1)}
	if avg := personalAverage(history, 1); avg != 0 {
		t.Errorf("avg across midnight = %v, want 0", avg)
	}
}

func TestPersonalAverage_CapsAtMostRecentTen(t *testing.T) {
	var history []models.KickSession
	// 12 comparable sessions; the two oldest (count 100) must be dropped.
	for i := 0; i < 12; i++ {
		count := 5
		if i >= 10 {
			count = 100
		}
		// higher daysAgo = older
		history = append(history, sessionAtHour(string(rune('a'+i)), 21, count, i))
	}
	if avg := personalAverage(history, 21); avg != 5 {
		t.Errorf("avg = %v, want 5 (oldest sessions beyond 10 ignored)", avg)
	}
}
