package services

import (
	"strings"
	"testing"
	"time"

	"babykicks-backend/internal/models"
)

func sessionOn(start time.Time, count int) models.KickSession {
	return models.KickSession{
		ID:        start.Format(time.RFC3339),
		StartTime: start.UnixMilli(),
		Count:     count,
	}
}

func TestBuildTrends_DailyTotalsAndAverage(t *testing.T) {
	loc := time.UTC
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, loc)

	history := []models.KickSession{
		sessionOn(today, 4),
		sessionOn(today.Add(3*time.Hour), 6),
		sessionOn(today.AddDate(0, 0, -1), 5),
		sessionOn(today.AddDate(0, 0, -30), 99), // outside the 1w range
	}

	report := BuildTrends(history, Range1W, models.LangEN, loc)

	if report.Range != Range1W {
		t.Errorf("range = %q, want %q", report.Range, Range1W)
	}
	if len(report.DailyTotals) != 2 {
		t.Fatalf("daily totals = %v, want 2 days", report.DailyTotals)
	}
	// Sorted ascending by date: yesterday then today.
	if report.DailyTotals[0].Count != 5 || report.DailyTotals[1].Count != 10 {
		t.Errorf("daily counts = %d/%d, want 5/10", report.DailyTotals[0].Count, report.DailyTotals[1].Count)
	}
	// (5+10)/2 rounded
	if report.AverageDaily != 8 {
		t.Errorf("average daily = %d, want 8", report.AverageDaily)
	}
}

func TestBuildTrends_HourlyBuckets(t *testing.T) {
	loc := time.UTC
	now := time.Now().In(loc)
	base := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	history := []models.KickSession{
		sessionOn(base.Add(21*time.Hour), 3),
		sessionOn(base.Add(21*time.Hour+30*time.Minute), 4),
		sessionOn(base.Add(8*time.Hour), 2),
	}

	report := BuildTrends(history, RangeAll, models.LangEN, loc)
	if len(report.HourlyActivity) != 24 {
		t.Fatalf("hourly buckets = %d, want 24", len(report.HourlyActivity))
	}
	if report.HourlyActivity[21].Count != 7 {
		t.Errorf("bucket 21 = %d, want 7", report.HourlyActivity[21].Count)
	}
	if report.HourlyActivity[8].Count != 2 {
		t.Errorf("bucket 8 = %d, want 2", report.HourlyActivity[8].Count)
	}
	if report.HourlyActivity[0].Count != 0 {
		t.Errorf("bucket 0 = %d, want 0", report.HourlyActivity[0].Count)
	}
}

func TestBuildTrends_PatternSummary(t *testing.T) {
	loc := time.UTC
	now := time.Now().In(loc)
	base := time.Date(now.Year(), now.Month(), now.Day(), 20, 0, 0, 0, loc)

	// Fewer than 3 sessions: deterministic not-enough-data strings.
	short := []models.KickSession{sessionOn(base, 5)}
	if got := BuildTrends(short, Range1W, models.LangEN, loc).PatternSummary; !strings.Contains(got, "Not enough data") {
		t.Errorf("en short summary = %q", got)
	}
	if got := BuildTrends(short, Range1W, models.LangZH, loc).PatternSummary; !strings.Contains(got, "数据不足") {
		t.Errorf("zh short summary = %q", got)
	}

	// Three sessions clustered at hour 20 name it as the peak window.
	history := []models.KickSession{
		sessionOn(base, 5),
		sessionOn(base.AddDate(0, 0, -1), 6),
		sessionOn(base.AddDate(0, 0, -2), 7),
	}
	got := BuildTrends(history, Range1W, models.LangEN, loc).PatternSummary
	if !strings.Contains(got, "20:00 - 21:00") {
		t.Errorf("summary %q should name the 20:00 peak window", got)
	}
}

func TestBuildTodayStats(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, loc)

	history := []models.KickSession{
		sessionOn(today, 6),
		sessionOn(today.Add(time.Hour), 4),
		sessionOn(today.AddDate(0, 0, -1), 9),
	}

	stats := BuildTodayStats(history, loc)
	if stats.Sessions != 2 || stats.ValidKicks != 10 {
		t.Errorf("today = %d sessions / %d kicks, want 2/10", stats.Sessions, stats.ValidKicks)
	}

	if empty := BuildTodayStats(nil, loc); empty.Sessions != 0 || empty.ValidKicks != 0 {
		t.Errorf("empty history stats = %+v", empty)
	}
}
