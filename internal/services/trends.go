package services

import (
	"fmt"
	"sort"
	"time"

	"babykicks-backend/internal/models"
)

// TrendsRange selects how far back the daily-totals series reaches.
type TrendsRange string

const (
	Range1W  TrendsRange = "1w"
	Range3W  TrendsRange = "3w"
	Range7W  TrendsRange = "7w"
	RangeAll TrendsRange = "all"
)

func (r TrendsRange) days() int {
	switch r {
	case Range3W:
		return 21
	case Range7W:
		return 49
	case RangeAll:
		return 300
	default:
		return 7
	}
}

type DailyTotal struct {
	Date  string `json:"date"` // YYYY-MM-DD in the profile timezone
	Count int    `json:"count"`
}

type HourBucket struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// TrendsReport is the aggregation behind the trends view: daily valid-kick
// totals, the 24-bucket active-hours distribution, and a deterministic
// localized pattern summary.
type TrendsReport struct {
	Range          TrendsRange  `json:"range"`
	DailyTotals    []DailyTotal `json:"daily_totals"`
	HourlyActivity []HourBucket `json:"hourly_activity"`
	AverageDaily   int          `json:"average_daily"`
	PatternSummary string       `json:"pattern_summary"`
}

// BuildTrends aggregates history for display. Dates resolve in the given
// location so a day boundary follows the user's timezone, not the server's.
func BuildTrends(history []models.KickSession, trendsRange TrendsRange, lang models.Language, loc *time.Location) TrendsReport {
	if loc == nil {
		loc = time.UTC
	}

	cutoff := time.Now().In(loc).AddDate(0, 0, -trendsRange.days())

	grouped := make(map[string]int)
	for _, session := range history {
		start := time.UnixMilli(session.StartTime).In(loc)
		if start.After(cutoff) {
			grouped[start.Format("2006-01-02")] += session.Count
		}
	}

	daily := make([]DailyTotal, 0, len(grouped))
	for date, count := range grouped {
		daily = append(daily, DailyTotal{Date: date, Count: count})
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })

	hourly := make([]HourBucket, 24)
	for h := range hourly {
		hourly[h].Hour = h
	}
	for _, session := range history {
		h := time.UnixMilli(session.StartTime).In(loc).Hour()
		hourly[h].Count += session.Count
	}

	average := 0
	if len(daily) > 0 {
		total := 0
		for _, d := range daily {
			total += d.Count
		}
		average = (total + len(daily)/2) / len(daily)
	}

	return TrendsReport{
		Range:          trendsRange,
		DailyTotals:    daily,
		HourlyActivity: hourly,
		AverageDaily:   average,
		PatternSummary: patternSummary(history, average, len(daily), lang, loc),
	}
}

// patternSummary names the peak activity hour and the recent daily average.
// Deliberately rule-based rather than model-generated, so the trends view works
// with or without the advisory capability.
func patternSummary(history []models.KickSession, averageDaily, daysWithData int, lang models.Language, loc *time.Location) string {
	if len(history) < 3 {
		if lang == models.LangZH {
			return "数据不足，请多记录几天以生成模式分析。"
		}
		return "Not enough data yet. Please record for a few more days to generate pattern analysis."
	}

	hourCounts := make(map[int]int)
	peakHour, peakCount := 0, 0
	for _, session := range history {
		h := time.UnixMilli(session.StartTime).In(loc).Hour()
		hourCounts[h]++
		if hourCounts[h] > peakCount {
			peakCount = hourCounts[h]
			peakHour = h
		}
	}

	window := fmt.Sprintf("%d:00 - %d:00", peakHour, peakHour+1)
	if lang == models.LangZH {
		trend := "数据较少"
		if daysWithData > 1 {
			trend = "保持平稳"
		}
		return fmt.Sprintf("根据过去记录，您的宝宝在 %s 时段最为活跃。近期日均有效胎动约为 %d 次。整体活动趋势%s。", window, averageDaily, trend)
	}
	trend := "limited"
	if daysWithData > 1 {
		trend = "stable"
	}
	return fmt.Sprintf("Based on history, your baby is most active around %s. Recent daily average is %d movements. Trend appears %s.", window, averageDaily, trend)
}

// TodayStats are the dashboard counters: sessions recorded today and their
// valid-kick total, with "today" resolved in the profile timezone.
type TodayStats struct {
	Sessions   int `json:"sessions"`
	ValidKicks int `json:"valid_kicks"`
}

func BuildTodayStats(history []models.KickSession, loc *time.Location) TodayStats {
	if loc == nil {
		loc = time.UTC
	}
	today := time.Now().In(loc).Format("2006-01-02")

	var stats TodayStats
	for _, session := range history {
		if time.UnixMilli(session.StartTime).In(loc).Format("2006-01-02") == today {
			stats.Sessions++
			stats.ValidKicks += session.Count
		}
	}
	return stats
}
