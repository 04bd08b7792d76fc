package services

import (
	"context"
	"log"
	"sort"

	"babykicks-backend/internal/models"
)

// comparableHourWindow is how far (in hours, absolute difference) another
// session's start hour may be from the current one to count as "same time of
// day". The comparison does not wrap across midnight: 23:00 and 01:00 are not
// treated as close. This matches the shipped behavior and stays until a
// correctness bug report says otherwise.
const comparableHourWindow = 3

// maxComparableSessions caps the personal-average context at the most recent
// sessions in the window.
const maxComparableSessions = 10

// Evaluator classifies finished sessions. With no Gemini client configured it
// runs a deterministic guideline rule; otherwise it issues one remote analysis
// request per session. Evaluate never returns an error: every failure path
// resolves to a conservative "recorded, no anomaly" result.
type Evaluator struct {
	source AnalysisSource
}

// AnalysisSource is the remote analysis capability. The Gemini client is the
// only production implementation.
type AnalysisSource interface {
	AnalyzeSession(ctx context.Context, session models.KickSession, avgKicks float64, hourOfDay int, lang models.Language) (*models.AnomalyAnalysis, error)
}

func NewEvaluator(gemini *GeminiClient) *Evaluator {
	e := &Evaluator{}
	if gemini != nil {
		e.source = gemini
	}
	return e
}

// Evaluate computes the anomaly classification for a finished session given
// the account's saved history.
func (e *Evaluator) Evaluate(ctx context.Context, session models.KickSession, history []models.KickSession, lang models.Language) models.AnomalyAnalysis {
	disclaimer := disclaimerSuffix(lang)

	if e.source == nil {
		return degradedAnalysis(session, lang, disclaimer)
	}

	hourOfDay := session.StartHour()
	avgKicks := personalAverage(history, hourOfDay)

	result, err := e.source.AnalyzeSession(ctx, session, avgKicks, hourOfDay, lang)
	if err != nil {
		log.Printf("anomaly analysis for session %s fell back to neutral: %v", session.ID, err)
		return models.AnomalyAnalysis{
			IsAnomaly:      false,
			Severity:       models.SeverityNone,
			Message:        sessionRecordedMessage(lang) + disclaimer,
			MedicalContext: "",
		}
	}

	result.Message += disclaimer
	return *result
}

// degradedAnalysis is the rule used when no remote advisory capability exists:
// fewer than 3 valid movements over more than an hour is flagged Medium.
func degradedAnalysis(session models.KickSession, lang models.Language, disclaimer string) models.AnomalyAnalysis {
	isLow := session.Count < 3 && session.DurationSeconds > 3600
	if isLow {
		return models.AnomalyAnalysis{
			IsAnomaly:      true,
			Severity:       models.SeverityMedium,
			Message:        lowMovementMessage(lang) + disclaimer,
			MedicalContext: guidelineContext(lang),
		}
	}
	return models.AnomalyAnalysis{
		IsAnomaly:      false,
		Severity:       models.SeverityNone,
		Message:        normalMovementMessage(lang),
		MedicalContext: guidelineContext(lang),
	}
}

// personalAverage computes the mean valid-kick count over the most recent
// sessions whose start hour lies within the comparable window. Returns 0 when
// no session qualifies.
func personalAverage(history []models.KickSession, hourOfDay int) float64 {
	comparable := make([]models.KickSession, 0, len(history))
	for _, h := range history {
		diff := h.StartHour() - hourOfDay
		if diff < 0 {
			diff = -diff
		}
		if diff <= comparableHourWindow {
			comparable = append(comparable, h)
		}
	}
	if len(comparable) == 0 {
		return 0
	}

	sort.Slice(comparable, func(i, j int) bool {
		return comparable[i].StartTime < comparable[j].StartTime
	})
	if len(comparable) > maxComparableSessions {
		comparable = comparable[len(comparable)-maxComparableSessions:]
	}

	total := 0
	for _, h := range comparable {
		total += h.Count
	}
	return float64(total) / float64(len(comparable))
}
