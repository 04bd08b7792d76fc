package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"babykicks-backend/internal/models"
)

// GeminiClient wraps the generative model used for weekly insights and anomaly
// analysis. A nil *GeminiClient means the capability is not configured; callers
// fall back to their deterministic local behavior.
type GeminiClient struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	rateChan chan struct{} // Token bucket
}

func NewGeminiClient(apiKey string, concurrentReqs int) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.5-flash")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)
	model.ResponseMIMEType = "application/json"

	// Token bucket for rate limiting
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiClient{
		client:   client,
		model:    model,
		rateChan: rateChan,
	}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

// acquireRate blocks until a rate slot is available
func (c *GeminiClient) acquireRate(ctx context.Context) error {
	select {
	case <-c.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (c *GeminiClient) releaseRate() {
	c.rateChan <- struct{}{}
}

// GenerateInsight requests the five weekly advisory fields for the given week,
// localized to the language and contextualized by the timezone.
func (c *GeminiClient) GenerateInsight(ctx context.Context, week int, lang models.Language, timezone string) (*models.WeeklyInsight, error) {
	if err := c.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer c.releaseRate()

	prompt := buildInsightPrompt(week, lang, timezone)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	rawText := extractText(resp)
	if rawText == "" {
		return nil, fmt.Errorf("Gemini returned empty insight response")
	}

	var fields struct {
		MomSymptoms     string `json:"momSymptoms"`
		BabyDevelopment string `json:"babyDevelopment"`
		MedicalAdvice   string `json:"medicalAdvice"`
		Nutrition       string `json:"nutrition"`
		Shopping        string `json:"shopping"`
	}
	if err := json.Unmarshal([]byte(trimJSONFences(rawText)), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse insight response: %w", err)
	}

	return &models.WeeklyInsight{
		Week:            week,
		MomSymptoms:     fields.MomSymptoms,
		BabyDevelopment: fields.BabyDevelopment,
		MedicalAdvice:   fields.MedicalAdvice,
		Nutrition:       fields.Nutrition,
		Shopping:        fields.Shopping,
	}, nil
}

// AnalyzeSession asks the model whether a finished session is anomalous given
// the user's personal average for the same time of day.
func (c *GeminiClient) AnalyzeSession(ctx context.Context, session models.KickSession, avgKicks float64, hourOfDay int, lang models.Language) (*models.AnomalyAnalysis, error) {
	if err := c.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer c.releaseRate()

	prompt := buildAnalysisPrompt(session, avgKicks, hourOfDay, lang)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Printf("Gemini Candidate %d stopped due to %s", i, cand.FinishReason)
		}
	}

	rawText := extractText(resp)
	if rawText == "" {
		return nil, fmt.Errorf("Gemini returned empty analysis response")
	}

	var result models.AnomalyAnalysis
	if err := json.Unmarshal([]byte(trimJSONFences(rawText)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	if !result.Severity.Valid() {
		return nil, fmt.Errorf("analysis response carries unknown severity %q", result.Severity)
	}

	return &result, nil
}

func buildInsightPrompt(week int, lang models.Language, timezone string) string {
	return fmt.Sprintf(`I am currently in week %d of pregnancy.
Location/Timezone: %s.
Language: %s.

Provide a JSON response with 5 specific categories.

IMPORTANT FORMATTING RULES:
1. Use a Numbered List for content (e.g., "1. First point\n2. Second point").
2. STRICTLY use the escaped newline sequence '\n' for line breaks within the JSON strings. Do NOT use literal line breaks.
3. Keep descriptions concise (max 3-4 points per category) to ensure the JSON response is not truncated.

For "medicalAdvice", provide specific advice based on the location's medical system (e.g., if in US/California, mention RSV or Tdap if relevant for this week; if in China, mention specific screenings like NT or Sugar tolerance if relevant).
For "shopping", suggest items relevant to the gestational stage (e.g., hospital bag items, stretch mark cream).

Schema:
{
  "momSymptoms": "Physiological changes for mom (numbered list with \n)",
  "babyDevelopment": "Organ and brain development updates (numbered list with \n)",
  "medicalAdvice": "Checkups and vaccines based on location (numbered list with \n)",
  "nutrition": "Dietary focus for this week (numbered list with \n)",
  "shopping": "Recommended purchases (numbered list with \n)"
}`, week, timezone, promptLanguage(lang))
}

func buildAnalysisPrompt(session models.KickSession, avgKicks float64, hourOfDay int, lang models.Language) string {
	return fmt.Sprintf(`Analyze fetal movement session.
Language: %s.

Context:
- Gestational Week: %d
- Method: %s
- Valid Count: %d
- Raw Taps: %d
- Duration: %d min

History Context:
- User usually averages %.1f valid kicks during this time of day (%d:00).

Task: Determine if this is an anomaly.
- Compare against Medical Standard (10 in 2h, or >3 in 1h).
- Compare against Personal History (is it < 50%% of their normal?).

Response JSON:
{
  "isAnomaly": boolean,
  "severity": "low" | "medium" | "high" | "none",
  "message": "Reason for anomaly status. Explain WHY (e.g., 'Count is 50%% lower than your average'). Add a suggestion.",
  "medicalContext": "General medical guideline context."
}`,
		promptLanguage(lang),
		session.WeekOfPregnancy,
		session.Method,
		session.Count,
		session.RawCount,
		session.DurationSeconds/60,
		avgKicks,
		hourOfDay,
	)
}

func promptLanguage(lang models.Language) string {
	if lang == models.LangZH {
		return "Simplified Chinese (zh-CN)"
	}
	return "English"
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func trimJSONFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
