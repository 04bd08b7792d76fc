package models

// WeeklyInsight is the cached weekly advisory content. Pure cache value: fetched
// at most once per (week, language, timezone) key, never invalidated.
type WeeklyInsight struct {
	Week            int    `json:"week"`
	MomSymptoms     string `json:"momSymptoms"`
	BabyDevelopment string `json:"babyDevelopment"`
	MedicalAdvice   string `json:"medicalAdvice"`
	Nutrition       string `json:"nutrition"`
	Shopping        string `json:"shopping"`
}
