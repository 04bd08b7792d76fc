package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"babykicks-backend/internal/models"
	"babykicks-backend/internal/storage"
)

// InsightService answers weekly advisory requests through a fetch-once cache
// keyed by (week, language, timezone). Entries never expire; a distinct key is
// produced per language and per timezone even for the same week, because both
// change the content. GetInsight never fails: an unavailable or broken remote
// yields a localized placeholder that is not cached, so a retry can still
// populate the key.
type InsightService struct {
	cache  storage.Store
	source InsightSource
}

// InsightSource is the remote advisory capability. The Gemini client is the
// only production implementation.
type InsightSource interface {
	GenerateInsight(ctx context.Context, week int, lang models.Language, timezone string) (*models.WeeklyInsight, error)
}

func NewInsightService(cache storage.Store, gemini *GeminiClient) *InsightService {
	s := &InsightService{cache: cache}
	if gemini != nil {
		s.source = gemini
	}
	return s
}

func insightKey(week int, lang models.Language, timezone string) string {
	return fmt.Sprintf("insight:%d:%s:%s", week, lang, timezone)
}

func (s *InsightService) GetInsight(ctx context.Context, week int, lang models.Language, timezone string) models.WeeklyInsight {
	key := insightKey(week, lang, timezone)

	if raw, err := s.cache.Get(ctx, key); err == nil && raw != nil {
		var cached models.WeeklyInsight
		if json.Unmarshal(raw, &cached) == nil {
			return cached
		}
		log.Printf("insight cache entry %q is corrupt, refetching", key)
	}

	if s.source == nil {
		return placeholderInsight(week, lang)
	}

	insight, err := s.source.GenerateInsight(ctx, week, lang, timezone)
	if err != nil {
		log.Printf("weekly insight fetch failed for %q: %v", key, err)
		return placeholderInsight(week, lang)
	}

	if raw, err := json.Marshal(insight); err == nil {
		if err := s.cache.Set(ctx, key, raw); err != nil {
			log.Printf("failed to cache insight %q: %v", key, err)
		}
	}

	return *insight
}
