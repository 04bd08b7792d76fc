package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"babykicks-backend/internal/models"
	"babykicks-backend/internal/storage"
)

// ProfileService persists one UserProfile per account key.
type ProfileService struct {
	store storage.Store
}

func NewProfileService(store storage.Store) *ProfileService {
	return &ProfileService{store: store}
}

func profileKey(accountID string) string {
	if accountID == "" || accountID == models.GuestAccountID {
		return "profile:guest"
	}
	return "profile:" + accountID
}

// Get returns the stored profile, or nil when none exists yet (onboarding not
// completed). Corrupt blobs read as absent.
func (s *ProfileService) Get(ctx context.Context, accountID string) *models.UserProfile {
	raw, err := s.store.Get(ctx, profileKey(accountID))
	if err != nil || raw == nil {
		return nil
	}
	var profile models.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		log.Printf("profile blob for %q is corrupt, treating as absent: %v", accountID, err)
		return nil
	}
	return &profile
}

func (s *ProfileService) Save(ctx context.Context, accountID string, profile *models.UserProfile) error {
	if err := validateProfile(profile); err != nil {
		return err
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}
	return s.store.Set(ctx, profileKey(accountID), raw)
}

func validateProfile(profile *models.UserProfile) error {
	fieldErrors := make(map[string]string)

	if profile.Name == "" {
		fieldErrors["name"] = "Name is required"
	}
	if _, err := time.Parse("2006-01-02", profile.DueDate); err != nil {
		fieldErrors["due_date"] = "Due date must be YYYY-MM-DD"
	}
	if !profile.Language.Valid() {
		fieldErrors["language"] = "Language must be zh or en"
	}
	if profile.Timezone == "" {
		fieldErrors["timezone"] = "Timezone is required"
	} else if _, err := time.LoadLocation(profile.Timezone); err != nil {
		fieldErrors["timezone"] = "Unknown IANA timezone"
	}

	if len(fieldErrors) > 0 {
		return &ValidationError{Fields: fieldErrors}
	}
	return nil
}
