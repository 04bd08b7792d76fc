package services

import (
	"context"
	"time"

	"babykicks-backend/internal/middleware"
	"babykicks-backend/internal/models"
)

// Provider is the identity capability. The shipped implementation is a mock;
// a real identity provider would substitute behind the same interface without
// touching the session engine or history code.
type Provider interface {
	Login(ctx context.Context) (models.AccountInfo, error)
	Logout(ctx context.Context) error
}

// MockGoogleProvider simulates the Google sign-in flow with a fixed account
// and an artificial delay standing in for the network round trip.
type MockGoogleProvider struct {
	Delay time.Duration
}

func (p *MockGoogleProvider) Login(ctx context.Context) (models.AccountInfo, error) {
	select {
	case <-time.After(p.Delay):
	case <-ctx.Done():
		return models.AccountInfo{}, ctx.Err()
	}
	return models.AccountInfo{
		ID:        "google_1092837465",
		Provider:  models.ProviderGoogle,
		Email:     "mommy@gmail.com",
		AvatarURL: "https://api.dicebear.com/7.x/avataaars/svg?seed=Felix",
	}, nil
}

func (p *MockGoogleProvider) Logout(ctx context.Context) error {
	select {
	case <-time.After(p.Delay / 3):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// AuthResult is what a login or logout hands back to the client: the active
// account, a token scoped to it, and the history now visible under that
// account.
type AuthResult struct {
	Account models.AccountInfo   `json:"account"`
	Token   string               `json:"token"`
	History []models.KickSession `json:"history"`
}

// AuthService drives account switching. Login folds guest-accumulated history
// into the authenticated account exactly once; logout only switches the active
// storage identity back to the guest sentinel, leaving both histories intact.
type AuthService struct {
	provider Provider
	history  *HistoryService
	profiles *ProfileService
	jwt      *middleware.JWTAuth
}

func NewAuthService(provider Provider, history *HistoryService, profiles *ProfileService, jwt *middleware.JWTAuth) *AuthService {
	return &AuthService{
		provider: provider,
		history:  history,
		profiles: profiles,
		jwt:      jwt,
	}
}

// LoginGuest issues a token for the guest sentinel identity. No merge happens;
// guest history lives under its own fixed key.
func (s *AuthService) LoginGuest(ctx context.Context) (*AuthResult, error) {
	token, err := s.jwt.GenerateAccessToken(models.GuestAccountID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Account: models.AccountInfo{ID: models.GuestAccountID, Provider: models.ProviderGuest},
		Token:   token,
		History: s.history.Load(ctx, models.GuestAccountID),
	}, nil
}

// Login authenticates through the provider and merges the guest history into
// the account's store. The guest profile carries over with the account
// attached, keeping local settings.
func (s *AuthService) Login(ctx context.Context) (*AuthResult, error) {
	account, err := s.provider.Login(ctx)
	if err != nil {
		return nil, &UnauthorizedError{Message: "Sign-in failed"}
	}

	localHistory := s.history.Load(ctx, models.GuestAccountID)
	merged, err := s.history.Merge(ctx, localHistory, account.ID)
	if err != nil {
		return nil, err
	}

	if guestProfile := s.profiles.Get(ctx, models.GuestAccountID); guestProfile != nil {
		carried := *guestProfile
		carried.Account = &account
		if err := s.profiles.Save(ctx, account.ID, &carried); err != nil {
			return nil, err
		}
	}

	token, err := s.jwt.GenerateAccessToken(account.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Account: account, Token: token, History: merged}, nil
}

// Logout switches the caller back to the guest identity. No reverse merge: the
// account's history stays under its own key for the next login.
func (s *AuthService) Logout(ctx context.Context) (*AuthResult, error) {
	if err := s.provider.Logout(ctx); err != nil {
		return nil, err
	}
	return s.LoginGuest(ctx)
}
