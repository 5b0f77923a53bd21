package service

import (
	"context"
	"log"
	"time"

	"surveyhub/internal/repository"
	"surveyhub/pkg/provider"
)

// AggregatorService merges available-survey listings across a user's connected
// provider accounts, excluding anything already in the completion history.
// One failing gateway never aborts the whole aggregation.
type AggregatorService struct {
	registry    *provider.Registry
	accountRepo *repository.ProviderAccountRepository
	surveyRepo  *repository.CompletedSurveyRepository
	profileRepo *repository.ProfileRepository
}

func NewAggregatorService(
	registry *provider.Registry,
	accountRepo *repository.ProviderAccountRepository,
	surveyRepo *repository.CompletedSurveyRepository,
	profileRepo *repository.ProfileRepository,
) *AggregatorService {
	return &AggregatorService{
		registry:    registry,
		accountRepo: accountRepo,
		surveyRepo:  surveyRepo,
		profileRepo: profileRepo,
	}
}

// AvailableSurveys returns the union of listings from every connected account,
// minus completed surveys. Always returns partial results on gateway failure.
func (s *AggregatorService) AvailableSurveys(ctx context.Context, userID uint) ([]provider.ExternalSurvey, error) {
	accounts, err := s.accountRepo.ListConnectedByUserID(userID)
	if err != nil {
		return nil, err
	}
	completedIDs, err := s.surveyRepo.SurveyIDsByUserID(userID)
	if err != nil {
		return nil, err
	}
	completed := make(map[string]struct{}, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = struct{}{}
	}

	userCtx := s.userContext(userID)
	all := make([]provider.ExternalSurvey, 0)
	for _, acc := range accounts {
		gw, ok := s.registry.Lookup(acc.ProviderID)
		if !ok {
			continue
		}
		surveys, err := gw.ListAvailable(ctx, userCtx, acc.UserToken)
		if err != nil {
			log.Printf("[aggregator] provider %s listing failed for user %d: %v", acc.ProviderID, userID, err)
			continue
		}
		for _, sv := range surveys {
			if _, done := completed[sv.ID]; done {
				continue
			}
			all = append(all, sv)
		}
	}
	return all, nil
}

// SurveyLink resolves a survey link through the owning provider's gateway.
func (s *AggregatorService) SurveyLink(ctx context.Context, userID uint, providerID, surveyID string) (string, error) {
	acc, err := s.accountRepo.GetByUserAndProvider(userID, providerID)
	if err != nil || !acc.IsConnected {
		return "", ErrAccountNotFound
	}
	gw, ok := s.registry.Lookup(providerID)
	if !ok {
		return "", ErrUnknownProvider
	}
	return gw.GetSurveyLink(ctx, surveyID, s.userContext(userID), acc.UserToken)
}

func (s *AggregatorService) userContext(userID uint) provider.UserContext {
	uc := provider.UserContext{UserID: userID, Country: "GB"}
	if p, err := s.profileRepo.GetByUserID(userID); err == nil {
		uc.Country = countryOrDefault(p.Country)
		uc.Age = p.Age(time.Now())
	}
	return uc
}

func countryOrDefault(c string) string {
	if c == "" {
		return "GB"
	}
	return c
}
