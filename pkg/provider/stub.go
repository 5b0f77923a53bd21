package provider

import (
	"context"
	"errors"
)

// ErrNotIntegrated is returned by stub gateways for operations that need a
// real provider API behind them.
var ErrNotIntegrated = errors.New("provider: integration not available")

// StubGateway stands in for providers without a wired integration (Dynata,
// Lucid, SurveyMonkey). It lists nothing, so connected accounts on these
// providers simply contribute zero surveys.
type StubGateway struct {
	providerID string
}

func NewStubGateway(providerID string) *StubGateway {
	return &StubGateway{providerID: providerID}
}

func (s *StubGateway) ListAvailable(ctx context.Context, user UserContext, token string) ([]ExternalSurvey, error) {
	return nil, nil
}

func (s *StubGateway) GetSurveyLink(ctx context.Context, surveyID string, user UserContext, token string) (string, error) {
	return "", ErrNotIntegrated
}

func (s *StubGateway) ValidateCompletion(ctx context.Context, surveyID, respondentID, token string) (bool, error) {
	return false, ErrNotIntegrated
}
