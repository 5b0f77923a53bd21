package provider

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// UserContext is the slice of user data a gateway needs for targeting and
// respondent identification. Gateways never see the full account record.
type UserContext struct {
	UserID  uint
	Country string
	Age     int
}

// ExternalSurvey is the normalized, provider-agnostic survey listing. It is
// transient: listings are never persisted, only completions are.
type ExternalSurvey struct {
	ID               string                 `json:"id"` // provider-namespaced, e.g. pollfish_123
	ProviderID       string                 `json:"provider_id"`
	ProviderName     string                 `json:"provider_name"`
	Title            string                 `json:"title"`
	Description      string                 `json:"description"`
	Reward           decimal.Decimal        `json:"reward"` // major currency units
	EstimatedMinutes int                    `json:"estimated_minutes"`
	Category         string                 `json:"category"`
	SurveyURL        string                 `json:"survey_url"`
	IsAvailable      bool                   `json:"is_available"`
	CompletionTime   time.Time              `json:"-"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// Gateway is the per-provider capability surface. Implementations are best
// effort: upstream failures degrade to empty/false results and are logged,
// they never propagate to callers as errors worth aborting an aggregation for.
type Gateway interface {
	ListAvailable(ctx context.Context, user UserContext, token string) ([]ExternalSurvey, error)
	GetSurveyLink(ctx context.Context, surveyID string, user UserContext, token string) (string, error)
	ValidateCompletion(ctx context.Context, surveyID, respondentID, token string) (bool, error)
}

// Registry maps provider id to its gateway. Adding a provider means adding an
// entry here; callers stay untouched.
type Registry struct {
	gateways map[string]Gateway
}

func NewRegistry() *Registry {
	return &Registry{gateways: make(map[string]Gateway)}
}

func (r *Registry) Register(providerID string, g Gateway) {
	r.gateways[providerID] = g
}

func (r *Registry) Lookup(providerID string) (Gateway, bool) {
	g, ok := r.gateways[providerID]
	return g, ok
}
