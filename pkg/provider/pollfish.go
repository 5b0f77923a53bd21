package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PollfishGateway talks to the Pollfish REST API. All operations degrade to
// empty/false results on upstream failure; callers get partial data, not errors.
type PollfishGateway struct {
	BaseURL      string
	APIKey       string
	CallbackBase string // completion callbacks go to CallbackBase + /api/pollfish/webhook
	client       *http.Client
}

func NewPollfishGateway(baseURL, apiKey, callbackBase string) *PollfishGateway {
	if baseURL == "" {
		baseURL = "https://api.pollfish.com/v2/"
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &PollfishGateway{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		CallbackBase: callbackBase,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

type pollfishSurvey struct {
	ID                string                 `json:"id"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	RewardCents       int64                  `json:"reward_cents"`
	EstimatedDuration int                    `json:"estimated_duration"` // seconds
	Category          string                 `json:"category"`
	SurveyURL         string                 `json:"survey_url"`
	IsActive          bool                   `json:"is_active"`
	CompletionRate    float64                `json:"completion_rate"`
	Targeting         map[string]interface{} `json:"targeting"`
}

type pollfishSurveysResponse struct {
	Surveys []pollfishSurvey `json:"surveys"`
}

type pollfishLinkResponse struct {
	SurveyURL    string `json:"survey_url"`
	RespondentID string `json:"respondent_id"`
	ExpiresAt    string `json:"expires_at"`
}

func (g *PollfishGateway) ListAvailable(ctx context.Context, user UserContext, token string) ([]ExternalSurvey, error) {
	q := url.Values{}
	q.Set("country", countryOrDefault(user.Country))
	q.Set("age_min", "18")
	q.Set("age_max", "65")
	q.Set("limit", "20")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"surveys/available?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	g.setHeaders(req, token)

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("[pollfish] list surveys failed: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("[pollfish] list surveys: status %d", resp.StatusCode)
		return nil, nil
	}
	var out pollfishSurveysResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Printf("[pollfish] decode surveys: %v", err)
		return nil, nil
	}
	surveys := make([]ExternalSurvey, 0, len(out.Surveys))
	for _, s := range out.Surveys {
		surveys = append(surveys, g.normalize(s))
	}
	return surveys, nil
}

func (g *PollfishGateway) GetSurveyLink(ctx context.Context, surveyID string, user UserContext, token string) (string, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"respondent_id": fmt.Sprintf("%d", user.UserID),
		"custom_answers": map[string]interface{}{
			"age":     user.Age,
			"gender":  "prefer_not_to_say",
			"country": countryOrDefault(user.Country),
		},
		"callback_url": g.CallbackBase + "/api/pollfish/webhook",
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"surveys/"+NativeID(surveyID)+"/link", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	g.setHeaders(req, token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("[pollfish] survey link failed: %v", err)
		return "", nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("[pollfish] survey link: status %d", resp.StatusCode)
		return "", nil
	}
	var out pollfishLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", nil
	}
	return out.SurveyURL, nil
}

func (g *PollfishGateway) ValidateCompletion(ctx context.Context, surveyID, respondentID, token string) (bool, error) {
	body, _ := json.Marshal(map[string]string{
		"respondent_id":    respondentID,
		"completion_token": token,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"surveys/"+NativeID(surveyID)+"/validate", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	g.setHeaders(req, token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("[pollfish] validate completion failed: %v", err)
		return false, nil
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (g *PollfishGateway) setHeaders(req *http.Request, token string) {
	key := g.APIKey
	if key == "" {
		key = token
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("User-Agent", "SurveyHub/1.0")
}

// normalize maps provider-native fields into the common shape: reward cents to
// major units, duration seconds to minutes, id namespaced with the provider.
func (g *PollfishGateway) normalize(s pollfishSurvey) ExternalSurvey {
	desc := s.Description
	if desc == "" {
		desc = "Complete this survey to earn rewards"
	}
	category := s.Category
	if category == "" {
		category = "General"
	}
	return ExternalSurvey{
		ID:               NamespacedID(s.ID),
		ProviderID:       "pollfish",
		ProviderName:     "Pollfish",
		Title:            s.Title,
		Description:      desc,
		Reward:           decimal.NewFromInt(s.RewardCents).Div(decimal.NewFromInt(100)),
		EstimatedMinutes: s.EstimatedDuration / 60,
		Category:         category,
		SurveyURL:        s.SurveyURL,
		IsAvailable:      s.IsActive,
		Metadata: map[string]interface{}{
			"pollfish_id":     s.ID,
			"completion_rate": s.CompletionRate,
			"targeting":       s.Targeting,
		},
	}
}

// NamespacedID prefixes a native Pollfish id so survey ids are unique across
// providers. Idempotent for already-prefixed ids.
func NamespacedID(nativeID string) string {
	if strings.HasPrefix(nativeID, "pollfish_") {
		return nativeID
	}
	return "pollfish_" + nativeID
}

// NativeID strips the namespace prefix for provider API calls.
func NativeID(surveyID string) string {
	return strings.TrimPrefix(surveyID, "pollfish_")
}

func countryOrDefault(c string) string {
	if c == "" {
		return "GB"
	}
	return c
}
