package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"surveyhub/internal/domain"
	"surveyhub/internal/models"
	"surveyhub/internal/repository"
	"surveyhub/internal/service"
	"surveyhub/internal/testutil"
	"surveyhub/pkg/provider"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type stubLinkGateway struct {
	link string
	err  error
}

func (s *stubLinkGateway) ListAvailable(ctx context.Context, user provider.UserContext, token string) ([]provider.ExternalSurvey, error) {
	return nil, nil
}

func (s *stubLinkGateway) GetSurveyLink(ctx context.Context, surveyID string, user provider.UserContext, token string) (string, error) {
	return s.link, s.err
}

func (s *stubLinkGateway) ValidateCompletion(ctx context.Context, surveyID, respondentID, token string) (bool, error) {
	return false, nil
}

func newSurveyLinkRouter(t *testing.T, gw provider.Gateway) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t,
		&models.UserProfile{},
		&models.ProviderAccount{},
		&models.CompletedSurvey{},
	)
	require.NoError(t, db.Create(&models.ProviderAccount{
		UserID:       1,
		ProviderID:   domain.ProviderPollfish,
		ProviderName: "Pollfish",
		UserToken:    "tok",
		IsConnected:  true,
		ConnectedAt:  time.Now(),
	}).Error)

	registry := provider.NewRegistry()
	registry.Register(domain.ProviderPollfish, gw)
	aggregator := service.NewAggregatorService(
		registry,
		repository.NewProviderAccountRepository(db),
		repository.NewCompletedSurveyRepository(db),
		repository.NewProfileRepository(db),
	)
	h := NewSurveyHandler(aggregator)

	r := gin.New()
	r.GET("/surveys/:provider/:id/link", func(c *gin.Context) { c.Set("user_id", uint(1)) }, h.Link)
	return r
}

func getLink(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestSurveyLinkReturnsURL(t *testing.T) {
	r := newSurveyLinkRouter(t, &stubLinkGateway{link: "https://pollfish.example/start/s1"})

	w := getLink(r, "/surveys/pollfish/pollfish_s1/link")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "https://pollfish.example/start/s1")
}

func TestSurveyLinkEmptyLinkIsBadGateway(t *testing.T) {
	// Gateways degrade to ("", nil) on upstream failure; that must not read
	// as success to the client.
	r := newSurveyLinkRouter(t, &stubLinkGateway{})

	w := getLink(r, "/surveys/pollfish/pollfish_s1/link")
	require.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSurveyLinkUnconnectedProvider(t *testing.T) {
	r := newSurveyLinkRouter(t, &stubLinkGateway{link: "ignored"})

	w := getLink(r, "/surveys/dynata/dynata_s1/link")
	require.Equal(t, http.StatusNotFound, w.Code)
}
