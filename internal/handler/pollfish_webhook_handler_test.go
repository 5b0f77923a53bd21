package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"surveyhub/config"
	"surveyhub/internal/domain"
	"surveyhub/internal/models"
	"surveyhub/internal/repository"
	"surveyhub/internal/service"
	"surveyhub/internal/testutil"
	"surveyhub/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testWebhookSecret = "test-secret"

func newWebhookFixture(t *testing.T) (*gorm.DB, *gin.Engine) {
	return newWebhookFixtureWithSecret(t, testWebhookSecret)
}

func newWebhookFixtureWithSecret(t *testing.T, secret string) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t,
		&models.User{},
		&models.UserProfile{},
		&models.ProviderAccount{},
		&models.CompletedSurvey{},
		&models.SurveyProvider{},
		&models.UserTransaction{},
		&models.Notification{},
		&models.AuditLog{},
	)

	cfg := config.Load()
	cfg.Webhook.PollfishSecret = secret

	notifier := service.NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewUserRepository(db),
		repository.NewProfileRepository(db),
		service.NewEmailService(cfg.SMTP), // no SMTP host: sends are skipped
		ws.NewHub(),
	)
	h := NewPollfishWebhookHandler(
		cfg,
		repository.NewProviderAccountRepository(db),
		repository.NewAuditLogRepository(db),
		service.NewLedgerService(db),
		notifier,
	)

	r := gin.New()
	r.POST("/api/pollfish/webhook", h.Handle)
	return db, r
}

func seedConnectedUser(t *testing.T, db *gorm.DB, respondentID string) *models.User {
	t.Helper()
	u := &models.User{Email: "bob@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, db.Create(&models.ProviderAccount{
		UserID:         u.ID,
		ProviderID:     domain.ProviderPollfish,
		ProviderName:   "Pollfish",
		UserToken:      "tok",
		ExternalUserID: respondentID,
		IsConnected:    true,
		ConnectedAt:    time.Now(),
	}).Error)
	return u
}

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(r *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/pollfish/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Pollfish-Signature", signature)
	}
	r.ServeHTTP(w, req)
	return w
}

func completionBody(t *testing.T, surveyID, respondentID string, rewardCents int64) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"event_type":    domain.EventSurveyCompleted,
		"survey_id":     surveyID,
		"respondent_id": respondentID,
		"reward_cents":  rewardCents,
		"status":        "completed",
	})
	require.NoError(t, err)
	return body
}

func TestWebhookMissingSignature(t *testing.T) {
	db, r := newWebhookFixture(t)
	seedConnectedUser(t, db, "resp-1")

	body := completionBody(t, "abc", "resp-1", 150)
	w := postWebhook(r, body, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.CompletedSurvey{}).Count(&count).Error)
	require.Zero(t, count, "rejected webhook must not mutate state")
}

func TestWebhookRefusedWithoutConfiguredSecret(t *testing.T) {
	db, r := newWebhookFixtureWithSecret(t, "")
	seedConnectedUser(t, db, "resp-1")

	body := completionBody(t, "abc", "resp-1", 150)
	w := postWebhook(r, body, signBody(body, testWebhookSecret))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.CompletedSurvey{}).Count(&count).Error)
	require.Zero(t, count, "unverifiable webhook must not mutate state")
}

func TestWebhookInvalidSignature(t *testing.T) {
	db, r := newWebhookFixture(t)
	seedConnectedUser(t, db, "resp-1")

	body := completionBody(t, "abc", "resp-1", 150)
	w := postWebhook(r, body, "deadbeef")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.CompletedSurvey{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestWebhookUnsupportedEventType(t *testing.T) {
	_, r := newWebhookFixture(t)

	body, err := json.Marshal(map[string]interface{}{
		"event_type":    "survey_started",
		"survey_id":     "abc",
		"respondent_id": "resp-1",
	})
	require.NoError(t, err)

	w := postWebhook(r, body, signBody(body, testWebhookSecret))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookUnknownRespondent(t *testing.T) {
	_, r := newWebhookFixture(t)

	body := completionBody(t, "abc", "nobody", 150)
	w := postWebhook(r, body, signBody(body, testWebhookSecret))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookCreditsOnceAndFlagsRedelivery(t *testing.T) {
	db, r := newWebhookFixture(t)
	user := seedConnectedUser(t, db, "resp-1")

	body := completionBody(t, "abc123", "resp-1", 150)
	sig := signBody(body, testWebhookSecret)

	w := postWebhook(r, body, sig)
	require.Equal(t, http.StatusOK, w.Code)

	var u models.User
	require.NoError(t, db.First(&u, user.ID).Error)
	require.True(t, u.TotalEarnings.Equal(decimal.RequireFromString("1.50")), "got %s", u.TotalEarnings)

	var cs models.CompletedSurvey
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&cs).Error)
	require.Equal(t, "pollfish_abc123", cs.SurveyID)

	// Redelivery: 200 with duplicate flag, no second credit.
	w = postWebhook(r, body, sig)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Received  bool `json:"received"`
		Duplicate bool `json:"duplicate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Received)
	require.True(t, resp.Duplicate)

	require.NoError(t, db.First(&u, user.ID).Error)
	require.True(t, u.TotalEarnings.Equal(decimal.RequireFromString("1.50")), "no double credit, got %s", u.TotalEarnings)
}

func TestWebhookAcceptsUppercaseSignature(t *testing.T) {
	db, r := newWebhookFixture(t)
	seedConnectedUser(t, db, "resp-1")

	body := completionBody(t, "abc", "resp-1", 50)
	sig := strings.ToUpper(signBody(body, testWebhookSecret))

	w := postWebhook(r, body, sig)
	require.Equal(t, http.StatusOK, w.Code)
}
