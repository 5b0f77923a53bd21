package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"surveyhub/config"
	"surveyhub/internal/domain"
	"surveyhub/internal/models"
	"surveyhub/internal/repository"
	"surveyhub/internal/service"
	"surveyhub/pkg/provider"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PollfishWebhookPayload is the completion notification Pollfish posts back.
type PollfishWebhookPayload struct {
	EventType      string    `json:"event_type"`
	SurveyID       string    `json:"survey_id"`
	RespondentID   string    `json:"respondent_id"`
	RewardCents    int64     `json:"reward_cents"`
	CompletionTime time.Time `json:"completion_time"`
	Status         string    `json:"status"` // completed, terminated, quota_full
	Signature      string    `json:"signature"`
}

type PollfishWebhookHandler struct {
	cfg         *config.Config
	accountRepo *repository.ProviderAccountRepository
	auditRepo   *repository.AuditLogRepository
	ledger      *service.LedgerService
	notifier    *service.NotificationService
}

func NewPollfishWebhookHandler(
	cfg *config.Config,
	accountRepo *repository.ProviderAccountRepository,
	auditRepo *repository.AuditLogRepository,
	ledger *service.LedgerService,
	notifier *service.NotificationService,
) *PollfishWebhookHandler {
	return &PollfishWebhookHandler{cfg: cfg, accountRepo: accountRepo, auditRepo: auditRepo, ledger: ledger, notifier: notifier}
}

// Handle processes a Pollfish completion webhook: verify signature, resolve
// the respondent to a connected account, credit the ledger exactly once.
func (h *PollfishWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	sig := c.GetHeader("X-Pollfish-Signature")
	if sig == "" {
		log.Printf("[webhook] rejected: missing signature header from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing signature"})
		return
	}
	secret := h.cfg.Webhook.PollfishSecret
	if secret == "" {
		log.Printf("[webhook] rejected: no signing secret configured, refusing delivery from %s", c.ClientIP())
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "webhook verification not configured"})
		return
	}
	if !verifySignature(body, sig, secret) {
		log.Printf("[webhook] rejected: invalid signature from %s", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	var payload PollfishWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if payload.EventType != domain.EventSurveyCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported event type"})
		return
	}
	if payload.SurveyID == "" || payload.RespondentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "survey_id and respondent_id required"})
		return
	}

	acc, err := h.accountRepo.GetConnectedByExternalID(domain.ProviderPollfish, payload.RespondentID)
	if err != nil {
		log.Printf("[webhook] no connected account for respondent %s", payload.RespondentID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown respondent"})
		return
	}

	reward := decimal.NewFromInt(payload.RewardCents).Div(decimal.NewFromInt(100))
	survey := provider.ExternalSurvey{
		ID:             provider.NamespacedID(payload.SurveyID),
		ProviderID:     domain.ProviderPollfish,
		ProviderName:   "Pollfish",
		Reward:         reward,
		CompletionTime: payload.CompletionTime,
	}
	recorded, err := h.ledger.RecordSurveyCompletion(acc.UserID, survey)
	if err != nil {
		log.Printf("[webhook] record completion failed for user %d survey %s: %v", acc.UserID, survey.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !recorded {
		log.Printf("[webhook] duplicate completion user=%d survey=%s", acc.UserID, survey.ID)
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
		return
	}

	log.Printf("[webhook] credited £%s to user %d for survey %s", reward.StringFixed(2), acc.UserID, survey.ID)
	h.notifier.NotifyEarningsUpdate(acc.UserID, reward, "Survey "+survey.ID)
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &acc.UserID,
		Action:     "survey_completed",
		Resource:   "completed_survey",
		ResourceID: survey.ID,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// verifySignature checks a hex HMAC-SHA256 of the raw body in constant time.
func verifySignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
