package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"

	"surveyhub/internal/middleware"
	"surveyhub/internal/models"
	"surveyhub/internal/repository"
	"surveyhub/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

type ProviderHandler struct {
	providerRepo *repository.ProviderRepository
	accountRepo  *repository.ProviderAccountRepository
	auditRepo    *repository.AuditLogRepository
	ledger       *service.LedgerService
}

func NewProviderHandler(
	providerRepo *repository.ProviderRepository,
	accountRepo *repository.ProviderAccountRepository,
	auditRepo *repository.AuditLogRepository,
	ledger *service.LedgerService,
) *ProviderHandler {
	return &ProviderHandler{providerRepo: providerRepo, accountRepo: accountRepo, auditRepo: auditRepo, ledger: ledger}
}

// List returns the active provider catalog with each entry's payment methods.
func (h *ProviderHandler) List(c *gin.Context) {
	providers, err := h.providerRepo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog unavailable"})
		return
	}
	out := make([]gin.H, 0, len(providers))
	for _, p := range providers {
		out = append(out, gin.H{
			"id":              p.ID,
			"name":            p.Name,
			"logo_url":        p.LogoURL,
			"description":     p.Description,
			"min_payout":      p.MinPayout,
			"payment_methods": p.PaymentMethodList(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"providers": out})
}

// AuthURL builds the provider's OAuth authorization URL for the connect flow.
func (h *ProviderHandler) AuthURL(c *gin.Context) {
	p, err := h.providerRepo.GetByID(c.Param("id"))
	if err != nil || !p.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
		return
	}
	redirectURI := c.Query("redirect_uri")
	if redirectURI == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "redirect_uri required"})
		return
	}
	conf := &oauth2.Config{
		ClientID:    "surveyhub",
		RedirectURL: redirectURI,
		Scopes:      []string{"surveys"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  p.AuthURL,
			TokenURL: strings.TrimSuffix(p.APIEndpoint, "/") + "/oauth/token",
		},
	}
	state := randomState()
	c.JSON(http.StatusOK, gin.H{
		"auth_url": conf.AuthCodeURL(state),
		"state":    state,
	})
}

type ConnectRequest struct {
	Token          string `json:"token" binding:"required"`
	ExternalUserID string `json:"external_user_id"`
}

// Connect links the current user to a provider with the supplied token.
func (h *ProviderHandler) Connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.GetUserID(c)
	providerID := c.Param("id")
	acc, err := h.ledger.ConnectProvider(userID, providerID, req.Token, req.ExternalUserID)
	if err != nil {
		if err == service.ErrUnknownProvider {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "connect failed"})
		return
	}
	h.audit(userID, "provider_connected", providerID, c)
	c.JSON(http.StatusOK, gin.H{"account": acc})
}

// Disconnect clears the token and connection flag; cumulative earnings and
// completed-survey history stay.
func (h *ProviderHandler) Disconnect(c *gin.Context) {
	userID := middleware.GetUserID(c)
	providerID := c.Param("id")
	if err := h.ledger.DisconnectProvider(userID, providerID); err != nil {
		if err == service.ErrAccountNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "disconnect failed"})
		return
	}
	h.audit(userID, "provider_disconnected", providerID, c)
	c.JSON(http.StatusOK, gin.H{"message": "disconnected"})
}

// Accounts lists the current user's provider accounts, connected or not.
func (h *ProviderHandler) Accounts(c *gin.Context) {
	userID := middleware.GetUserID(c)
	accounts, err := h.accountRepo.ListByUserID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "accounts unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (h *ProviderHandler) audit(userID uint, action, providerID string, c *gin.Context) {
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "provider_account",
		ResourceID: providerID,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
}

func randomState() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
