package handler

import (
	"net/http"
	"strconv"
	"time"

	"surveyhub/internal/middleware"
	"surveyhub/internal/repository"
	"surveyhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// MeHandler serves the authenticated user's profile, dashboard, ledger history
// and notifications.
type MeHandler struct {
	userRepo         *repository.UserRepository
	profileRepo      *repository.ProfileRepository
	accountRepo      *repository.ProviderAccountRepository
	surveyRepo       *repository.CompletedSurveyRepository
	transactionRepo  *repository.TransactionRepository
	notificationRepo *repository.NotificationRepository
	ledger           *service.LedgerService
	notifier         *service.NotificationService
}

func NewMeHandler(
	userRepo *repository.UserRepository,
	profileRepo *repository.ProfileRepository,
	accountRepo *repository.ProviderAccountRepository,
	surveyRepo *repository.CompletedSurveyRepository,
	transactionRepo *repository.TransactionRepository,
	notificationRepo *repository.NotificationRepository,
	ledger *service.LedgerService,
	notifier *service.NotificationService,
) *MeHandler {
	return &MeHandler{
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		accountRepo:      accountRepo,
		surveyRepo:       surveyRepo,
		transactionRepo:  transactionRepo,
		notificationRepo: notificationRepo,
		ledger:           ledger,
		notifier:         notifier,
	}
}

func (h *MeHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	profile, err := h.profileRepo.GetByUserID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"email":          user.Email,
		"total_earnings": user.TotalEarnings,
		"profile":        profile,
	})
}

type UpdateProfileRequest struct {
	FirstName        *string    `json:"first_name"`
	LastName         *string    `json:"last_name"`
	PhoneNumber      *string    `json:"phone_number"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	Country          *string    `json:"country"`
	City             *string    `json:"city"`
	PostalCode       *string    `json:"postal_code"`
	Gender           *string    `json:"gender"`
	EducationLevel   *string    `json:"education_level"`
	EmploymentStatus *string    `json:"employment_status"`
	Industry         *string    `json:"industry"`

	ReceiveEmailNotifications *bool   `json:"receive_email_notifications"`
	PreferredLanguage         *string `json:"preferred_language"`
	TimeZone                  *string `json:"time_zone"`
}

// UpdateProfile applies only the fields present in the request body.
func (h *MeHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.GetUserID(c)
	profile, err := h.profileRepo.GetByUserID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&profile.FirstName, req.FirstName)
	setString(&profile.LastName, req.LastName)
	setString(&profile.PhoneNumber, req.PhoneNumber)
	setString(&profile.City, req.City)
	setString(&profile.PostalCode, req.PostalCode)
	setString(&profile.Gender, req.Gender)
	setString(&profile.EducationLevel, req.EducationLevel)
	setString(&profile.EmploymentStatus, req.EmploymentStatus)
	setString(&profile.Industry, req.Industry)
	setString(&profile.PreferredLanguage, req.PreferredLanguage)
	setString(&profile.TimeZone, req.TimeZone)
	if req.Country != nil && *req.Country != "" {
		profile.Country = *req.Country
	}
	if req.DateOfBirth != nil {
		profile.DateOfBirth = req.DateOfBirth
	}
	if req.ReceiveEmailNotifications != nil {
		profile.ReceiveEmailNotifications = *req.ReceiveEmailNotifications
	}

	if err := h.profileRepo.Update(profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// Dashboard summarizes lifetime earnings, per-provider breakdown and survey
// counts in one response.
func (h *MeHandler) Dashboard(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	accounts, err := h.accountRepo.ListByUserID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "accounts unavailable"})
		return
	}
	surveyCount, err := h.surveyRepo.CountByUserID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}

	connected := 0
	byProvider := make([]gin.H, 0, len(accounts))
	for _, acc := range accounts {
		if acc.IsConnected {
			connected++
		}
		byProvider = append(byProvider, gin.H{
			"provider_id":       acc.ProviderID,
			"is_connected":      acc.IsConnected,
			"earnings":          acc.EarningsFromProvider,
			"surveys_completed": acc.SurveysCompleted,
			"last_sync_at":      acc.LastSyncAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"total_earnings":      user.TotalEarnings,
		"surveys_completed":   surveyCount,
		"connected_providers": connected,
		"providers":           byProvider,
	})
}

func (h *MeHandler) Transactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	txs, err := h.transactionRepo.ListByUserID(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "transactions unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs, "count": len(txs)})
}

func (h *MeHandler) CompletedSurveys(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	surveys, err := h.surveyRepo.ListByUserID(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"surveys": surveys, "count": len(surveys)})
}

type WithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Method string          `json:"method" binding:"required"`
}

// RequestWithdrawal debits the balance and records a pending withdrawal.
func (h *MeHandler) RequestWithdrawal(c *gin.Context) {
	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.GetUserID(c)
	tx, err := h.ledger.RequestWithdrawal(userID, req.Amount, req.Method)
	if err != nil {
		switch err {
		case service.ErrInsufficientBalance, service.ErrBelowMinPayout:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "withdrawal failed"})
		}
		return
	}
	h.notifier.NotifyWithdrawalRequested(userID, req.Amount, req.Method)
	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

func (h *MeHandler) Notifications(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	notifs, err := h.notificationRepo.ListByUserID(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "notifications unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifs, "count": len(notifs)})
}

func (h *MeHandler) MarkNotificationRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}
	if err := h.notificationRepo.MarkRead(uint(id), userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked read"})
}

// pagination reads ?limit= and ?offset= with sane caps.
func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
