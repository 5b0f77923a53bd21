package service

import (
	"errors"
	"log"
	"time"

	"surveyhub/internal/domain"
	"surveyhub/internal/models"
	"surveyhub/pkg/provider"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrUnknownProvider     = errors.New("unknown survey provider")
	ErrAccountNotFound     = errors.New("provider account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBelowMinPayout      = errors.New("amount below minimum payout")
)

// LedgerService is the only component allowed to mutate earnings state:
// completed-survey history, TotalEarnings, provider-account counters and the
// transaction log all change together or not at all.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// RecordSurveyCompletion credits one survey completion in a single
// transaction. Returns recorded=false when the (user, survey) pair was
// already credited; redelivered webhooks are a benign no-op, and a concurrent
// insert losing the unique-index race maps onto the same result.
func (s *LedgerService) RecordSurveyCompletion(userID uint, survey provider.ExternalSurvey) (bool, error) {
	recorded := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.CompletedSurvey
		err := tx.Where("user_id = ? AND survey_id = ?", userID, survey.ID).First(&existing).Error
		if err == nil {
			return nil // already recorded
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		completedAt := survey.CompletionTime
		if completedAt.IsZero() {
			completedAt = time.Now()
		}
		cs := models.CompletedSurvey{
			UserID:      userID,
			SurveyID:    survey.ID,
			ProviderID:  survey.ProviderID,
			Title:       titleOrDefault(survey.Title),
			Description: survey.Description,
			Reward:      survey.Reward,
			CompletedAt: completedAt,
			Status:      domain.SurveyStatusCompleted,
		}
		if survey.EstimatedMinutes > 0 {
			m := survey.EstimatedMinutes
			cs.DurationMinutes = &m
		}
		if err := tx.Create(&cs).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				log.Printf("[ledger] concurrent completion for user=%d survey=%s, keeping first credit", userID, survey.ID)
				return nil
			}
			return err
		}

		if err := tx.Create(&models.UserTransaction{
			UserID:      userID,
			Amount:      survey.Reward,
			Type:        domain.TxTypeEarning,
			Description: "Survey reward: " + cs.Title,
			Status:      domain.TxStatusCompleted,
			Reference:   survey.ID,
		}).Error; err != nil {
			return err
		}

		var u models.User
		if err := tx.First(&u, userID).Error; err != nil {
			return err
		}
		u.TotalEarnings = u.TotalEarnings.Add(survey.Reward)
		if err := tx.Model(&u).Update("total_earnings", u.TotalEarnings).Error; err != nil {
			return err
		}

		var acc models.ProviderAccount
		err = tx.Where("user_id = ? AND provider_id = ?", userID, survey.ProviderID).First(&acc).Error
		if err == nil {
			now := time.Now()
			acc.EarningsFromProvider = acc.EarningsFromProvider.Add(survey.Reward)
			acc.SurveysCompleted++
			acc.LastSyncAt = &now
			if err := tx.Model(&acc).Updates(map[string]interface{}{
				"earnings_from_provider": acc.EarningsFromProvider,
				"surveys_completed":      acc.SurveysCompleted,
				"last_sync_at":           acc.LastSyncAt,
			}).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		recorded = true
		return nil
	})
	return recorded, err
}

// ConnectProvider creates or re-activates the (user, provider) account with a
// fresh token.
func (s *LedgerService) ConnectProvider(userID uint, providerID, token, externalUserID string) (*models.ProviderAccount, error) {
	var catalog models.SurveyProvider
	if err := s.db.First(&catalog, "id = ? AND is_active = ?", providerID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownProvider
		}
		return nil, err
	}

	var acc models.ProviderAccount
	err := s.db.Where("user_id = ? AND provider_id = ?", userID, providerID).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		acc = models.ProviderAccount{
			UserID:         userID,
			ProviderID:     providerID,
			ProviderName:   catalog.Name,
			UserToken:      token,
			ExternalUserID: externalUserID,
			IsConnected:    true,
			ConnectedAt:    time.Now(),
		}
		if err := s.db.Create(&acc).Error; err != nil {
			return nil, err
		}
		return &acc, nil
	}
	if err != nil {
		return nil, err
	}
	acc.IsConnected = true
	acc.UserToken = token
	acc.ConnectedAt = time.Now()
	if externalUserID != "" {
		acc.ExternalUserID = externalUserID
	}
	if err := s.db.Save(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

// DisconnectProvider clears the token and connection flag. Historical earnings
// and completed surveys stay untouched.
func (s *LedgerService) DisconnectProvider(userID uint, providerID string) error {
	var acc models.ProviderAccount
	err := s.db.Where("user_id = ? AND provider_id = ?", userID, providerID).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	acc.IsConnected = false
	acc.UserToken = ""
	return s.db.Save(&acc).Error
}

// AdjustBalance applies an explicit signed adjustment (bonus, penalty) and
// records it in the transaction log atomically.
func (s *LedgerService) AdjustBalance(userID uint, amount decimal.Decimal, txType, description string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, userID).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.UserTransaction{
			UserID:      userID,
			Amount:      amount,
			Type:        txType,
			Description: description,
			Status:      domain.TxStatusCompleted,
		}).Error; err != nil {
			return err
		}
		u.TotalEarnings = u.TotalEarnings.Add(amount)
		return tx.Model(&u).Update("total_earnings", u.TotalEarnings).Error
	})
}

// RequestWithdrawal debits the balance and appends a pending withdrawal
// transaction in one unit. The cheapest active provider minimum payout is the
// floor for withdrawal amounts.
func (s *LedgerService) RequestWithdrawal(userID uint, amount decimal.Decimal, method string) (*models.UserTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrBelowMinPayout
	}
	var minPayout decimal.Decimal
	var providers []models.SurveyProvider
	if err := s.db.Where("is_active = ?", true).Find(&providers).Error; err != nil {
		return nil, err
	}
	for i, p := range providers {
		if i == 0 || p.MinPayout.LessThan(minPayout) {
			minPayout = p.MinPayout
		}
	}
	if len(providers) > 0 && amount.LessThan(minPayout) {
		return nil, ErrBelowMinPayout
	}

	var wtx *models.UserTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, userID).Error; err != nil {
			return err
		}
		if u.TotalEarnings.LessThan(amount) {
			return ErrInsufficientBalance
		}
		wtx = &models.UserTransaction{
			UserID:      userID,
			Amount:      amount.Neg(),
			Type:        domain.TxTypeWithdrawal,
			Description: "Withdrawal via " + method,
			Status:      domain.TxStatusPending,
			Reference:   method,
		}
		if err := tx.Create(wtx).Error; err != nil {
			return err
		}
		u.TotalEarnings = u.TotalEarnings.Sub(amount)
		return tx.Model(&u).Update("total_earnings", u.TotalEarnings).Error
	})
	if err != nil {
		return nil, err
	}
	return wtx, nil
}

func titleOrDefault(title string) string {
	if title == "" {
		return "Survey Completed"
	}
	return title
}
