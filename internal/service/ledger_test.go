package service

import (
	"testing"
	"time"

	"surveyhub/internal/domain"
	"surveyhub/internal/models"
	"surveyhub/internal/testutil"
	"surveyhub/pkg/provider"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLedgerDB(t *testing.T) *gorm.DB {
	return testutil.NewTestDB(t,
		&models.User{},
		&models.UserProfile{},
		&models.ProviderAccount{},
		&models.CompletedSurvey{},
		&models.SurveyProvider{},
		&models.UserTransaction{},
	)
}

func seedUser(t *testing.T, db *gorm.DB, earnings string) *models.User {
	t.Helper()
	u := &models.User{
		Email:         "alice@example.com",
		PasswordHash:  "x",
		TotalEarnings: decimal.RequireFromString(earnings),
		IsActive:      true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedAccount(t *testing.T, db *gorm.DB, userID uint, providerID, earnings string, completed int) *models.ProviderAccount {
	t.Helper()
	acc := &models.ProviderAccount{
		UserID:               userID,
		ProviderID:           providerID,
		ProviderName:         providerID,
		UserToken:            "tok",
		ExternalUserID:       "ext-123",
		IsConnected:          true,
		ConnectedAt:          time.Now(),
		EarningsFromProvider: decimal.RequireFromString(earnings),
		SurveysCompleted:     completed,
	}
	require.NoError(t, db.Create(acc).Error)
	return acc
}

func TestRecordSurveyCompletionCreditsEverything(t *testing.T) {
	db := newLedgerDB(t)
	user := seedUser(t, db, "15.75")
	seedAccount(t, db, user.ID, domain.ProviderPollfish, "8.50", 5)
	svc := NewLedgerService(db)

	recorded, err := svc.RecordSurveyCompletion(user.ID, provider.ExternalSurvey{
		ID:         "pollfish_abc123",
		ProviderID: domain.ProviderPollfish,
		Title:      "Consumer Habits",
		Reward:     decimal.RequireFromString("1.50"),
	})
	require.NoError(t, err)
	require.True(t, recorded)

	var u models.User
	require.NoError(t, db.First(&u, user.ID).Error)
	require.True(t, u.TotalEarnings.Equal(decimal.RequireFromString("17.25")), "got %s", u.TotalEarnings)

	var acc models.ProviderAccount
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&acc).Error)
	require.True(t, acc.EarningsFromProvider.Equal(decimal.RequireFromString("10.00")), "got %s", acc.EarningsFromProvider)
	require.Equal(t, 6, acc.SurveysCompleted)
	require.NotNil(t, acc.LastSyncAt)

	var cs models.CompletedSurvey
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&cs).Error)
	require.Equal(t, "pollfish_abc123", cs.SurveyID)
	require.Equal(t, domain.SurveyStatusCompleted, cs.Status)
	require.True(t, cs.Reward.Equal(decimal.RequireFromString("1.50")))

	var txs []models.UserTransaction
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&txs).Error)
	require.Len(t, txs, 1)
	require.Equal(t, domain.TxTypeEarning, txs[0].Type)
	require.Equal(t, "pollfish_abc123", txs[0].Reference)
}

func TestRecordSurveyCompletionIsIdempotent(t *testing.T) {
	db := newLedgerDB(t)
	user := seedUser(t, db, "0")
	seedAccount(t, db, user.ID, domain.ProviderPollfish, "0", 0)
	svc := NewLedgerService(db)

	survey := provider.ExternalSurvey{
		ID:         "pollfish_dup",
		ProviderID: domain.ProviderPollfish,
		Reward:     decimal.RequireFromString("2.00"),
	}

	recorded, err := svc.RecordSurveyCompletion(user.ID, survey)
	require.NoError(t, err)
	require.True(t, recorded)

	recorded, err = svc.RecordSurveyCompletion(user.ID, survey)
	require.NoError(t, err)
	require.False(t, recorded)

	var count int64
	require.NoError(t, db.Model(&models.CompletedSurvey{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)

	var u models.User
	require.NoError(t, db.First(&u, user.ID).Error)
	require.True(t, u.TotalEarnings.Equal(decimal.RequireFromString("2.00")), "got %s", u.TotalEarnings)
}

func TestRecordSurveyCompletionWithoutAccountStillCredits(t *testing.T) {
	db := newLedgerDB(t)
	user := seedUser(t, db, "0")
	svc := NewLedgerService(db)

	recorded, err := svc.RecordSurveyCompletion(user.ID, provider.ExternalSurvey{
		ID:         "pollfish_orphan",
		ProviderID: domain.ProviderPollfish,
		Reward:     decimal.RequireFromString("0.75"),
	})
	require.NoError(t, err)
	require.True(t, recorded)

	var u models.User
	require.NoError(t, db.First(&u, user.ID).Error)
	require.True(t, u.TotalEarnings.Equal(decimal.RequireFromString("0.75")))
}

func TestConnectProviderUnknownProvider(t *testing.T) {
	db := newLedgerDB(t)
	user := seedUser(t, db, "0")
	svc := NewLedgerService(db)

	_, err := svc.ConnectProvider(user.ID, "nosuch", "tok", "")
	require.ErrorIs(t, err, ErrUnknownProvider)
}

func TestConnectThenDisconnectKeepsHistory(t *testing.T) {
	db := newLedgerDB(t)
	user := seedUser(t, db, "0")
	require.NoError(t, db.Create(&models.SurveyProvider{
		ID: domain.ProviderPollfish, Name: "Pollfish", MinPayout: decimal.RequireFromString("0.30"), IsActive: true,
	}).Error)
	svc := NewLedgerService(db)

	acc, err := svc.ConnectProvider(user.ID, domain.ProviderPollfish, "tok-1", "ext-9")
	require.NoError(t, err)
	require.True(t, acc.IsConnected)

	_, err = svc.RecordSurveyCompletion(user.ID, provider.ExternalSurvey{
		ID: "pollfish_s1", ProviderID: domain.ProviderPollfish, Reward: decimal.RequireFromString("1.00"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DisconnectProvider(user.ID, domain.ProviderPollfish))

	var got models.ProviderAccount
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&got).Error)
	require.False(t, got.IsConnected)
	require.Empty(t, got.UserToken)
	require.True(t, got.EarningsFromProvider.Equal(decimal.RequireFromString("1.00")))
	require.Equal(t, 1, got.SurveysCompleted)

	// Reconnect re-activates the same row with a fresh token.
	acc, err = svc.ConnectProvider(user.ID, domain.ProviderPollfish, "tok-2", "")
	require.NoError(t, err)
	require.Equal(t, got.ID, acc.ID)
	require.True(t, acc.IsConnected)
	require.Equal(t, "ext-9", acc.ExternalUserID)
}

func TestDisconnectProviderNotFound(t *testing.T) {
	db := newLedgerDB(t)
	user := seedUser(t, db, "0")
	svc := NewLedgerService(db)

	require.ErrorIs(t, svc.DisconnectProvider(user.ID, domain.ProviderPollfish), ErrAccountNotFound)
}

func TestRequestWithdrawal(t *testing.T) {
	db := newLedgerDB(t)
	user := seedUser(t, db, "5.00")
	require.NoError(t, db.Create(&models.SurveyProvider{
		ID: domain.ProviderLucid, Name: "Lucid", MinPayout: decimal.RequireFromString("0.25"), IsActive: true,
	}).Error)
	svc := NewLedgerService(db)

	_, err := svc.RequestWithdrawal(user.ID, decimal.RequireFromString("0.10"), "PayPal")
	require.ErrorIs(t, err, ErrBelowMinPayout)

	_, err = svc.RequestWithdrawal(user.ID, decimal.RequireFromString("10.00"), "PayPal")
	require.ErrorIs(t, err, ErrInsufficientBalance)

	wtx, err := svc.RequestWithdrawal(user.ID, decimal.RequireFromString("3.00"), "PayPal")
	require.NoError(t, err)
	require.Equal(t, domain.TxTypeWithdrawal, wtx.Type)
	require.Equal(t, domain.TxStatusPending, wtx.Status)
	require.True(t, wtx.Amount.Equal(decimal.RequireFromString("-3.00")))

	var u models.User
	require.NoError(t, db.First(&u, user.ID).Error)
	require.True(t, u.TotalEarnings.Equal(decimal.RequireFromString("2.00")), "got %s", u.TotalEarnings)
}

func TestAdjustBalance(t *testing.T) {
	db := newLedgerDB(t)
	user := seedUser(t, db, "1.00")
	svc := NewLedgerService(db)

	require.NoError(t, svc.AdjustBalance(user.ID, decimal.RequireFromString("0.50"), domain.TxTypeBonus, "signup bonus"))
	require.NoError(t, svc.AdjustBalance(user.ID, decimal.RequireFromString("-0.25"), domain.TxTypePenalty, "chargeback"))

	var u models.User
	require.NoError(t, db.First(&u, user.ID).Error)
	require.True(t, u.TotalEarnings.Equal(decimal.RequireFromString("1.25")), "got %s", u.TotalEarnings)

	var count int64
	require.NoError(t, db.Model(&models.UserTransaction{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, 2, count)
}
