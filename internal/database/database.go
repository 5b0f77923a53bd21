package database

import (
	"log"

	"surveyhub/config"
	"surveyhub/internal/domain"
	"surveyhub/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
		TranslateError: true,                                 // map driver duplicate-key errors to gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.SurveyProvider{},
		&models.ProviderAccount{},
		&models.CompletedSurvey{},
		&models.UserTransaction{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

// SeedProviders upserts the provider catalog. Reference data: existing rows are
// left alone so operator overrides survive restarts.
func SeedProviders(db *gorm.DB) {
	providers := []models.SurveyProvider{
		{
			ID:             domain.ProviderPollfish,
			Name:           "Pollfish",
			LogoURL:        "/images/pollfish-logo.png",
			Description:    "Real-time survey platform with instant rewards",
			APIEndpoint:    "https://api.pollfish.com/v2/",
			AuthURL:        "https://www.pollfish.com/oauth/authorize",
			MinPayout:      decimal.NewFromFloat(0.30),
			PaymentMethods: "PayPal,Bank Transfer,Gift Cards",
			IsActive:       true,
		},
		{
			ID:             domain.ProviderDynata,
			Name:           "Dynata",
			LogoURL:        "/images/dynata-logo.png",
			Description:    "Leading market research and data platform",
			APIEndpoint:    "https://api.dynata.com/v1/",
			AuthURL:        "https://portal.dynata.com/oauth/authorize",
			MinPayout:      decimal.NewFromFloat(0.50),
			PaymentMethods: "PayPal,Bank Transfer",
			IsActive:       true,
		},
		{
			ID:             domain.ProviderLucid,
			Name:           "Lucid (Cint)",
			LogoURL:        "/images/lucid-logo.png",
			Description:    "Sample marketplace for market research",
			APIEndpoint:    "https://api.luc.id/v1/",
			AuthURL:        "https://suppliers.luc.id/oauth/authorize",
			MinPayout:      decimal.NewFromFloat(0.25),
			PaymentMethods: "PayPal,Wire Transfer",
			IsActive:       true,
		},
		{
			ID:             domain.ProviderSurveyMonkey,
			Name:           "SurveyMonkey Audience",
			LogoURL:        "/images/surveymonkey-logo.png",
			Description:    "Survey creation and audience platform",
			APIEndpoint:    "https://api.surveymonkey.com/v3/",
			AuthURL:        "https://api.surveymonkey.com/oauth/authorize",
			MinPayout:      decimal.NewFromFloat(1.00),
			PaymentMethods: "PayPal,Gift Cards",
			IsActive:       true,
		},
	}
	for _, p := range providers {
		var existing models.SurveyProvider
		if err := db.First(&existing, "id = ?", p.ID).Error; err == nil {
			continue
		}
		if err := db.Create(&p).Error; err != nil {
			log.Printf("[database] seed provider %s failed: %v", p.ID, err)
		}
	}
}
