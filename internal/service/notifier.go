package service

import (
	"encoding/json"
	"log"

	"surveyhub/internal/domain"
	"surveyhub/internal/models"
	"surveyhub/internal/repository"
	"surveyhub/internal/ws"
	"surveyhub/pkg/provider"

	"github.com/shopspring/decimal"
)

// NotificationService fans a user-facing event out to the notification table,
// the websocket feed and (when the profile opts in) email.
type NotificationService struct {
	repo        *repository.NotificationRepository
	userRepo    *repository.UserRepository
	profileRepo *repository.ProfileRepository
	email       *EmailService
	hub         *ws.Hub
}

func NewNotificationService(
	repo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	profileRepo *repository.ProfileRepository,
	email *EmailService,
	hub *ws.Hub,
) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, profileRepo: profileRepo, email: email, hub: hub}
}

func (s *NotificationService) notify(userID uint, notifType, title, body string, data map[string]interface{}) {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	if err := s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	}); err != nil {
		log.Printf("[notify] persist notification for user %d failed: %v", userID, err)
	}
	if s.hub != nil {
		s.hub.BroadcastToUser(userID, map[string]interface{}{
			"type":  notifType,
			"title": title,
			"body":  body,
			"data":  data,
		})
	}
}

// NotifyNewSurveys announces freshly discovered surveys. Email only goes out
// when the profile opts into email notifications.
func (s *NotificationService) NotifyNewSurveys(userID uint, surveys []provider.ExternalSurvey) {
	if len(surveys) == 0 {
		return
	}
	s.notify(userID, domain.NotifTypeNewSurveys, "New surveys available",
		"", map[string]interface{}{"count": len(surveys)})

	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return
	}
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil || !profile.ReceiveEmailNotifications {
		return
	}
	name := profile.FullName()
	if name == "" {
		name = u.Email
	}
	_ = s.email.SendSurveyNotification(u.Email, name, surveys)
}

// NotifyEarningsUpdate announces a credited completion.
func (s *NotificationService) NotifyEarningsUpdate(userID uint, amount decimal.Decimal, surveyTitle string) {
	s.notify(userID, domain.NotifTypeEarningsUpdate, "Survey completed",
		surveyTitle, map[string]interface{}{"amount": amount.StringFixed(2)})

	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return
	}
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil || !profile.ReceiveEmailNotifications {
		return
	}
	name := profile.FullName()
	if name == "" {
		name = u.Email
	}
	_ = s.email.SendEarningsUpdate(u.Email, name, amount, surveyTitle)
}

// NotifyWithdrawalRequested announces a pending withdrawal.
func (s *NotificationService) NotifyWithdrawalRequested(userID uint, amount decimal.Decimal, method string) {
	s.notify(userID, domain.NotifTypeWithdrawal, "Withdrawal requested",
		method, map[string]interface{}{"amount": amount.StringFixed(2)})
}
