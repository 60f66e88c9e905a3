package services

import (
	"context"
	"fmt"

	"pawrescue/internal/config"
	"pawrescue/internal/models"
	"pawrescue/internal/utils"
	"pawrescue/pkg/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
	"google.golang.org/api/option"
)

// NotificationService delivers push and SMS notifications. Every method is
// fire-and-forget: delivery failures are logged, never returned, so a dead
// device token cannot fail a case operation.
type NotificationService interface {
	NotifyNewCaseNearby(c *models.Case, helpers []*models.User)
	NotifyHelperAssigned(c *models.Case, helper *models.User)
	NotifyStatusUpdate(c *models.Case, update *models.StatusUpdate, recipients []*models.User)
	NotifyResolutionPending(c *models.Case)
	NotifyResolutionRejected(c *models.Case, helpers []*models.User, reason string)
	NotifyCaseReminder(c *models.Case, helpers []*models.User)
	NotifyCaseTransferred(c *models.Case, helpers []*models.User)
}

type notificationService struct {
	fcmClient    *messaging.Client
	twilioClient *twilio.RestClient
	fromNumber   string
	logger       *logger.Logger
}

func NewNotificationService(cfg *config.Config, log *logger.Logger) (NotificationService, error) {
	s := &notificationService{
		fromNumber: cfg.SMS.Twilio.FromNumber,
		logger:     log,
	}

	if cfg.Push.FCM.Credentials != "" {
		app, err := firebase.NewApp(context.Background(),
			&firebase.Config{ProjectID: cfg.Push.FCM.ProjectID},
			option.WithCredentialsFile(cfg.Push.FCM.Credentials))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
		}
		client, err := app.Messaging(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize fcm client: %w", err)
		}
		s.fcmClient = client
	} else {
		log.Warn("FCM credentials not configured, push notifications disabled")
	}

	if cfg.SMS.Twilio.AccountSID != "" {
		s.twilioClient = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.SMS.Twilio.AccountSID,
			Password: cfg.SMS.Twilio.AuthToken,
		})
	} else {
		log.Warn("Twilio credentials not configured, SMS notifications disabled")
	}

	return s, nil
}

func (s *notificationService) NotifyNewCaseNearby(c *models.Case, helpers []*models.User) {
	title := fmt.Sprintf("%s %s reported near you", c.Condition, c.AnimalType)
	body := truncate(c.Description, 140)
	data := map[string]string{
		"type":        "new_case",
		"case_id":     c.ID.Hex(),
		"case_number": c.CaseNumber,
		"urgency":     string(c.UrgencyLevel),
	}

	s.pushToUsers(helpers, title, body, data)
}

func (s *notificationService) NotifyHelperAssigned(c *models.Case, helper *models.User) {
	go s.sendSMS(c.ContactInfo.Phone,
		fmt.Sprintf("PawRescue: %s has taken up your report %s and will be in touch.", helper.Name, c.CaseNumber))
}

func (s *notificationService) NotifyStatusUpdate(c *models.Case, update *models.StatusUpdate, recipients []*models.User) {
	title := fmt.Sprintf("Case %s: animal %s", c.CaseNumber, update.Condition)
	body := truncate(update.Description, 140)
	data := map[string]string{
		"type":      "status_update",
		"case_id":   c.ID.Hex(),
		"update_id": update.ID.Hex(),
	}

	s.pushToUsers(recipients, title, body, data)
}

func (s *notificationService) NotifyResolutionPending(c *models.Case) {
	go s.sendSMS(c.ContactInfo.Phone,
		fmt.Sprintf("PawRescue: case %s has been marked resolved by the helper. Please confirm or reject the resolution in the app.", c.CaseNumber))
}

func (s *notificationService) NotifyResolutionRejected(c *models.Case, helpers []*models.User, reason string) {
	title := fmt.Sprintf("Resolution rejected for case %s", c.CaseNumber)
	body := truncate(reason, 140)
	data := map[string]string{
		"type":    "resolution_rejected",
		"case_id": c.ID.Hex(),
	}

	s.pushToUsers(helpers, title, body, data)
}

func (s *notificationService) NotifyCaseReminder(c *models.Case, helpers []*models.User) {
	title := fmt.Sprintf("Update due for case %s", c.CaseNumber)
	body := "No progress has been reported in the last 24 hours. Please post a status update."
	data := map[string]string{
		"type":    "reminder",
		"case_id": c.ID.Hex(),
	}

	s.pushToUsers(helpers, title, body, data)
}

func (s *notificationService) NotifyCaseTransferred(c *models.Case, helpers []*models.User) {
	title := fmt.Sprintf("Case %s needs a new helper", c.CaseNumber)
	body := "The case has been released back to open and is available for assignment."
	data := map[string]string{
		"type":    "case_transferred",
		"case_id": c.ID.Hex(),
	}

	s.pushToUsers(helpers, title, body, data)
}

func (s *notificationService) pushToUsers(users []*models.User, title, body string, data map[string]string) {
	if s.fcmClient == nil {
		return
	}

	var tokens []string
	for _, u := range users {
		if u != nil && u.DeviceToken != "" {
			tokens = append(tokens, u.DeviceToken)
		}
	}
	if len(tokens) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), utils.NotificationTimeout)
		defer cancel()

		message := &messaging.MulticastMessage{
			Tokens: tokens,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		}

		response, err := s.fcmClient.SendEachForMulticast(ctx, message)
		if err != nil {
			s.logger.WithError(err).Error("failed to send push notification")
			return
		}
		if response.FailureCount > 0 {
			s.logger.WithFields(map[string]interface{}{
				"success": response.SuccessCount,
				"failure": response.FailureCount,
			}).Warn("push notification partially delivered")
		}
	}()
}

func (s *notificationService) sendSMS(to, body string) {
	if s.twilioClient == nil || to == "" {
		return
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.fromNumber)
	params.SetBody(body)

	if _, err := s.twilioClient.Api.CreateMessage(params); err != nil {
		s.logger.WithError(err).WithField("to", to).Error("failed to send SMS")
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
