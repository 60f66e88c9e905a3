package services

import (
	"context"
	"time"

	"pawrescue/internal/models"
	"pawrescue/internal/repositories/interfaces"
	"pawrescue/pkg/logger"
)

// ReminderService sweeps for cases whose helpers have gone quiet. The sweep
// is driven by an external scheduler; claiming is atomic per case, so
// overlapping sweeps never notify twice.
type ReminderService interface {
	ProcessDueReminders(ctx context.Context) (int, error)
}

type reminderService struct {
	caseRepo     interfaces.CaseRepository
	userRepo     interfaces.UserRepository
	auditRepo    interfaces.AuditLogRepository
	notification NotificationService
	batchSize    int
	logger       *logger.Logger
}

func NewReminderService(
	caseRepo interfaces.CaseRepository,
	userRepo interfaces.UserRepository,
	auditRepo interfaces.AuditLogRepository,
	notification NotificationService,
	batchSize int,
	logger *logger.Logger,
) ReminderService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &reminderService{
		caseRepo:     caseRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		notification: notification,
		batchSize:    batchSize,
		logger:       logger,
	}
}

func (s *reminderService) ProcessDueReminders(ctx context.Context) (int, error) {
	claimed, err := s.caseRepo.ClaimDueReminders(ctx, time.Now(), s.batchSize)
	if err != nil {
		return len(claimed), err
	}
	if len(claimed) == 0 {
		return 0, nil
	}

	for _, c := range claimed {
		s.remind(ctx, c)
	}

	s.logger.WithField("count", len(claimed)).Info("reminder sweep completed")
	return len(claimed), nil
}

func (s *reminderService) remind(ctx context.Context, c *models.Case) {
	if len(c.AssignedHelpers) == 0 {
		s.logger.WithCaseID(c.ID).Warn("reminder due on case with no assigned helpers")
		return
	}

	helpers, err := s.userRepo.GetByIDs(ctx, c.AssignedHelpers)
	if err != nil {
		s.logger.WithError(err).WithCaseID(c.ID).Error("failed to load helpers for reminder")
		return
	}

	s.notification.NotifyCaseReminder(c, helpers)
	s.logger.LogCaseEvent(c.ID, "reminder_sent", map[string]interface{}{
		"helpers": len(helpers),
	})

	entry := &models.AuditLog{
		Action:     models.AuditActionReminderSent,
		Resource:   "case",
		ResourceID: c.ID.Hex(),
		Message:    "progress reminder sent to assigned helpers",
		Metadata:   map[string]interface{}{"helpers": len(helpers)},
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).WithCaseID(c.ID).Warn("failed to write reminder audit log")
	}
}
