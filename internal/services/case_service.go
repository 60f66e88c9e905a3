package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pawrescue/internal/models"
	"pawrescue/internal/repositories/interfaces"
	"pawrescue/internal/utils"
	"pawrescue/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CaseService owns the case state machine. Every mutation of a case funnels
// through here; nothing else writes case lifecycle fields.
type CaseService interface {
	CreateCase(ctx context.Context, c *models.Case) (*models.Case, error)
	GetCase(ctx context.Context, id primitive.ObjectID) (*models.Case, error)
	GetCaseByNumber(ctx context.Context, caseNumber string) (*models.Case, error)
	GetReporterCases(ctx context.Context, reporterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Case, int64, error)
	GetHelperCases(ctx context.Context, helperID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Case, int64, error)
	GetCasesByStatus(ctx context.Context, status models.CaseStatus, params *utils.PaginationParams) ([]*models.Case, int64, error)

	AssignHelper(ctx context.Context, caseID, helperID primitive.ObjectID) (*models.Case, error)
	Transfer(ctx context.Context, caseID, actorID primitive.ObjectID, reason string) (*models.Case, error)
	MarkResolved(ctx context.Context, caseID, actorID primitive.ObjectID) (*models.Case, error)
	ReporterApprove(ctx context.Context, caseID, actorID primitive.ObjectID) (*models.Case, error)
	ReporterReject(ctx context.Context, caseID, actorID primitive.ObjectID, reason string) (*models.Case, error)
}

type caseService struct {
	caseRepo     interfaces.CaseRepository
	updateRepo   interfaces.StatusUpdateRepository
	userRepo     interfaces.UserRepository
	auditRepo    interfaces.AuditLogRepository
	matching     MatchingService
	notification NotificationService
	logger       *logger.Logger
}

func NewCaseService(
	caseRepo interfaces.CaseRepository,
	updateRepo interfaces.StatusUpdateRepository,
	userRepo interfaces.UserRepository,
	auditRepo interfaces.AuditLogRepository,
	matching MatchingService,
	notification NotificationService,
	logger *logger.Logger,
) CaseService {
	return &caseService{
		caseRepo:     caseRepo,
		updateRepo:   updateRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		matching:     matching,
		notification: notification,
		logger:       logger,
	}
}

// statusTransitionUpdates is the single authoritative transition rule.
// Assignment, status updates, resolution, and reporter decisions all build
// their case mutation through it, so the reminder and approval invariants
// cannot drift between call sites.
func statusTransitionUpdates(c *models.Case, newStatus models.CaseStatus, now time.Time) (map[string]interface{}, error) {
	if !models.ValidCaseStatus(newStatus) {
		return nil, utils.ValidationError(utils.ErrInvalidInput)
	}

	updates := map[string]interface{}{
		"last_status_update": now,
	}

	switch newStatus {
	case models.CaseStatusAssigned, models.CaseStatusInProgress:
		updates["status"] = newStatus
		updates["next_reminder_due"] = now.Add(utils.ReminderInterval)
		updates["reminder_sent"] = false

	case models.CaseStatusResolved:
		// Resolved is never stored while approval is required: the case
		// stays in_progress awaiting the reporter's decision.
		if c.RequiresReporterApproval {
			updates["status"] = models.CaseStatusInProgress
			updates["pending_reporter_approval"] = true
		} else {
			updates["status"] = models.CaseStatusClosed
			updates["pending_reporter_approval"] = false
		}
		updates["resolved_at"] = now
		updates["next_reminder_due"] = nil
		updates["reminder_sent"] = false

	case models.CaseStatusClosed:
		updates["status"] = models.CaseStatusClosed
		updates["resolved_at"] = now
		updates["next_reminder_due"] = nil
		updates["reminder_sent"] = false
		updates["pending_reporter_approval"] = false

	case models.CaseStatusOpen:
		updates["status"] = models.CaseStatusOpen
		updates["next_reminder_due"] = nil
		updates["reminder_sent"] = false
		updates["pending_reporter_approval"] = false
	}

	return updates, nil
}

func (s *caseService) CreateCase(ctx context.Context, c *models.Case) (*models.Case, error) {
	if !utils.IsValidCoordinates(c.Location.Latitude(), c.Location.Longitude()) {
		return nil, utils.ValidationError(utils.ErrInvalidInput)
	}

	now := time.Now()
	c.CaseNumber = utils.GenerateCaseNumber()
	c.Status = models.CaseStatusOpen
	c.Location.Type = "Point"
	c.LastStatusUpdate = now
	c.NextReminderDue = nil
	c.ReminderSent = false
	c.PendingReporterApproval = false
	if c.UrgencyLevel == "" {
		c.UrgencyLevel = models.UrgencyMedium
	}

	if err := s.caseRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.LogCaseEvent(c.ID, "case_created", map[string]interface{}{
		"case_number": c.CaseNumber,
		"animal_type": c.AnimalType,
		"condition":   c.Condition,
		"urgency":     c.UrgencyLevel,
	})
	s.writeAudit(ctx, c.ReporterID, models.AuditActionCaseCreated, c.ID, fmt.Sprintf("case %s created", c.CaseNumber), nil)

	go s.broadcastNewCase(c)

	return c, nil
}

// broadcastNewCase surfaces the fresh case to candidate helpers. Matching and
// delivery failures are logged only; the case already exists.
func (s *caseService) broadcastNewCase(c *models.Case) {
	ctx, cancel := context.WithTimeout(context.Background(), utils.NotificationTimeout)
	defer cancel()

	helpers, err := s.matching.FindCandidateHelpers(ctx, c)
	if err != nil {
		s.logger.WithError(err).WithCaseID(c.ID).Error("failed to match helpers for new case")
		return
	}
	if len(helpers) == 0 {
		s.logger.WithCaseID(c.ID).Warn("no helpers matched for new case")
		return
	}

	s.notification.NotifyNewCaseNearby(c, helpers)
}

func (s *caseService) GetCase(ctx context.Context, id primitive.ObjectID) (*models.Case, error) {
	return s.caseRepo.GetByID(ctx, id)
}

func (s *caseService) GetCaseByNumber(ctx context.Context, caseNumber string) (*models.Case, error) {
	return s.caseRepo.GetByCaseNumber(ctx, caseNumber)
}

func (s *caseService) GetReporterCases(ctx context.Context, reporterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Case, int64, error) {
	return s.caseRepo.GetByReporter(ctx, reporterID, params)
}

func (s *caseService) GetHelperCases(ctx context.Context, helperID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Case, int64, error) {
	return s.caseRepo.GetByHelper(ctx, helperID, params)
}

func (s *caseService) GetCasesByStatus(ctx context.Context, status models.CaseStatus, params *utils.PaginationParams) ([]*models.Case, int64, error) {
	if !models.ValidCaseStatus(status) {
		return nil, 0, utils.ValidationError(utils.ErrInvalidInput)
	}
	return s.caseRepo.GetByStatus(ctx, status, params)
}

func (s *caseService) AssignHelper(ctx context.Context, caseID, helperID primitive.ObjectID) (*models.Case, error) {
	helper, err := s.userRepo.GetByID(ctx, helperID)
	if err != nil {
		return nil, err
	}
	if !helper.IsEligibleHelper() {
		return nil, utils.ForbiddenError(utils.ErrHelperNotVerified)
	}

	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.IsTerminal() {
		return nil, utils.ValidationError(utils.ErrInvalidInput)
	}

	now := time.Now()
	// Set-insert: two helpers assigning concurrently both succeed, and
	// re-assigning an already assigned helper is a no-op.
	if err := s.caseRepo.AddAssignedHelper(ctx, caseID, helperID, now); err != nil {
		return nil, err
	}

	if c.Status == models.CaseStatusOpen {
		c, err = s.transitionWithRetry(ctx, caseID, models.CaseStatusAssigned)
		if err != nil {
			return nil, err
		}
	} else {
		c, err = s.caseRepo.GetByID(ctx, caseID)
		if err != nil {
			return nil, err
		}
	}

	s.logger.LogCaseEvent(caseID, "helper_assigned", map[string]interface{}{"helper_id": helperID.Hex()})
	s.writeAudit(ctx, &helperID, models.AuditActionHelperAssigned, caseID, fmt.Sprintf("%s joined the case", helper.Name), nil)
	s.notification.NotifyHelperAssigned(c, helper)

	return c, nil
}

func (s *caseService) Transfer(ctx context.Context, caseID, actorID primitive.ObjectID, reason string) (*models.Case, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, utils.ValidationError(utils.ErrInvalidInput)
	}

	c, err := s.updateWithRetry(ctx, caseID, func(c *models.Case) (map[string]interface{}, error) {
		now := time.Now()
		updates, err := statusTransitionUpdates(c, models.CaseStatusOpen, now)
		if err != nil {
			return nil, err
		}
		// Transfer is the one deliberate exception to forward-only
		// progression: the case goes back to open at critical urgency so a
		// wider pool picks it up.
		updates["urgency_level"] = models.UrgencyCritical
		updates["description"] = c.Description + fmt.Sprintf("\n\n[Transferred %s] %s", now.Format("2006-01-02"), reason)
		return updates, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogCaseEvent(caseID, "case_transferred", map[string]interface{}{"reason": reason})
	s.writeAudit(ctx, &actorID, models.AuditActionCaseTransferred, caseID, reason, nil)

	go s.rebroadcastCase(c)

	return c, nil
}

func (s *caseService) rebroadcastCase(c *models.Case) {
	ctx, cancel := context.WithTimeout(context.Background(), utils.NotificationTimeout)
	defer cancel()

	helpers, err := s.matching.FindCandidateHelpers(ctx, c)
	if err != nil {
		s.logger.WithError(err).WithCaseID(c.ID).Error("failed to match helpers for transferred case")
		return
	}
	if len(helpers) > 0 {
		s.notification.NotifyCaseTransferred(c, helpers)
	}
}

func (s *caseService) MarkResolved(ctx context.Context, caseID, actorID primitive.ObjectID) (*models.Case, error) {
	c, err := s.transitionWithRetry(ctx, caseID, models.CaseStatusResolved)
	if err != nil {
		return nil, err
	}

	s.logger.LogCaseEvent(caseID, "case_resolved", map[string]interface{}{
		"pending_reporter_approval": c.PendingReporterApproval,
	})
	s.writeAudit(ctx, &actorID, models.AuditActionStatusTransition, caseID, "case marked resolved", map[string]interface{}{
		"pending_reporter_approval": c.PendingReporterApproval,
	})

	if c.PendingReporterApproval {
		s.notification.NotifyResolutionPending(c)
	}

	return c, nil
}

func (s *caseService) ReporterApprove(ctx context.Context, caseID, actorID primitive.ObjectID) (*models.Case, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeReporter(ctx, c, actorID); err != nil {
		return nil, err
	}
	if !c.PendingReporterApproval {
		return nil, utils.ValidationError(utils.ErrNotPendingApproval)
	}

	c, err = s.transitionWithRetry(ctx, caseID, models.CaseStatusClosed)
	if err != nil {
		return nil, err
	}

	s.logger.LogCaseEvent(caseID, "reporter_approved", nil)
	s.writeAudit(ctx, &actorID, models.AuditActionReporterApproved, caseID, "reporter confirmed the resolution", nil)
	s.emitSystemUpdate(ctx, c, actorID, models.UpdateConditionRecovered,
		"The reporter reviewed the outcome and confirmed the animal has been helped. The case is now closed.")

	return c, nil
}

func (s *caseService) ReporterReject(ctx context.Context, caseID, actorID primitive.ObjectID, reason string) (*models.Case, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeReporter(ctx, c, actorID); err != nil {
		return nil, err
	}
	if !c.PendingReporterApproval {
		return nil, utils.ValidationError(utils.ErrNotPendingApproval)
	}

	c, err = s.updateWithRetry(ctx, caseID, func(c *models.Case) (map[string]interface{}, error) {
		now := time.Now()
		updates, err := statusTransitionUpdates(c, models.CaseStatusInProgress, now)
		if err != nil {
			return nil, err
		}
		// Rejection reopens active work: the resolution attempt is undone
		// and the daily reporting clock restarts.
		updates["pending_reporter_approval"] = false
		updates["resolved_at"] = nil
		return updates, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogCaseEvent(caseID, "reporter_rejected", map[string]interface{}{"reason": reason})
	s.writeAudit(ctx, &actorID, models.AuditActionReporterRejected, caseID, reason, nil)
	s.emitSystemUpdate(ctx, c, actorID, models.UpdateConditionStable,
		fmt.Sprintf("The reporter rejected the resolution and the case was reopened. Reason given: %s", reason))

	go s.notifyAssignedHelpers(c, func(helpers []*models.User) {
		s.notification.NotifyResolutionRejected(c, helpers, reason)
	})

	return c, nil
}

// authorizeReporter enforces the reporter approval gate. When the case has a
// reporter reference the actor must be that user. Anonymous reports fall back
// to contact-info reconciliation: the actor's phone or email must equal the
// contact details stored on the case.
func (s *caseService) authorizeReporter(ctx context.Context, c *models.Case, actorID primitive.ObjectID) error {
	if c.ReporterID != nil {
		if *c.ReporterID == actorID {
			return nil
		}
		return utils.ForbiddenError(utils.ErrNotCaseReporter)
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if utils.IsNotFound(err) {
			return utils.ForbiddenError(utils.ErrNotCaseReporter)
		}
		return err
	}

	if utils.SamePhone(actor.Phone, c.ContactInfo.Phone) {
		return nil
	}
	if actor.Email != "" && c.ContactInfo.Email != "" &&
		strings.EqualFold(actor.Email, c.ContactInfo.Email) {
		return nil
	}

	return utils.ForbiddenError(utils.ErrNotCaseReporter)
}

// transitionWithRetry applies the standard transition for newStatus under the
// version guard, retrying on concurrent modification.
func (s *caseService) transitionWithRetry(ctx context.Context, caseID primitive.ObjectID, newStatus models.CaseStatus) (*models.Case, error) {
	return s.updateWithRetry(ctx, caseID, func(c *models.Case) (map[string]interface{}, error) {
		return statusTransitionUpdates(c, newStatus, time.Now())
	})
}

// updateWithRetry runs a read-compute-write cycle guarded by the case version.
// A conflict means another writer committed between our read and write; the
// cycle re-reads and recomputes rather than overwriting their changes.
func (s *caseService) updateWithRetry(ctx context.Context, caseID primitive.ObjectID, compute func(c *models.Case) (map[string]interface{}, error)) (*models.Case, error) {
	var lastErr error

	for attempt := 0; attempt < utils.TransitionMaxRetries; attempt++ {
		c, err := s.caseRepo.GetByID(ctx, caseID)
		if err != nil {
			return nil, err
		}

		updates, err := compute(c)
		if err != nil {
			return nil, err
		}

		if err := s.caseRepo.UpdateWithVersion(ctx, caseID, c.Version, updates); err != nil {
			if utils.IsConflict(err) {
				lastErr = err
				continue
			}
			return nil, err
		}

		return s.caseRepo.GetByID(ctx, caseID)
	}

	s.logger.WithCaseID(caseID).Warn("case transition exhausted retries")
	return nil, lastErr
}

// emitSystemUpdate appends a system-authored entry to the case timeline.
// Best-effort: a failed audit entry never fails the transition it describes.
func (s *caseService) emitSystemUpdate(ctx context.Context, c *models.Case, authorID primitive.ObjectID, condition models.UpdateCondition, description string) {
	update := &models.StatusUpdate{
		CaseID:         c.ID,
		AuthorID:       authorID,
		PreviousStatus: c.Status,
		NewStatus:      c.Status,
		Condition:      condition,
		Description:    description,
		IsSystemEntry:  true,
	}

	if err := s.updateRepo.Create(ctx, update); err != nil {
		s.logger.WithError(err).WithCaseID(c.ID).Warn("failed to write system status update")
	}
}

func (s *caseService) writeAudit(ctx context.Context, userID *primitive.ObjectID, action models.AuditAction, caseID primitive.ObjectID, message string, metadata map[string]interface{}) {
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   "case",
		ResourceID: caseID.Hex(),
		Message:    message,
		Metadata:   metadata,
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).WithCaseID(caseID).Warn("failed to write audit log")
	}
}

func (s *caseService) notifyAssignedHelpers(c *models.Case, send func(helpers []*models.User)) {
	if len(c.AssignedHelpers) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), utils.NotificationTimeout)
	defer cancel()

	helpers, err := s.userRepo.GetByIDs(ctx, c.AssignedHelpers)
	if err != nil {
		s.logger.WithError(err).WithCaseID(c.ID).Error("failed to load assigned helpers")
		return
	}

	send(helpers)
}
