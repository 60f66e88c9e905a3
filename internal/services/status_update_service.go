package services

import (
	"context"
	"time"

	"pawrescue/internal/models"
	"pawrescue/internal/repositories/interfaces"
	"pawrescue/internal/utils"
	"pawrescue/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusUpdateService validates and persists photo-evidenced progress
// reports. Persisting the record and applying the resulting case transition
// are one unit of work.
type StatusUpdateService interface {
	SubmitUpdate(ctx context.Context, update *models.StatusUpdate) (*models.StatusUpdate, *models.Case, error)
	GetUpdate(ctx context.Context, id primitive.ObjectID) (*models.StatusUpdate, error)
	GetCaseUpdates(ctx context.Context, caseID primitive.ObjectID, params *utils.PaginationParams) ([]*models.StatusUpdate, int64, error)
	MarkRead(ctx context.Context, updateID, userID primitive.ObjectID) error
}

type statusUpdateService struct {
	updateRepo   interfaces.StatusUpdateRepository
	caseRepo     interfaces.CaseRepository
	userRepo     interfaces.UserRepository
	notification NotificationService
	logger       *logger.Logger
}

func NewStatusUpdateService(
	updateRepo interfaces.StatusUpdateRepository,
	caseRepo interfaces.CaseRepository,
	userRepo interfaces.UserRepository,
	notification NotificationService,
	logger *logger.Logger,
) StatusUpdateService {
	return &statusUpdateService{
		updateRepo:   updateRepo,
		caseRepo:     caseRepo,
		userRepo:     userRepo,
		notification: notification,
		logger:       logger,
	}
}

func (s *statusUpdateService) SubmitUpdate(ctx context.Context, update *models.StatusUpdate) (*models.StatusUpdate, *models.Case, error) {
	// All validation happens before any write. A rejected update leaves no
	// partial state behind.
	if err := validateStatusUpdate(update); err != nil {
		return nil, nil, err
	}

	var c *models.Case
	var lastErr error

	for attempt := 0; attempt < utils.TransitionMaxRetries; attempt++ {
		current, err := s.caseRepo.GetByID(ctx, update.CaseID)
		if err != nil {
			return nil, nil, err
		}

		if !current.HasAssignedHelper(update.AuthorID) {
			return nil, nil, utils.ForbiddenError(utils.ErrForbiddenAction)
		}

		caseUpdates, err := statusTransitionUpdates(current, update.NewStatus, time.Now())
		if err != nil {
			return nil, nil, err
		}

		update.PreviousStatus = current.Status
		update.IsSystemEntry = false

		err = s.updateRepo.CreateWithCaseMutation(ctx, update, current.ID, current.Version, caseUpdates)
		if err != nil {
			if utils.IsConflict(err) {
				lastErr = err
				continue
			}
			return nil, nil, err
		}

		c, err = s.caseRepo.GetByID(ctx, update.CaseID)
		if err != nil {
			return nil, nil, err
		}
		lastErr = nil
		break
	}

	if lastErr != nil {
		s.logger.WithCaseID(update.CaseID).Warn("status update exhausted transition retries")
		return nil, nil, lastErr
	}

	s.logger.LogCaseEvent(c.ID, "status_update_submitted", map[string]interface{}{
		"update_id": update.ID.Hex(),
		"condition": update.Condition,
		"status":    c.Status,
	})

	go s.notifyParticipants(c, update)

	return update, c, nil
}

func validateStatusUpdate(update *models.StatusUpdate) error {
	if len(update.PhotoURLs) < utils.MinUpdatePhotos {
		return utils.ValidationError(utils.ErrInsufficientPhotos)
	}
	if len(update.PhotoURLs) > utils.MaxUpdatePhotos {
		return utils.ValidationError(utils.ErrInvalidInput)
	}
	if len(update.Description) < utils.MinUpdateDescriptionLength ||
		len(update.Description) > utils.MaxUpdateDescriptionLength {
		return utils.ValidationError(utils.ErrInvalidInput)
	}
	if !models.ValidUpdateCondition(update.Condition) {
		return utils.ValidationError(utils.ErrInvalidInput)
	}
	if !models.ValidCaseStatus(update.NewStatus) {
		return utils.ValidationError(utils.ErrInvalidInput)
	}
	return nil
}

func (s *statusUpdateService) GetUpdate(ctx context.Context, id primitive.ObjectID) (*models.StatusUpdate, error) {
	return s.updateRepo.GetByID(ctx, id)
}

func (s *statusUpdateService) GetCaseUpdates(ctx context.Context, caseID primitive.ObjectID, params *utils.PaginationParams) ([]*models.StatusUpdate, int64, error) {
	if _, err := s.caseRepo.GetByID(ctx, caseID); err != nil {
		return nil, 0, err
	}
	return s.updateRepo.GetByCase(ctx, caseID, params)
}

func (s *statusUpdateService) MarkRead(ctx context.Context, updateID, userID primitive.ObjectID) error {
	return s.updateRepo.MarkRead(ctx, updateID, userID)
}

// notifyParticipants pushes the update to the other assigned helpers. The
// author already knows.
func (s *statusUpdateService) notifyParticipants(c *models.Case, update *models.StatusUpdate) {
	var recipientIDs []primitive.ObjectID
	for _, id := range c.AssignedHelpers {
		if id != update.AuthorID {
			recipientIDs = append(recipientIDs, id)
		}
	}
	if len(recipientIDs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), utils.NotificationTimeout)
	defer cancel()

	recipients, err := s.userRepo.GetByIDs(ctx, recipientIDs)
	if err != nil {
		s.logger.WithError(err).WithCaseID(c.ID).Error("failed to load update recipients")
		return
	}

	s.notification.NotifyStatusUpdate(c, update, recipients)
}
