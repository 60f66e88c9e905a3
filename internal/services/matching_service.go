package services

import (
	"context"
	"fmt"

	"pawrescue/internal/models"
	"pawrescue/internal/repositories/interfaces"
	"pawrescue/internal/utils"
	"pawrescue/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MatchingService answers "which helpers can take this case": proximity
// lookups against live helper locations and coverage lookups against
// declared service areas.
type MatchingService interface {
	FindNearbyHelpers(ctx context.Context, lat, lng, radiusKM float64, filters *interfaces.HelperFilters) ([]*models.User, error)
	FindHelpersCoveringLocation(ctx context.Context, lat, lng float64, filters *interfaces.HelperFilters) ([]*models.User, error)
	FindCandidateHelpers(ctx context.Context, c *models.Case) ([]*models.User, error)
	GetNearbyOpenCases(ctx context.Context, lat, lng, radiusKM float64) ([]*models.Case, error)

	CreateServiceArea(ctx context.Context, helperID primitive.ObjectID, area *models.ServiceArea) (*models.ServiceArea, error)
	UpdateServiceArea(ctx context.Context, helperID, areaID primitive.ObjectID, updates map[string]interface{}) (*models.ServiceArea, error)
	DeactivateServiceArea(ctx context.Context, helperID, areaID primitive.ObjectID) error
	GetHelperServiceAreas(ctx context.Context, helperID primitive.ObjectID) ([]*models.ServiceArea, error)
}

type matchingService struct {
	userRepo interfaces.UserRepository
	areaRepo interfaces.ServiceAreaRepository
	caseRepo interfaces.CaseRepository
	logger   *logger.Logger
}

func NewMatchingService(
	userRepo interfaces.UserRepository,
	areaRepo interfaces.ServiceAreaRepository,
	caseRepo interfaces.CaseRepository,
	logger *logger.Logger,
) MatchingService {
	return &matchingService{
		userRepo: userRepo,
		areaRepo: areaRepo,
		caseRepo: caseRepo,
		logger:   logger,
	}
}

func (s *matchingService) FindNearbyHelpers(ctx context.Context, lat, lng, radiusKM float64, filters *interfaces.HelperFilters) ([]*models.User, error) {
	if !utils.IsValidCoordinates(lat, lng) {
		return nil, utils.ValidationError(utils.ErrInvalidInput)
	}
	if radiusKM <= 0 || radiusKM > utils.MaxSearchRadiusKM {
		radiusKM = utils.DefaultSearchRadiusKM
	}

	return s.userRepo.GetNearbyHelpers(ctx, lat, lng, radiusKM, filters)
}

// FindHelpersCoveringLocation resolves helpers whose declared service area
// contains the point. The index-backed $near lookup against area centers is
// only a coarse prefilter bounded by the maximum allowed area radius; each
// candidate is then tested against its own radius, because an area center
// within 100km proves nothing about a 5km circle.
func (s *matchingService) FindHelpersCoveringLocation(ctx context.Context, lat, lng float64, filters *interfaces.HelperFilters) ([]*models.User, error) {
	if !utils.IsValidCoordinates(lat, lng) {
		return nil, utils.ValidationError(utils.ErrInvalidInput)
	}

	candidates, err := s.areaRepo.GetNearCenter(ctx, lat, lng, models.MaxServiceAreaRadiusKM)
	if err != nil {
		return nil, fmt.Errorf("failed to query service areas: %w", err)
	}

	query := utils.Point{Lat: lat, Lng: lng}
	helperIDs := make([]primitive.ObjectID, 0, len(candidates))
	seen := make(map[primitive.ObjectID]bool)
	for _, area := range candidates {
		center := utils.NewPointFromCoordinates(area.Center.Coordinates)
		if !utils.IsPointInCircle(query, center, area.RadiusKM) {
			continue
		}
		if seen[area.HelperID] {
			continue
		}
		seen[area.HelperID] = true
		helperIDs = append(helperIDs, area.HelperID)
	}

	if len(helperIDs) == 0 {
		return nil, nil
	}

	helpers, err := s.userRepo.GetByIDs(ctx, helperIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load covering helpers: %w", err)
	}

	return filterHelpers(helpers, filters), nil
}

// FindCandidateHelpers merges proximity and coverage matches for a case,
// deduplicated, proximity matches first.
func (s *matchingService) FindCandidateHelpers(ctx context.Context, c *models.Case) ([]*models.User, error) {
	lat, lng := c.Location.Latitude(), c.Location.Longitude()

	filters := &interfaces.HelperFilters{
		Verification: models.VerificationApproved,
		ActiveOnly:   true,
	}

	nearby, err := s.FindNearbyHelpers(ctx, lat, lng, utils.DefaultSearchRadiusKM, filters)
	if err != nil {
		return nil, err
	}

	covering, err := s.FindHelpersCoveringLocation(ctx, lat, lng, filters)
	if err != nil {
		// Proximity matches alone are still useful.
		s.logger.WithError(err).WithCaseID(c.ID).Warn("coverage lookup failed, using proximity matches only")
		covering = nil
	}

	seen := make(map[primitive.ObjectID]bool, len(nearby))
	merged := make([]*models.User, 0, len(nearby)+len(covering))
	for _, u := range nearby {
		if !seen[u.ID] {
			seen[u.ID] = true
			merged = append(merged, u)
		}
	}
	for _, u := range covering {
		if !seen[u.ID] {
			seen[u.ID] = true
			merged = append(merged, u)
		}
	}

	if len(merged) > utils.MaxNearbyHelpers {
		merged = merged[:utils.MaxNearbyHelpers]
	}

	return merged, nil
}

func (s *matchingService) GetNearbyOpenCases(ctx context.Context, lat, lng, radiusKM float64) ([]*models.Case, error) {
	if !utils.IsValidCoordinates(lat, lng) {
		return nil, utils.ValidationError(utils.ErrInvalidInput)
	}
	if radiusKM <= 0 || radiusKM > utils.MaxSearchRadiusKM {
		radiusKM = utils.DefaultSearchRadiusKM
	}

	return s.caseRepo.GetNearbyOpenCases(ctx, lat, lng, radiusKM)
}

func (s *matchingService) CreateServiceArea(ctx context.Context, helperID primitive.ObjectID, area *models.ServiceArea) (*models.ServiceArea, error) {
	helper, err := s.userRepo.GetByID(ctx, helperID)
	if err != nil {
		return nil, err
	}
	if helper.UserType != models.UserTypeHelper && helper.UserType != models.UserTypeNGO {
		return nil, utils.ForbiddenError(utils.ErrForbiddenAction)
	}

	if area.RadiusKM < models.MinServiceAreaRadiusKM || area.RadiusKM > models.MaxServiceAreaRadiusKM {
		return nil, utils.ValidationError(utils.ErrAreaRadiusOutOfRange)
	}
	if !utils.IsValidCoordinates(area.Center.Latitude(), area.Center.Longitude()) {
		return nil, utils.ValidationError(utils.ErrInvalidInput)
	}

	area.HelperID = helperID
	area.Center.Type = "Point"
	area.IsActive = true

	if err := s.areaRepo.Create(ctx, area); err != nil {
		return nil, err
	}

	s.logger.WithUserID(helperID).WithField("area_id", area.ID.Hex()).Info("service area created")
	return area, nil
}

func (s *matchingService) UpdateServiceArea(ctx context.Context, helperID, areaID primitive.ObjectID, updates map[string]interface{}) (*models.ServiceArea, error) {
	area, err := s.areaRepo.GetByID(ctx, areaID)
	if err != nil {
		return nil, err
	}
	if area.HelperID != helperID {
		return nil, utils.ForbiddenError(utils.ErrForbiddenAction)
	}

	if radius, ok := updates["radius_km"].(float64); ok {
		if radius < models.MinServiceAreaRadiusKM || radius > models.MaxServiceAreaRadiusKM {
			return nil, utils.ValidationError(utils.ErrAreaRadiusOutOfRange)
		}
	}

	if err := s.areaRepo.Update(ctx, areaID, updates); err != nil {
		return nil, err
	}

	return s.areaRepo.GetByID(ctx, areaID)
}

func (s *matchingService) DeactivateServiceArea(ctx context.Context, helperID, areaID primitive.ObjectID) error {
	area, err := s.areaRepo.GetByID(ctx, areaID)
	if err != nil {
		return err
	}
	if area.HelperID != helperID {
		return utils.ForbiddenError(utils.ErrForbiddenAction)
	}

	return s.areaRepo.Deactivate(ctx, areaID)
}

func (s *matchingService) GetHelperServiceAreas(ctx context.Context, helperID primitive.ObjectID) ([]*models.ServiceArea, error) {
	return s.areaRepo.GetByHelper(ctx, helperID)
}

func filterHelpers(helpers []*models.User, filters *interfaces.HelperFilters) []*models.User {
	out := make([]*models.User, 0, len(helpers))
	for _, u := range helpers {
		if filters != nil {
			if filters.UserType != "" && u.UserType != filters.UserType {
				continue
			}
			if filters.Verification != "" && u.Verification != filters.Verification {
				continue
			}
			if filters.ActiveOnly && u.Status != models.UserStatusActive {
				continue
			}
		}
		if u.UserType != models.UserTypeHelper && u.UserType != models.UserTypeNGO {
			continue
		}
		if u.DeletedAt != nil {
			continue
		}
		out = append(out, u)
	}
	return out
}
