package services

import (
	"context"
	"testing"

	"pawrescue/internal/models"
	"pawrescue/internal/repositories/interfaces"
	"pawrescue/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type matcherFixture struct {
	caseRepo *fakeCaseRepo
	userRepo *fakeUserRepo
	areaRepo *fakeAreaRepo
	service  MatchingService
}

func newMatcherFixture() *matcherFixture {
	caseRepo := newFakeCaseRepo()
	userRepo := newFakeUserRepo()
	areaRepo := newFakeAreaRepo()

	return &matcherFixture{
		caseRepo: caseRepo,
		userRepo: userRepo,
		areaRepo: areaRepo,
		service:  NewMatchingService(userRepo, areaRepo, caseRepo, testLogger()),
	}
}

func (f *matcherFixture) seedVerifiedHelper(name string) *models.User {
	return f.userRepo.add(&models.User{
		Name:         name,
		Phone:        "+919800000000",
		UserType:     models.UserTypeHelper,
		Status:       models.UserStatusActive,
		Verification: models.VerificationApproved,
	})
}

func (f *matcherFixture) seedArea(helperID primitive.ObjectID, lat, lng, radiusKM float64) *models.ServiceArea {
	area := &models.ServiceArea{
		HelperID: helperID,
		Center:   models.NewLocation(lat, lng),
		RadiusKM: radiusKM,
		IsActive: true,
	}
	_ = f.areaRepo.Create(context.Background(), area)
	return area
}

// The Mumbai pair used throughout: roughly 6.2 km apart.
const (
	queryLat = 19.07
	queryLng = 72.8
	farLat   = 19.10
	farLng   = 72.85
)

func TestCoverageExcludesAreaBeyondItsOwnRadius(t *testing.T) {
	f := newMatcherFixture()

	// Both centers survive the coarse prefilter (well within 100km), but
	// only the first area's own radius contains the query point.
	covering := f.seedVerifiedHelper("Covering")
	f.seedArea(covering.ID, farLat, farLng, 10)

	tooSmall := f.seedVerifiedHelper("TooSmall")
	f.seedArea(tooSmall.ID, farLat, farLng, 5)

	helpers, err := f.service.FindHelpersCoveringLocation(context.Background(), queryLat, queryLng, nil)
	require.NoError(t, err)

	require.Len(t, helpers, 1)
	assert.Equal(t, covering.ID, helpers[0].ID)
}

func TestCoverageDeduplicatesByHelper(t *testing.T) {
	f := newMatcherFixture()

	helper := f.seedVerifiedHelper("MultiArea")
	f.seedArea(helper.ID, queryLat, queryLng, 10)
	f.seedArea(helper.ID, farLat, farLng, 20)

	helpers, err := f.service.FindHelpersCoveringLocation(context.Background(), queryLat, queryLng, nil)
	require.NoError(t, err)
	assert.Len(t, helpers, 1)
}

func TestCoverageIgnoresInactiveAreas(t *testing.T) {
	f := newMatcherFixture()

	helper := f.seedVerifiedHelper("Inactive")
	area := f.seedArea(helper.ID, queryLat, queryLng, 10)
	require.NoError(t, f.areaRepo.Deactivate(context.Background(), area.ID))

	helpers, err := f.service.FindHelpersCoveringLocation(context.Background(), queryLat, queryLng, nil)
	require.NoError(t, err)
	assert.Empty(t, helpers)
}

func TestCoverageFiltersUnverifiedHelpers(t *testing.T) {
	f := newMatcherFixture()

	unverified := f.userRepo.add(&models.User{
		Name:         "Unverified",
		Phone:        "+919800000001",
		UserType:     models.UserTypeHelper,
		Status:       models.UserStatusActive,
		Verification: models.VerificationPending,
	})
	f.seedArea(unverified.ID, queryLat, queryLng, 10)

	filters := &interfaces.HelperFilters{Verification: models.VerificationApproved, ActiveOnly: true}
	helpers, err := f.service.FindHelpersCoveringLocation(context.Background(), queryLat, queryLng, filters)
	require.NoError(t, err)
	assert.Empty(t, helpers)
}

func TestFindNearbyHelpersOrdersByDistance(t *testing.T) {
	f := newMatcherFixture()

	near := f.seedVerifiedHelper("Near")
	loc := models.NewLocation(queryLat+0.001, queryLng+0.001)
	f.userRepo.users[near.ID].CurrentLocation = &loc

	far := f.seedVerifiedHelper("Far")
	farLoc := models.NewLocation(farLat, farLng)
	f.userRepo.users[far.ID].CurrentLocation = &farLoc

	helpers, err := f.service.FindNearbyHelpers(context.Background(), queryLat, queryLng, 10, nil)
	require.NoError(t, err)

	require.Len(t, helpers, 2)
	assert.Equal(t, near.ID, helpers[0].ID)
	assert.Equal(t, far.ID, helpers[1].ID)
}

func TestFindNearbyHelpersRejectsBadCoordinates(t *testing.T) {
	f := newMatcherFixture()

	_, err := f.service.FindNearbyHelpers(context.Background(), 120, 500, 10, nil)
	assert.True(t, utils.IsValidation(err))
}

func TestCreateServiceAreaValidatesRadius(t *testing.T) {
	f := newMatcherFixture()
	helper := f.seedVerifiedHelper("AreaOwner")

	_, err := f.service.CreateServiceArea(context.Background(), helper.ID, &models.ServiceArea{
		Center:   models.NewLocation(queryLat, queryLng),
		RadiusKM: 150,
	})
	assert.True(t, utils.IsValidation(err))

	created, err := f.service.CreateServiceArea(context.Background(), helper.ID, &models.ServiceArea{
		Center:   models.NewLocation(queryLat, queryLng),
		RadiusKM: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, helper.ID, created.HelperID)
	assert.True(t, created.IsActive)
}

func TestCreateServiceAreaForbiddenForReporter(t *testing.T) {
	f := newMatcherFixture()
	reporter := f.userRepo.add(&models.User{
		Name:     "Reporter",
		Phone:    "+919800000002",
		UserType: models.UserTypeReporter,
		Status:   models.UserStatusActive,
	})

	_, err := f.service.CreateServiceArea(context.Background(), reporter.ID, &models.ServiceArea{
		Center:   models.NewLocation(queryLat, queryLng),
		RadiusKM: 10,
	})
	assert.True(t, utils.IsForbidden(err))
}

func TestUpdateServiceAreaOwnershipEnforced(t *testing.T) {
	f := newMatcherFixture()
	owner := f.seedVerifiedHelper("Owner")
	other := f.seedVerifiedHelper("Other")
	area := f.seedArea(owner.ID, queryLat, queryLng, 10)

	_, err := f.service.UpdateServiceArea(context.Background(), other.ID, area.ID, map[string]interface{}{"radius_km": 20.0})
	assert.True(t, utils.IsForbidden(err))

	updated, err := f.service.UpdateServiceArea(context.Background(), owner.ID, area.ID, map[string]interface{}{"radius_km": 20.0})
	require.NoError(t, err)
	assert.Equal(t, 20.0, updated.RadiusKM)
}
