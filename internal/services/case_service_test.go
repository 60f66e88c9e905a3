package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"pawrescue/internal/models"
	"pawrescue/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type lifecycleFixture struct {
	caseRepo   *fakeCaseRepo
	updateRepo *fakeUpdateRepo
	userRepo   *fakeUserRepo
	areaRepo   *fakeAreaRepo
	auditRepo  *fakeAuditRepo
	notifier   *fakeNotifier
	service    CaseService
}

func newLifecycleFixture() *lifecycleFixture {
	log := testLogger()
	caseRepo := newFakeCaseRepo()
	updateRepo := newFakeUpdateRepo(caseRepo)
	userRepo := newFakeUserRepo()
	areaRepo := newFakeAreaRepo()
	auditRepo := newFakeAuditRepo()
	notifier := &fakeNotifier{}

	matching := NewMatchingService(userRepo, areaRepo, caseRepo, log)
	service := NewCaseService(caseRepo, updateRepo, userRepo, auditRepo, matching, notifier, log)

	return &lifecycleFixture{
		caseRepo:   caseRepo,
		updateRepo: updateRepo,
		userRepo:   userRepo,
		areaRepo:   areaRepo,
		auditRepo:  auditRepo,
		notifier:   notifier,
		service:    service,
	}
}

func (f *lifecycleFixture) seedHelper(t *testing.T) *models.User {
	t.Helper()
	return f.userRepo.add(&models.User{
		Name:         "Asha Volunteer",
		Phone:        "+919812345678",
		UserType:     models.UserTypeHelper,
		Status:       models.UserStatusActive,
		Verification: models.VerificationApproved,
	})
}

func (f *lifecycleFixture) seedCase(t *testing.T, mutate func(*models.Case)) *models.Case {
	t.Helper()

	c := &models.Case{
		CaseNumber:  utils.GenerateCaseNumber(),
		AnimalType:  models.AnimalTypeDog,
		Condition:   models.AnimalConditionInjured,
		Description: "Injured stray dog near the flyover, unable to walk on its hind legs.",
		Location:    models.NewLocation(19.07, 72.8),
		ContactInfo: models.ContactInfo{Phone: "+919876543210", Email: "reporter@example.com"},
		Status:      models.CaseStatusOpen,
	}
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, f.caseRepo.Create(context.Background(), c))
	return c
}

func TestCreateCaseDefaults(t *testing.T) {
	f := newLifecycleFixture()

	created, err := f.service.CreateCase(context.Background(), &models.Case{
		AnimalType:  models.AnimalTypeCat,
		Condition:   models.AnimalConditionTrapped,
		Description: "Cat trapped in a drain pipe behind the market.",
		Location:    models.NewLocation(19.07, 72.8),
		ContactInfo: models.ContactInfo{Phone: "+919876543210"},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(created.CaseNumber, "RC-"))
	assert.Equal(t, models.CaseStatusOpen, created.Status)
	assert.Equal(t, models.UrgencyMedium, created.UrgencyLevel)
	assert.Nil(t, created.NextReminderDue)
	assert.Equal(t, int64(1), created.Version)

	assert.Contains(t, f.auditRepo.actions(), models.AuditActionCaseCreated)
}

func TestCreateCaseRejectsBadCoordinates(t *testing.T) {
	f := newLifecycleFixture()

	_, err := f.service.CreateCase(context.Background(), &models.Case{
		AnimalType:  models.AnimalTypeDog,
		Condition:   models.AnimalConditionSick,
		Description: "Out-of-range coordinates should never reach storage.",
		Location:    models.Location{Type: "Point", Coordinates: []float64{200, 95}},
		ContactInfo: models.ContactInfo{Phone: "+919876543210"},
	})
	assert.True(t, utils.IsValidation(err))
}

func TestAssignHelperIsIdempotent(t *testing.T) {
	f := newLifecycleFixture()
	helper := f.seedHelper(t)
	c := f.seedCase(t, nil)

	first, err := f.service.AssignHelper(context.Background(), c.ID, helper.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusAssigned, first.Status)
	require.NotNil(t, first.NextReminderDue)
	assert.WithinDuration(t, time.Now().Add(utils.ReminderInterval), *first.NextReminderDue, 2*time.Second)
	assert.False(t, first.ReminderSent)

	second, err := f.service.AssignHelper(context.Background(), c.ID, helper.ID)
	require.NoError(t, err)
	assert.Len(t, second.AssignedHelpers, 1)
	assert.Equal(t, models.CaseStatusAssigned, second.Status)
}

func TestAssignHelperRejectsUnverified(t *testing.T) {
	f := newLifecycleFixture()
	c := f.seedCase(t, nil)
	pending := f.userRepo.add(&models.User{
		Name:         "Pending Helper",
		Phone:        "+919800000001",
		UserType:     models.UserTypeHelper,
		Status:       models.UserStatusActive,
		Verification: models.VerificationPending,
	})

	_, err := f.service.AssignHelper(context.Background(), c.ID, pending.ID)
	assert.True(t, utils.IsForbidden(err))
}

func TestAssignHelperRejectsClosedCase(t *testing.T) {
	f := newLifecycleFixture()
	helper := f.seedHelper(t)
	c := f.seedCase(t, func(c *models.Case) {
		c.Status = models.CaseStatusClosed
	})

	_, err := f.service.AssignHelper(context.Background(), c.ID, helper.ID)
	assert.True(t, utils.IsValidation(err))
}

func TestMarkResolvedWithApprovalGate(t *testing.T) {
	f := newLifecycleFixture()
	actor := f.seedHelper(t)
	due := time.Now().Add(time.Hour)
	c := f.seedCase(t, func(c *models.Case) {
		c.Status = models.CaseStatusInProgress
		c.RequiresReporterApproval = true
		c.NextReminderDue = &due
	})

	updated, err := f.service.MarkResolved(context.Background(), c.ID, actor.ID)
	require.NoError(t, err)

	// Resolved is never stored while the reporter still has to sign off.
	assert.Equal(t, models.CaseStatusInProgress, updated.Status)
	assert.True(t, updated.PendingReporterApproval)
	require.NotNil(t, updated.ResolvedAt)
	assert.Nil(t, updated.NextReminderDue)
	assert.Equal(t, 1, f.notifier.pendingCalls)
}

func TestMarkResolvedWithoutApprovalCloses(t *testing.T) {
	f := newLifecycleFixture()
	actor := f.seedHelper(t)
	c := f.seedCase(t, func(c *models.Case) {
		c.Status = models.CaseStatusInProgress
	})

	updated, err := f.service.MarkResolved(context.Background(), c.ID, actor.ID)
	require.NoError(t, err)

	assert.Equal(t, models.CaseStatusClosed, updated.Status)
	assert.False(t, updated.PendingReporterApproval)
	require.NotNil(t, updated.ResolvedAt)
	assert.Nil(t, updated.NextReminderDue)
	assert.Equal(t, 0, f.notifier.pendingCalls)
}

func TestReporterApproveClosesCase(t *testing.T) {
	f := newLifecycleFixture()
	reporter := f.userRepo.add(&models.User{
		Name:     "Reporter",
		Phone:    "+919876543210",
		UserType: models.UserTypeReporter,
		Status:   models.UserStatusActive,
	})
	resolvedAt := time.Now()
	c := f.seedCase(t, func(c *models.Case) {
		c.ReporterID = &reporter.ID
		c.Status = models.CaseStatusInProgress
		c.RequiresReporterApproval = true
		c.PendingReporterApproval = true
		c.ResolvedAt = &resolvedAt
	})

	updated, err := f.service.ReporterApprove(context.Background(), c.ID, reporter.ID)
	require.NoError(t, err)

	assert.Equal(t, models.CaseStatusClosed, updated.Status)
	assert.False(t, updated.PendingReporterApproval)
	assert.Nil(t, updated.NextReminderDue)

	updates, _, err := f.updateRepo.GetByCase(context.Background(), c.ID, nil)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.True(t, updates[0].IsSystemEntry)
	assert.Equal(t, models.UpdateConditionRecovered, updates[0].Condition)
}

func TestReporterApproveForbiddenForStranger(t *testing.T) {
	f := newLifecycleFixture()
	reporter := f.userRepo.add(&models.User{Name: "Reporter", Phone: "+919876543210", UserType: models.UserTypeReporter})
	stranger := f.userRepo.add(&models.User{Name: "Stranger", Phone: "+911111111111", UserType: models.UserTypeReporter})
	c := f.seedCase(t, func(c *models.Case) {
		c.ReporterID = &reporter.ID
		c.Status = models.CaseStatusInProgress
		c.PendingReporterApproval = true
	})

	_, err := f.service.ReporterApprove(context.Background(), c.ID, stranger.ID)
	assert.True(t, utils.IsForbidden(err))
}

func TestReporterApproveRequiresPendingState(t *testing.T) {
	f := newLifecycleFixture()
	reporter := f.userRepo.add(&models.User{Name: "Reporter", Phone: "+919876543210", UserType: models.UserTypeReporter})
	c := f.seedCase(t, func(c *models.Case) {
		c.ReporterID = &reporter.ID
		c.Status = models.CaseStatusInProgress
	})

	_, err := f.service.ReporterApprove(context.Background(), c.ID, reporter.ID)
	assert.True(t, utils.IsValidation(err))
}

func TestReporterRejectReopensCase(t *testing.T) {
	f := newLifecycleFixture()
	reporter := f.userRepo.add(&models.User{Name: "Reporter", Phone: "+919876543210", UserType: models.UserTypeReporter})
	helper := f.seedHelper(t)
	resolvedAt := time.Now()
	c := f.seedCase(t, func(c *models.Case) {
		c.ReporterID = &reporter.ID
		c.Status = models.CaseStatusInProgress
		c.RequiresReporterApproval = true
		c.PendingReporterApproval = true
		c.ResolvedAt = &resolvedAt
		c.AssignedHelpers = []primitive.ObjectID{helper.ID}
	})

	updated, err := f.service.ReporterReject(context.Background(), c.ID, reporter.ID, "The dog is still limping badly")
	require.NoError(t, err)

	assert.Equal(t, models.CaseStatusInProgress, updated.Status)
	assert.False(t, updated.PendingReporterApproval)
	assert.Nil(t, updated.ResolvedAt)
	require.NotNil(t, updated.NextReminderDue)
	assert.WithinDuration(t, time.Now().Add(utils.ReminderInterval), *updated.NextReminderDue, time.Second)
	assert.False(t, updated.ReminderSent)

	updates, _, err := f.updateRepo.GetByCase(context.Background(), c.ID, nil)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, models.UpdateConditionStable, updates[0].Condition)
	assert.Contains(t, f.auditRepo.actions(), models.AuditActionReporterRejected)
}

func TestAnonymousReporterMatchedByContactInfo(t *testing.T) {
	f := newLifecycleFixture()
	// Same number as the case contact, formatted differently.
	claimant := f.userRepo.add(&models.User{Name: "Claimant", Phone: "+91 98765 43210", UserType: models.UserTypeReporter})
	imposter := f.userRepo.add(&models.User{Name: "Imposter", Phone: "+912222222222", Email: "other@example.com", UserType: models.UserTypeReporter})
	c := f.seedCase(t, func(c *models.Case) {
		c.ReporterID = nil
		c.Status = models.CaseStatusInProgress
		c.PendingReporterApproval = true
	})

	_, err := f.service.ReporterApprove(context.Background(), c.ID, imposter.ID)
	assert.True(t, utils.IsForbidden(err))

	updated, err := f.service.ReporterApprove(context.Background(), c.ID, claimant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusClosed, updated.Status)
}

func TestTransferReopensAtCriticalUrgency(t *testing.T) {
	f := newLifecycleFixture()
	helper := f.seedHelper(t)
	due := time.Now().Add(time.Hour)
	c := f.seedCase(t, func(c *models.Case) {
		c.Status = models.CaseStatusInProgress
		c.UrgencyLevel = models.UrgencyLow
		c.NextReminderDue = &due
		c.AssignedHelpers = []primitive.ObjectID{helper.ID}
	})

	updated, err := f.service.Transfer(context.Background(), c.ID, helper.ID, "Relocating, cannot continue care")
	require.NoError(t, err)

	assert.Equal(t, models.CaseStatusOpen, updated.Status)
	assert.Equal(t, models.UrgencyCritical, updated.UrgencyLevel)
	assert.Contains(t, updated.Description, "Relocating, cannot continue care")
	assert.Nil(t, updated.NextReminderDue)
	assert.False(t, updated.PendingReporterApproval)
}

func TestTransferRequiresReason(t *testing.T) {
	f := newLifecycleFixture()
	helper := f.seedHelper(t)
	c := f.seedCase(t, nil)

	_, err := f.service.Transfer(context.Background(), c.ID, helper.ID, "   ")
	assert.True(t, utils.IsValidation(err))
}

func TestCaseNotFound(t *testing.T) {
	f := newLifecycleFixture()
	helper := f.seedHelper(t)

	_, err := f.service.MarkResolved(context.Background(), primitive.NewObjectID(), helper.ID)
	assert.True(t, utils.IsNotFound(err))
}
