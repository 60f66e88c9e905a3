package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"pawrescue/internal/models"
	"pawrescue/internal/repositories/interfaces"
	"pawrescue/internal/utils"
	"pawrescue/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *logger.Logger {
	log, _ := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stderr"})
	return log
}

// fakeCaseRepo is an in-memory CaseRepository with the same version-guard
// semantics as the mongo implementation.
type fakeCaseRepo struct {
	mu    sync.Mutex
	cases map[primitive.ObjectID]*models.Case
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{cases: make(map[primitive.ObjectID]*models.Case)}
}

func (r *fakeCaseRepo) Create(ctx context.Context, c *models.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	c.Version = 1
	cp := *c
	r.cases[c.ID] = &cp
	return nil
}

func (r *fakeCaseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cases[id]
	if !ok {
		return nil, utils.NotFoundError(utils.ErrCaseNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCaseRepo) GetByCaseNumber(ctx context.Context, caseNumber string) (*models.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.cases {
		if c.CaseNumber == caseNumber {
			cp := *c
			return &cp, nil
		}
	}
	return nil, utils.NotFoundError(utils.ErrCaseNotFound)
}

func (r *fakeCaseRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cases[id]
	if !ok {
		return utils.NotFoundError(utils.ErrCaseNotFound)
	}
	applyCaseUpdates(c, updates)
	return nil
}

func (r *fakeCaseRepo) UpdateWithVersion(ctx context.Context, id primitive.ObjectID, version int64, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applyVersionedLocked(id, version, updates)
}

func (r *fakeCaseRepo) applyVersionedLocked(id primitive.ObjectID, version int64, updates map[string]interface{}) error {
	c, ok := r.cases[id]
	if !ok {
		return utils.NotFoundError(utils.ErrCaseNotFound)
	}
	if c.Version != version {
		return utils.ConflictError(utils.ErrTransitionConflict)
	}
	applyCaseUpdates(c, updates)
	c.Version++
	return nil
}

func (r *fakeCaseRepo) AddAssignedHelper(ctx context.Context, id primitive.ObjectID, helperID primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cases[id]
	if !ok {
		return utils.NotFoundError(utils.ErrCaseNotFound)
	}
	if !c.HasAssignedHelper(helperID) {
		c.AssignedHelpers = append(c.AssignedHelpers, helperID)
	}
	c.LastStatusUpdate = at
	c.UpdatedAt = at
	return nil
}

func (r *fakeCaseRepo) GetByReporter(ctx context.Context, reporterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Case, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Case
	for _, c := range r.cases {
		if c.ReporterID != nil && *c.ReporterID == reporterID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeCaseRepo) GetByHelper(ctx context.Context, helperID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Case, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Case
	for _, c := range r.cases {
		if c.HasAssignedHelper(helperID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeCaseRepo) GetByStatus(ctx context.Context, status models.CaseStatus, params *utils.PaginationParams) ([]*models.Case, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Case
	for _, c := range r.cases {
		if c.Status == status {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeCaseRepo) GetNearbyOpenCases(ctx context.Context, lat, lng, radiusKM float64) ([]*models.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Case
	for _, c := range r.cases {
		if c.Status != models.CaseStatusOpen && c.Status != models.CaseStatusAssigned {
			continue
		}
		if utils.CalculateDistance(lat, lng, c.Location.Latitude(), c.Location.Longitude()) <= radiusKM {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCaseRepo) ClaimDueReminders(ctx context.Context, now time.Time, limit int) ([]*models.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var claimed []*models.Case
	for _, c := range r.cases {
		if len(claimed) >= limit {
			break
		}
		if c.Status != models.CaseStatusAssigned && c.Status != models.CaseStatusInProgress {
			continue
		}
		if c.ReminderSent || c.NextReminderDue == nil || c.NextReminderDue.After(now) {
			continue
		}
		c.ReminderSent = true
		cp := *c
		claimed = append(claimed, &cp)
	}
	return claimed, nil
}

func applyCaseUpdates(c *models.Case, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "status":
			c.Status = value.(models.CaseStatus)
		case "urgency_level":
			c.UrgencyLevel = value.(models.UrgencyLevel)
		case "description":
			c.Description = value.(string)
		case "last_status_update":
			c.LastStatusUpdate = value.(time.Time)
		case "next_reminder_due":
			if value == nil {
				c.NextReminderDue = nil
			} else {
				t := value.(time.Time)
				c.NextReminderDue = &t
			}
		case "reminder_sent":
			c.ReminderSent = value.(bool)
		case "resolved_at":
			if value == nil {
				c.ResolvedAt = nil
			} else {
				t := value.(time.Time)
				c.ResolvedAt = &t
			}
		case "pending_reporter_approval":
			c.PendingReporterApproval = value.(bool)
		case "updated_at":
			c.UpdatedAt = value.(time.Time)
		}
	}
}

type fakeUpdateRepo struct {
	mu       sync.Mutex
	updates  []*models.StatusUpdate
	caseRepo *fakeCaseRepo
}

func newFakeUpdateRepo(caseRepo *fakeCaseRepo) *fakeUpdateRepo {
	return &fakeUpdateRepo{caseRepo: caseRepo}
}

func (r *fakeUpdateRepo) Create(ctx context.Context, update *models.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	update.ID = primitive.NewObjectID()
	update.CreatedAt = time.Now()
	cp := *update
	r.updates = append(r.updates, &cp)
	return nil
}

func (r *fakeUpdateRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.StatusUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.updates {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, utils.NotFoundError(utils.ErrUpdateNotFound)
}

func (r *fakeUpdateRepo) GetByCase(ctx context.Context, caseID primitive.ObjectID, params *utils.PaginationParams) ([]*models.StatusUpdate, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.StatusUpdate
	for _, u := range r.updates {
		if u.CaseID == caseID {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUpdateRepo) MarkRead(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.updates {
		if u.ID == id {
			for _, reader := range u.ReadBy {
				if reader == userID {
					return nil
				}
			}
			u.ReadBy = append(u.ReadBy, userID)
			return nil
		}
	}
	return utils.NotFoundError(utils.ErrUpdateNotFound)
}

func (r *fakeUpdateRepo) CreateWithCaseMutation(ctx context.Context, update *models.StatusUpdate, caseID primitive.ObjectID, caseVersion int64, caseUpdates map[string]interface{}) error {
	r.caseRepo.mu.Lock()
	if err := r.caseRepo.applyVersionedLocked(caseID, caseVersion, caseUpdates); err != nil {
		r.caseRepo.mu.Unlock()
		return err
	}
	r.caseRepo.mu.Unlock()

	return r.Create(ctx, update)
}

func (r *fakeUpdateRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) add(u *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	r.users[u.ID] = &cp
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.add(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, utils.NotFoundError(utils.ErrUserNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, utils.NotFoundError(utils.ErrUserNotFound)
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, utils.NotFoundError(utils.ErrUserNotFound)
}

func (r *fakeUserRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *fakeUserRepo) GetNearbyHelpers(ctx context.Context, lat, lng, radiusKM float64, filters *interfaces.HelperFilters) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	type scored struct {
		user *models.User
		dist float64
	}
	var matches []scored
	for _, u := range r.users {
		if u.CurrentLocation == nil || u.DeletedAt != nil {
			continue
		}
		if u.UserType != models.UserTypeHelper && u.UserType != models.UserTypeNGO {
			continue
		}
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
		dist := utils.CalculateDistance(lat, lng, u.CurrentLocation.Latitude(), u.CurrentLocation.Longitude())
		if dist <= radiusKM {
			cp := *u
			matches = append(matches, scored{user: &cp, dist: dist})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].dist < matches[j].dist })

	out := make([]*models.User, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.user)
	}
	return out, nil
}

type fakeAreaRepo struct {
	mu    sync.Mutex
	areas map[primitive.ObjectID]*models.ServiceArea
}

func newFakeAreaRepo() *fakeAreaRepo {
	return &fakeAreaRepo{areas: make(map[primitive.ObjectID]*models.ServiceArea)}
}

func (r *fakeAreaRepo) Create(ctx context.Context, area *models.ServiceArea) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	area.ID = primitive.NewObjectID()
	area.CreatedAt = time.Now()
	cp := *area
	r.areas[area.ID] = &cp
	return nil
}

func (r *fakeAreaRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ServiceArea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.areas[id]
	if !ok {
		return nil, utils.NotFoundError(utils.ErrAreaNotFound)
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAreaRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.areas[id]
	if !ok {
		return utils.NotFoundError(utils.ErrAreaNotFound)
	}
	if radius, ok := updates["radius_km"].(float64); ok {
		a.RadiusKM = radius
	}
	if name, ok := updates["name"].(string); ok {
		a.Name = name
	}
	if active, ok := updates["is_active"].(bool); ok {
		a.IsActive = active
	}
	return nil
}

func (r *fakeAreaRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return r.Update(ctx, id, map[string]interface{}{"is_active": false})
}

func (r *fakeAreaRepo) GetByHelper(ctx context.Context, helperID primitive.ObjectID) ([]*models.ServiceArea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.ServiceArea
	for _, a := range r.areas {
		if a.HelperID == helperID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAreaRepo) GetNearCenter(ctx context.Context, lat, lng, maxDistanceKM float64) ([]*models.ServiceArea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.ServiceArea
	for _, a := range r.areas {
		if !a.IsActive {
			continue
		}
		if utils.CalculateDistance(lat, lng, a.Center.Latitude(), a.Center.Longitude()) <= maxDistanceKM {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeAuditRepo) GetByResource(ctx context.Context, resource, resourceID string, limit int) ([]*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.AuditLog
	for _, e := range r.entries {
		if e.Resource == resource && e.ResourceID == resourceID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) actions() []models.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.AuditAction, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

// fakeNotifier records deliveries instead of sending them.
type fakeNotifier struct {
	mu                 sync.Mutex
	newCaseCalls       int
	assignedCalls      int
	statusUpdateCalls  int
	pendingCalls       int
	rejectedCalls      int
	reminderCalls      int
	reminderCaseIDs    []primitive.ObjectID
	transferredCalls   int
}

func (n *fakeNotifier) NotifyNewCaseNearby(c *models.Case, helpers []*models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newCaseCalls++
}

func (n *fakeNotifier) NotifyHelperAssigned(c *models.Case, helper *models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.assignedCalls++
}

func (n *fakeNotifier) NotifyStatusUpdate(c *models.Case, update *models.StatusUpdate, recipients []*models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statusUpdateCalls++
}

func (n *fakeNotifier) NotifyResolutionPending(c *models.Case) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pendingCalls++
}

func (n *fakeNotifier) NotifyResolutionRejected(c *models.Case, helpers []*models.User, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejectedCalls++
}

func (n *fakeNotifier) NotifyCaseReminder(c *models.Case, helpers []*models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminderCalls++
	n.reminderCaseIDs = append(n.reminderCaseIDs, c.ID)
}

func (n *fakeNotifier) NotifyCaseTransferred(c *models.Case, helpers []*models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.transferredCalls++
}

func (n *fakeNotifier) reminders() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.reminderCalls
}
