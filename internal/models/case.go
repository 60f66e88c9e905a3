package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CaseStatus string
type AnimalType string
type AnimalCondition string
type UrgencyLevel string

const (
	CaseStatusOpen       CaseStatus = "open"
	CaseStatusAssigned   CaseStatus = "assigned"
	CaseStatusInProgress CaseStatus = "in_progress"
	// Resolved is accepted as a transition input. When the case requires
	// reporter approval it is never persisted; the stored status stays
	// in_progress with pending_reporter_approval set.
	CaseStatusResolved CaseStatus = "resolved"
	CaseStatusClosed   CaseStatus = "closed"

	AnimalTypeDog      AnimalType = "dog"
	AnimalTypeCat      AnimalType = "cat"
	AnimalTypeBird     AnimalType = "bird"
	AnimalTypeCattle   AnimalType = "cattle"
	AnimalTypeWildlife AnimalType = "wildlife"
	AnimalTypeOther    AnimalType = "other"

	AnimalConditionInjured   AnimalCondition = "injured"
	AnimalConditionSick      AnimalCondition = "sick"
	AnimalConditionTrapped   AnimalCondition = "trapped"
	AnimalConditionAbandoned AnimalCondition = "abandoned"
	AnimalConditionStarving  AnimalCondition = "starving"
	AnimalConditionUnknown   AnimalCondition = "unknown"

	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

type ContactInfo struct {
	Phone string `json:"phone" bson:"phone" validate:"required"`
	Email string `json:"email" bson:"email" validate:"omitempty,email"`
	Name  string `json:"name" bson:"name"`
}

type Case struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	CaseNumber  string              `json:"case_number" bson:"case_number"`
	ReporterID  *primitive.ObjectID `json:"reporter_id" bson:"reporter_id"` // nil for anonymous reports
	AnimalType  AnimalType          `json:"animal_type" bson:"animal_type" validate:"required"`
	Condition   AnimalCondition     `json:"condition" bson:"condition" validate:"required"`
	Description string              `json:"description" bson:"description" validate:"required"`
	Location    Location            `json:"location" bson:"location" validate:"required"`
	PhotoURLs   []string            `json:"photo_urls" bson:"photo_urls"`
	ContactInfo ContactInfo         `json:"contact_info" bson:"contact_info" validate:"required"`

	Status          CaseStatus           `json:"status" bson:"status" default:"open"`
	AssignedHelpers []primitive.ObjectID `json:"assigned_helpers" bson:"assigned_helpers"`
	UrgencyLevel    UrgencyLevel         `json:"urgency_level" bson:"urgency_level" default:"medium"`

	LastStatusUpdate time.Time  `json:"last_status_update" bson:"last_status_update"`
	NextReminderDue  *time.Time `json:"next_reminder_due" bson:"next_reminder_due"`
	ReminderSent     bool       `json:"reminder_sent" bson:"reminder_sent"`
	ResolvedAt       *time.Time `json:"resolved_at" bson:"resolved_at"`

	RequiresReporterApproval bool `json:"requires_reporter_approval" bson:"requires_reporter_approval"`
	PendingReporterApproval  bool `json:"pending_reporter_approval" bson:"pending_reporter_approval"`

	// Version guards read-modify-write transitions against lost updates.
	Version   int64     `json:"version" bson:"version"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (c *Case) HasAssignedHelper(helperID primitive.ObjectID) bool {
	for _, id := range c.AssignedHelpers {
		if id == helperID {
			return true
		}
	}
	return false
}

func (c *Case) IsTerminal() bool {
	return c.Status == CaseStatusClosed
}

func ValidCaseStatus(status CaseStatus) bool {
	switch status {
	case CaseStatusOpen, CaseStatusAssigned, CaseStatusInProgress, CaseStatusResolved, CaseStatusClosed:
		return true
	}
	return false
}
