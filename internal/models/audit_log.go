package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditAction string

const (
	AuditActionCaseCreated      AuditAction = "case_created"
	AuditActionHelperAssigned   AuditAction = "helper_assigned"
	AuditActionStatusTransition AuditAction = "status_transition"
	AuditActionCaseTransferred  AuditAction = "case_transferred"
	AuditActionReporterApproved AuditAction = "reporter_approved"
	AuditActionReporterRejected AuditAction = "reporter_rejected"
	AuditActionReminderSent     AuditAction = "reminder_sent"
)

// AuditLog records system-authored annotations. Writes are best-effort:
// a failed audit write never fails the operation it describes.
type AuditLog struct {
	ID         primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	UserID     *primitive.ObjectID    `json:"user_id" bson:"user_id"`
	Action     AuditAction            `json:"action" bson:"action" validate:"required"`
	Resource   string                 `json:"resource" bson:"resource" validate:"required"`
	ResourceID string                 `json:"resource_id" bson:"resource_id"`
	Message    string                 `json:"message" bson:"message"`
	Metadata   map[string]interface{} `json:"metadata" bson:"metadata"`
	CreatedAt  time.Time              `json:"created_at" bson:"created_at"`
}
