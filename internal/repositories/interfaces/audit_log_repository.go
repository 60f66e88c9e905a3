package interfaces

import (
	"context"

	"pawrescue/internal/models"
)

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	GetByResource(ctx context.Context, resource, resourceID string, limit int) ([]*models.AuditLog, error)
}
