package utils

import "time"

// Application Constants
const (
	AppName    = "PawRescue"
	AppVersion = "1.0.0"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Matching
	DefaultSearchRadiusKM = 10.0
	MaxSearchRadiusKM     = 50.0
	MaxNearbyHelpers      = 50

	// Reminders: helpers on an active case must report progress daily.
	ReminderInterval = 24 * time.Hour

	// Status updates
	MinUpdateDescriptionLength = 50
	MaxUpdateDescriptionLength = 2000
	MinUpdatePhotos            = 2
	MaxUpdatePhotos            = 10

	// Cases
	MaxCasePhotos        = 10
	CaseNumberLength     = 8
	TransitionMaxRetries = 3

	// Notification
	NotificationTimeout = 30 * time.Second
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrCaseNotFound        = "case not found"
	ErrUpdateNotFound      = "status update not found"
	ErrAreaNotFound        = "service area not found"
	ErrUserNotFound        = "user not found"
	ErrInvalidInput        = "invalid input"
	ErrInternalServer      = "internal server error"
	ErrUnauthorized        = "unauthorized"
	ErrForbiddenAction     = "forbidden"
	ErrValidationFailed    = "validation failed"
	ErrNoHelpersAvailable  = "no helpers available"
	ErrTransitionConflict  = "case was modified concurrently"
	ErrNotCaseReporter     = "only the reporter can perform this action"
	ErrNotPendingApproval  = "case is not awaiting reporter approval"
	ErrInsufficientPhotos  = "status updates require at least 2 photos"
	ErrHelperNotVerified   = "helper account is not verified"
	ErrAreaRadiusOutOfRange = "service area radius must be between 1 and 100 km"
)

// Cache Keys
const (
	CacheKeyCase       = "case:%s"
	CacheKeyUser       = "user:%s"
	CacheKeyCaseTTL    = 15 * time.Minute
	CacheKeyUserTTL    = 30 * time.Minute
)
