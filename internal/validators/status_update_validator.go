package validators

import (
	"fmt"

	"pawrescue/internal/utils"
)

type SubmitStatusUpdateRequest struct {
	Condition   string           `json:"condition" validate:"required,oneof=improving stable deteriorating critical recovered"`
	Description string           `json:"description" validate:"required"`
	PhotoURLs   []string         `json:"photo_urls" validate:"required,dive,photo_url"`
	NewStatus   string           `json:"new_status" validate:"required,oneof=open assigned in_progress resolved closed"`
	Treatment   string           `json:"treatment" validate:"omitempty,max=2000"`
	NextSteps   string           `json:"next_steps" validate:"omitempty,max=2000"`
	Location    *LocationRequest `json:"location" validate:"omitempty"`
}

func ValidateSubmitStatusUpdateRequest(req *SubmitStatusUpdateRequest) ValidationErrors {
	errors := ValidateStruct(req)

	// The photo floor is the platform's trust mechanism: no progress claim
	// without visual evidence.
	if len(req.PhotoURLs) < utils.MinUpdatePhotos {
		errors = append(errors, ValidationError{
			Field:   "photo_urls",
			Message: fmt.Sprintf("At least %d photos are required as evidence", utils.MinUpdatePhotos),
		})
	}
	if len(req.PhotoURLs) > utils.MaxUpdatePhotos {
		errors = append(errors, ValidationError{
			Field:   "photo_urls",
			Message: fmt.Sprintf("At most %d photos are allowed", utils.MaxUpdatePhotos),
		})
	}

	if len(req.Description) < utils.MinUpdateDescriptionLength {
		errors = append(errors, ValidationError{
			Field:   "description",
			Message: fmt.Sprintf("Description must be at least %d characters", utils.MinUpdateDescriptionLength),
		})
	}
	if len(req.Description) > utils.MaxUpdateDescriptionLength {
		errors = append(errors, ValidationError{
			Field:   "description",
			Message: fmt.Sprintf("Description must be at most %d characters", utils.MaxUpdateDescriptionLength),
		})
	}

	return errors
}
