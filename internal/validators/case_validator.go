package validators

import (
	"strings"
)

type CreateCaseRequest struct {
	AnimalType  string          `json:"animal_type" validate:"required,oneof=dog cat bird cattle wildlife other"`
	Condition   string          `json:"condition" validate:"required,oneof=injured sick trapped abandoned starving unknown"`
	Description string          `json:"description" validate:"required,min=10,max=5000"`
	Location    LocationRequest `json:"location" validate:"required"`
	PhotoURLs   []string        `json:"photo_urls" validate:"omitempty,max=10,dive,photo_url"`
	Contact     ContactRequest  `json:"contact_info" validate:"required"`
	UrgencyLevel string         `json:"urgency_level" validate:"omitempty,oneof=low medium high critical"`

	RequiresReporterApproval bool `json:"requires_reporter_approval"`
}

type ContactRequest struct {
	Phone string `json:"phone" validate:"required,phone_number"`
	Email string `json:"email" validate:"omitempty,email"`
	Name  string `json:"name" validate:"omitempty,max=100"`
}

type TransferCaseRequest struct {
	Reason string `json:"reason" validate:"required,min=5,max=500"`
}

type RejectResolutionRequest struct {
	Reason string `json:"reason" validate:"required,min=5,max=500"`
}

func ValidateCreateCaseRequest(req *CreateCaseRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if strings.TrimSpace(req.Description) == "" {
		errors = append(errors, ValidationError{
			Field:   "description",
			Message: "Description cannot be blank",
		})
	}

	if req.Location.Latitude == 0 && req.Location.Longitude == 0 {
		errors = append(errors, ValidationError{
			Field:   "location",
			Message: "A report location is required",
		})
	}

	return errors
}

func ValidateTransferCaseRequest(req *TransferCaseRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateRejectResolutionRequest(req *RejectResolutionRequest) ValidationErrors {
	return ValidateStruct(req)
}
