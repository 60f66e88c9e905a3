package validators

type CreateServiceAreaRequest struct {
	Name     string  `json:"name" validate:"omitempty,max=100"`
	Latitude float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	RadiusKM float64 `json:"radius_km" validate:"required,min=1,max=100"`
	City     string  `json:"city" validate:"omitempty,max=100"`
	State    string  `json:"state" validate:"omitempty,max=100"`
}

type UpdateServiceAreaRequest struct {
	Name     *string  `json:"name" validate:"omitempty,max=100"`
	RadiusKM *float64 `json:"radius_km" validate:"omitempty,min=1,max=100"`
	IsActive *bool    `json:"is_active"`
}

func ValidateCreateServiceAreaRequest(req *CreateServiceAreaRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if req.Latitude == 0 && req.Longitude == 0 {
		errors = append(errors, ValidationError{
			Field:   "latitude",
			Message: "A service area center is required",
		})
	}

	return errors
}

func ValidateUpdateServiceAreaRequest(req *UpdateServiceAreaRequest) ValidationErrors {
	return ValidateStruct(req)
}
