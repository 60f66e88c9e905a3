package validators

import (
	"fmt"
	"regexp"
	"strings"

	"pawrescue/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("phone_number", validatePhoneNumber)
	validate.RegisterValidation("photo_url", validatePhotoURL)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			validationError := ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Value:   fmt.Sprintf("%v", err.Value()),
				Message: getErrorMessage(err),
			}
			validationErrors = append(validationErrors, validationError)
		}
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
	case "object_id":
		return fmt.Sprintf("%s is not a valid identifier", err.Field())
	case "phone_number":
		return fmt.Sprintf("%s is not a valid phone number", err.Field())
	case "photo_url":
		return fmt.Sprintf("%s is not a valid photo URL", err.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag())
	}
}

func validateObjectID(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case primitive.ObjectID:
		return !v.IsZero()
	case string:
		_, err := primitive.ObjectIDFromHex(v)
		return err == nil
	}
	return false
}

func validatePhoneNumber(fl validator.FieldLevel) bool {
	return utils.IsValidPhone(fl.Field().String())
}

var photoURLRegex = regexp.MustCompile(`^https?://\S+$`)

func validatePhotoURL(fl validator.FieldLevel) bool {
	return photoURLRegex.MatchString(fl.Field().String())
}

// LocationRequest carries coordinates as explicit lat/lng fields; conversion
// to the stored GeoJSON shape happens in the handler layer.
type LocationRequest struct {
	Latitude      float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude     float64 `json:"longitude" validate:"min=-180,max=180"`
	Address       string  `json:"address" validate:"omitempty,max=255"`
	City          string  `json:"city" validate:"omitempty,max=100"`
	State         string  `json:"state" validate:"omitempty,max=100"`
	Landmark      string  `json:"landmark" validate:"omitempty,max=255"`
	IsApproximate bool    `json:"is_approximate"`
}
