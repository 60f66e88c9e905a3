package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStatus string
type UserType string
type VerificationStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"

	UserTypeReporter UserType = "reporter"
	UserTypeHelper   UserType = "helper"
	UserTypeNGO      UserType = "ngo"
	UserTypeAdmin    UserType = "admin"

	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

type User struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email           string             `json:"email" bson:"email" validate:"omitempty,email"`
	Phone           string             `json:"phone" bson:"phone" validate:"required"`
	Password        string             `json:"-" bson:"password"`
	UserType        UserType           `json:"user_type" bson:"user_type" validate:"required"`
	Status          UserStatus         `json:"status" bson:"status" default:"active"`
	Verification    VerificationStatus `json:"verification_status" bson:"verification_status" default:"pending"`
	OrganizationID  string             `json:"organization_id" bson:"organization_id"`
	DeviceToken     string             `json:"device_token" bson:"device_token"`
	CurrentLocation *Location          `json:"current_location" bson:"current_location"`
	// Home coverage declared at signup. Larger or additional circles live in
	// the service_areas collection.
	HomeServiceAreas []ServiceArea `json:"home_service_areas" bson:"home_service_areas"`
	LastActiveAt     *time.Time    `json:"last_active_at" bson:"last_active_at"`
	CreatedAt        time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" bson:"updated_at"`
	DeletedAt        *time.Time    `json:"deleted_at" bson:"deleted_at"`
}

// IsEligibleHelper reports whether the account can be surfaced by the matcher.
func (u *User) IsEligibleHelper() bool {
	return (u.UserType == UserTypeHelper || u.UserType == UserTypeNGO) &&
		u.Status == UserStatusActive &&
		u.Verification == VerificationApproved &&
		u.DeletedAt == nil
}
