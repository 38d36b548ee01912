// Package models holds the request types of the HTTP API.
package models

import "github.com/go-playground/validator/v10"

// ValidateKeyRequest is the body of /validate-key and /customer-info.
type ValidateKeyRequest struct {
	APIKey string `json:"apiKey" validate:"required"`
}

func (r *ValidateKeyRequest) Validate() error {
	v := validator.New()
	return v.Struct(r)
}

// CreateSubscriptionRequest is the body of /create-subscription.
type CreateSubscriptionRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Name            string `json:"name" validate:"required"`
	PaymentMethodID string `json:"paymentMethodId" validate:"required"`
	Plan            string `json:"plan" validate:"required"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	v := validator.New()
	return v.Struct(r)
}

// GenerateKeyRequest is the body of /generate-key.
type GenerateKeyRequest struct {
	CustomerID string `json:"customerId" validate:"required"`
}

func (r *GenerateKeyRequest) Validate() error {
	v := validator.New()
	return v.Struct(r)
}
