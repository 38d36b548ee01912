package models

import "testing"

func TestCreateSubscriptionRequestValidate(t *testing.T) {
	req := CreateSubscriptionRequest{
		Email:           "user@example.com",
		Name:            "User",
		PaymentMethodID: "pm_1",
		Plan:            "basic",
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	req.Email = "not-an-email"
	if err := req.Validate(); err == nil {
		t.Fatalf("malformed email accepted")
	}

	req.Email = "user@example.com"
	req.PaymentMethodID = ""
	if err := req.Validate(); err == nil {
		t.Fatalf("missing payment method accepted")
	}
}

func TestValidateKeyRequestValidate(t *testing.T) {
	req := ValidateKeyRequest{}
	if err := req.Validate(); err == nil {
		t.Fatalf("empty apiKey accepted")
	}
	req.APIKey = "kf_live_abc"
	if err := req.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}
