package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/Alijeyrad/jyotish_backend/config"
)

func TestNewFromConfig_Disabled(t *testing.T) {
	client, err := NewFromConfig(config.SMSConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	if client.IsEnabled() {
		t.Error("Expected client to be disabled")
	}

	// disabled client never touches the network
	if err := client.SendAppointment(context.Background(), TemplateConfirmation, "", "", "", ""); err != nil {
		t.Errorf("disabled send returned %v", err)
	}
}

func TestNewFromConfig_EnabledWithoutAPIKey(t *testing.T) {
	_, err := NewFromConfig(config.SMSConfig{
		Enabled: true,
		SMSIR:   config.SMSIRConfig{ConfirmationTemplateID: "100"},
	})
	if err == nil {
		t.Error("Expected error when API key is missing")
	}
}

func TestSendAppointment_MissingTemplate(t *testing.T) {
	client, err := NewFromConfig(config.SMSConfig{
		Enabled: true,
		SMSIR: config.SMSIRConfig{
			APIKey:                 "test-api-key",
			ConfirmationTemplateID: "100",
		},
	})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if !client.IsEnabled() {
		t.Fatal("Expected client to be enabled")
	}

	err = client.SendAppointment(context.Background(), TemplateCancellation, "+919800000000", "Asha", "2025-03-03", "09:00")
	if !errors.Is(err, ErrMissingTemplate) {
		t.Fatalf("err = %v, want ErrMissingTemplate", err)
	}
}

func TestSendAppointment_MissingMobile(t *testing.T) {
	client, _ := NewFromConfig(config.SMSConfig{
		Enabled: true,
		SMSIR:   config.SMSIRConfig{APIKey: "k", ConfirmationTemplateID: "100"},
	})
	if err := client.SendAppointment(context.Background(), TemplateConfirmation, "", "Asha", "d", "t"); err == nil {
		t.Fatal("expected error for empty mobile")
	}
}
