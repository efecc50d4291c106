package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"

	"github.com/Alijeyrad/jyotish_backend/config"
)

var ErrMissingTemplate = errors.New("sms template is not configured")

// Template names the sms.ir template used for a notification kind.
type Template string

const (
	TemplateConfirmation Template = "confirmation"
	TemplateCancellation Template = "cancellation"
)

// Client sends templated notifications via sms.ir.
type Client struct {
	client    *smsir.Client
	enabled   bool
	templates map[Template]string
}

// NewFromConfig creates a new SMS client from the application configuration.
// A disabled client no-ops on every send.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}

	return &Client{
		client:  smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey),
		enabled: true,
		templates: map[Template]string{
			TemplateConfirmation: cfg.SMSIR.ConfirmationTemplateID,
			TemplateCancellation: cfg.SMSIR.CancellationTemplateID,
		},
	}, nil
}

// SendAppointment sends an appointment notice. The sms.ir template must
// declare "name", "date" and "time" parameters.
func (c *Client) SendAppointment(ctx context.Context, tpl Template, mobile, name, date, clock string) error {
	if !c.IsEnabled() {
		return nil
	}
	if mobile == "" {
		return fmt.Errorf("mobile number is required")
	}

	templateID := c.templates[tpl]
	if templateID == "" {
		return fmt.Errorf("%w: %s", ErrMissingTemplate, tpl)
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     mobile,
		TemplateID: templateID,
		Parameters: []smsir.UltraFastParameter{
			{Key: "name", Value: name},
			{Key: "date", Value: date},
			{Key: "time", Value: clock},
		},
	}

	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}

	return nil
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c != nil && c.enabled
}
