// Package payment builds entry-fee invoices and validates checkout payloads.
package payment

import (
	"fmt"
	"strings"
	"time"
)

// DefaultPayload is the sentinel correlating invoices with their pre-checkout queries.
const DefaultPayload = "Custom-Payload"

// Config configures the payment provider and invoice defaults.
type Config struct {
	ProviderToken  string `yaml:"provider_token" envconfig:"PAYMENT_PROVIDER_TOKEN"`
	Currency       string `yaml:"currency" envconfig:"PAYMENT_CURRENCY"`
	Payload        string `yaml:"payload"`
	StartParameter string `yaml:"start_parameter"`

	NeedName            *bool `yaml:"need_name"`
	NeedPhoneNumber     bool  `yaml:"need_phone_number"`
	NeedEmail           bool  `yaml:"need_email"`
	NeedShippingAddress bool  `yaml:"need_shipping_address"`

	// BindSessionToken appends a random per-invoice token to the payload.
	BindSessionToken bool `yaml:"bind_session_token" envconfig:"PAYMENT_BIND_SESSION_TOKEN"`
	// TokenTTLMinutes and MaxOutstandingTokens bound unpaid bound tokens.
	TokenTTLMinutes      int `yaml:"token_ttl_minutes"`
	MaxOutstandingTokens int `yaml:"max_outstanding_tokens"`
}

// Normalize applies defaults and rejects a missing provider token.
func (c *Config) Normalize() error {
	if strings.TrimSpace(c.ProviderToken) == "" {
		return fmt.Errorf("payment.provider_token is required")
	}
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if c.Currency == "" {
		c.Currency = "INR"
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("payment.currency %q is not an ISO 4217 code", c.Currency)
	}
	if c.Payload == "" {
		c.Payload = DefaultPayload
	}
	if strings.Contains(c.Payload, tokenSep) {
		return fmt.Errorf("payment.payload must not contain %q", tokenSep)
	}
	if c.StartParameter == "" {
		c.StartParameter = "test-payment"
	}
	if c.TokenTTLMinutes < 0 || c.MaxOutstandingTokens < 0 {
		return fmt.Errorf("payment token limits must be >= 0")
	}
	if c.TokenTTLMinutes == 0 {
		c.TokenTTLMinutes = int(defaultTokenTTL / time.Minute)
	}
	if c.MaxOutstandingTokens == 0 {
		c.MaxOutstandingTokens = defaultMaxOutstanding
	}
	if c.NeedName == nil {
		yes := true
		c.NeedName = &yes
	}
	return nil
}

func (c Config) verifierOptions() VerifierOptions {
	return VerifierOptions{
		Sentinel:       c.Payload,
		Bind:           c.BindSessionToken,
		TTL:            time.Duration(c.TokenTTLMinutes) * time.Minute,
		MaxOutstanding: c.MaxOutstandingTokens,
	}
}

func (c Config) needName() bool {
	return c.NeedName == nil || *c.NeedName
}
