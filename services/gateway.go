package services

import (
	"coursehub/config"
	"fmt"

	"github.com/razorpay/razorpay-go"
)

// RazorpayGateway creates payment intents with the Razorpay Orders API
type RazorpayGateway struct {
	keyID     string
	keySecret string
}

// NewRazorpayGateway builds a gateway adapter from the loaded configuration
func NewRazorpayGateway() *RazorpayGateway {
	return &RazorpayGateway{
		keyID:     config.AppConfig.RazorpayKeyID,
		keySecret: config.AppConfig.RazorpayKeySecret,
	}
}

// CreateIntent creates a gateway order for the given minor-unit amount and
// returns the gateway order id
func (g *RazorpayGateway) CreateIntent(amountInPaise int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	if g.keyID == "" || g.keySecret == "" {
		return "", fmt.Errorf("razorpay credentials not configured")
	}

	client := razorpay.NewClient(g.keyID, g.keySecret)

	data := map[string]interface{}{
		"amount":          amountInPaise,
		"currency":        currency,
		"receipt":         receipt,
		"notes":           notes,
		"payment_capture": 1, // Auto capture payment
	}

	resp, err := client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("error creating razorpay order: %w", err)
	}

	orderID, ok := resp["id"].(string)
	if !ok || orderID == "" {
		return "", fmt.Errorf("razorpay order response missing id")
	}

	return orderID, nil
}
