package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"
)

const trackingIDBytes = 8

// GenerateTrackingID returns 16 hex characters drawn from crypto/rand.
func GenerateTrackingID() (string, error) {
	buf := make([]byte, trackingIDBytes)

	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate tracking id: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a currency amount to the smallest unit (cents).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
