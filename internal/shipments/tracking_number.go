package shipments

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

const (
	trackingNumberMin  int64 = 100_000_000_000
	trackingNumberSpan int64 = 900_000_000_000
)

// GenerateTrackingNumber returns a random 12-digit numeral.
func GenerateTrackingNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(trackingNumberSpan))
	if err != nil {
		return "", fmt.Errorf("generate tracking number: %w", err)
	}
	return strconv.FormatInt(trackingNumberMin+n.Int64(), 10), nil
}
