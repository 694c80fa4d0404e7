package utils

import (
	"crypto/subtle"
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// GenerateOrderID creates a unique numeric order ID. Provider order ids are
// numeric strings, so internal ids follow the same shape to keep the
// correlation columns uniform.
func GenerateOrderID() string {
	now := time.Now().UnixMilli()
	suffix := rand.Intn(1000)
	return fmt.Sprintf("%d%03d", now, suffix)
}

// SecureCompare does a constant-time string comparison.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
