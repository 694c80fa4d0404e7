package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type ReservationState int

const (
	ReservationUnclaimed ReservationState = iota
	ReservationClaiming
	ReservationCommitted
)

const claimPrefix = "claiming:"

// ReservationRef is the decoded form of the orders.pms_reservation_id
// column: NULL means unclaimed, "claiming:<token>:<unix>" is a claim
// sentinel, anything else is the committed external reservation id.
type ReservationRef struct {
	State     ReservationState
	ID        string    // committed reservation id
	Token     string    // claim token
	StartedAt time.Time // claim start
}

// EncodeClaim builds a claim sentinel value for the conditional update.
func EncodeClaim(token string, startedAt time.Time) string {
	return fmt.Sprintf("%s%s:%d", claimPrefix, token, startedAt.Unix())
}

// ParseReservationRef decodes the raw column value. Malformed claim
// sentinels are treated as claims started at the zero time so they are
// always reclaimable.
func ParseReservationRef(raw *string) ReservationRef {
	if raw == nil || *raw == "" {
		return ReservationRef{State: ReservationUnclaimed}
	}

	value := *raw
	if !strings.HasPrefix(value, claimPrefix) {
		return ReservationRef{State: ReservationCommitted, ID: value}
	}

	ref := ReservationRef{State: ReservationClaiming}
	parts := strings.Split(strings.TrimPrefix(value, claimPrefix), ":")
	if len(parts) >= 1 {
		ref.Token = parts[0]
	}
	if len(parts) >= 2 {
		if unix, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
			ref.StartedAt = time.Unix(unix, 0)
		}
	}

	return ref
}

// Stale reports whether a claim has outlived ttl. A crashed instance leaves
// its sentinel behind; stale claims are reclaimable so the order is not
// blocked forever.
func (r ReservationRef) Stale(ttl time.Duration, now time.Time) bool {
	if r.State != ReservationClaiming {
		return false
	}
	return now.Sub(r.StartedAt) > ttl
}
