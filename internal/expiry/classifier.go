// Package expiry holds the canonical expiry classification policy. Every
// consumer (stats, alerts, handlers) goes through Classify; none of them owns
// its own day-banding rules.
package expiry

import (
	"fmt"
	"math"
	"time"
)

// Classification is the alarm band for an inventory record.
type Classification string

const (
	Expired  Classification = "expired"
	Critical Classification = "critical"
	Warning  Classification = "warning"
	Ok       Classification = "ok"
)

// Thresholds parameterizes the classification bands in whole days.
type Thresholds struct {
	CriticalDays int
	WarningDays  int
}

// DefaultThresholds returns the app-wide banding: critical within 2 days,
// warning within 5.
func DefaultThresholds() Thresholds {
	return Thresholds{CriticalDays: 2, WarningDays: 5}
}

// Result is the derived classification for a single record. It is computed
// fresh on every query and never persisted.
type Result struct {
	Classification Classification `json:"classification"`
	DaysRemaining  int            `json:"days_remaining"`
	HasExpiry      bool           `json:"has_expiry"`
}

// midnight truncates to 00:00 in t's location. Both operands of the day diff
// are normalized this way so time-of-day never affects the result.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Classify buckets an expiry date relative to today. A nil expiry date means
// the item does not expire and never alarms. DaysRemaining is
// ceil((midnight(expiry) - midnight(today)) / 24h) and may be negative.
func Classify(expiryDate *time.Time, today time.Time, th Thresholds) Result {
	if expiryDate == nil {
		return Result{Classification: Ok}
	}

	diff := midnight(*expiryDate).Sub(midnight(today))
	days := int(math.Ceil(diff.Hours() / 24))

	result := Result{DaysRemaining: days, HasExpiry: true}
	switch {
	case days < 0:
		result.Classification = Expired
	case days <= th.CriticalDays:
		result.Classification = Critical
	case days <= th.WarningDays:
		result.Classification = Warning
	default:
		result.Classification = Ok
	}
	return result
}

// Describe renders the user-facing days-remaining label. The 0/1/else
// branching is load-bearing: the UI shows distinct wording for today and
// tomorrow.
func Describe(r Result) string {
	if !r.HasExpiry {
		return "Kein Ablaufdatum"
	}
	switch {
	case r.DaysRemaining < 0:
		return fmt.Sprintf("%d Tag(e) abgelaufen", -r.DaysRemaining)
	case r.DaysRemaining == 0:
		return "Heute ablaufend"
	case r.DaysRemaining == 1:
		return "Morgen ablaufend"
	default:
		return fmt.Sprintf("%d Tage übrig", r.DaysRemaining)
	}
}
