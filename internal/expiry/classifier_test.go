package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func datePtr(t time.Time) *time.Time {
	return &t
}

func TestClassify_Boundaries(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
	th := DefaultThresholds()

	tests := []struct {
		name     string
		daysOut  int
		expected Classification
	}{
		{"one day past expiry", -1, Expired},
		{"long past expiry", -30, Expired},
		{"expires today", 0, Critical},
		{"expires tomorrow", 1, Critical},
		{"critical boundary", 2, Critical},
		{"first warning day", 3, Warning},
		{"warning boundary", 5, Warning},
		{"first ok day", 6, Ok},
		{"far future", 400, Ok},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expiry := today.AddDate(0, 0, tt.daysOut)
			result := Classify(&expiry, today, th)
			assert.Equal(t, tt.expected, result.Classification)
			assert.Equal(t, tt.daysOut, result.DaysRemaining)
			assert.True(t, result.HasExpiry)
		})
	}
}

func TestClassify_NoExpiryNeverAlarms(t *testing.T) {
	result := Classify(nil, time.Now(), DefaultThresholds())
	assert.Equal(t, Ok, result.Classification)
	assert.False(t, result.HasExpiry)
}

func TestClassify_TimeOfDayIgnored(t *testing.T) {
	th := DefaultThresholds()

	// Late evening today vs early morning expiry two days out must still be
	// exactly two whole days apart.
	today := time.Date(2025, 3, 10, 23, 59, 0, 0, time.Local)
	expiry := time.Date(2025, 3, 12, 0, 1, 0, 0, time.Local)

	result := Classify(&expiry, today, th)
	assert.Equal(t, 2, result.DaysRemaining)
	assert.Equal(t, Critical, result.Classification)

	// And the reverse skew: early today, late expiry on the same day.
	today = time.Date(2025, 3, 10, 0, 1, 0, 0, time.Local)
	expiry = time.Date(2025, 3, 10, 23, 59, 0, 0, time.Local)

	result = Classify(&expiry, today, th)
	assert.Equal(t, 0, result.DaysRemaining)
	assert.Equal(t, Critical, result.Classification)
}

func TestClassify_CustomThresholds(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
	th := Thresholds{CriticalDays: 1, WarningDays: 10}

	expiry := today.AddDate(0, 0, 2)
	result := Classify(&expiry, today, th)
	assert.Equal(t, Warning, result.Classification)

	expiry = today.AddDate(0, 0, 10)
	result = Classify(&expiry, today, th)
	assert.Equal(t, Warning, result.Classification)

	expiry = today.AddDate(0, 0, 11)
	result = Classify(&expiry, today, th)
	assert.Equal(t, Ok, result.Classification)
}

func TestDescribe_Wording(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		expected string
	}{
		{"expired three days", Result{Classification: Expired, DaysRemaining: -3, HasExpiry: true}, "3 Tag(e) abgelaufen"},
		{"expired yesterday", Result{Classification: Expired, DaysRemaining: -1, HasExpiry: true}, "1 Tag(e) abgelaufen"},
		{"today", Result{Classification: Critical, DaysRemaining: 0, HasExpiry: true}, "Heute ablaufend"},
		{"tomorrow", Result{Classification: Critical, DaysRemaining: 1, HasExpiry: true}, "Morgen ablaufend"},
		{"two days", Result{Classification: Critical, DaysRemaining: 2, HasExpiry: true}, "2 Tage übrig"},
		{"ten days", Result{Classification: Ok, DaysRemaining: 10, HasExpiry: true}, "10 Tage übrig"},
		{"no expiry", Result{Classification: Ok}, "Kein Ablaufdatum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Describe(tt.result))
		})
	}
}
