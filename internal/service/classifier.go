package service

import (
	"time"

	"github.com/campus-ops/shift-attendance-api/internal/models"
)

// Decision is the classification of one scan against the day's window and
// the existing record. It is a plain value; classification never errors.
type Decision struct {
	Outcome models.ScanOutcome `json:"outcome"`
	Reason  string             `json:"reason,omitempty"`
}

// Classification reasons surfaced to callers alongside the outcome.
const (
	ReasonBeforeCheckinWindow = "before-checkin-window"
	ReasonAfterClassEnd       = "after-class-end"
	ReasonLateNoWindow        = "late-no-window"
	ReasonNotInCheckoutWindow = "not-in-checkout-window"
	ReasonAlreadyCheckedOut   = "already-checked-out"
	ReasonAbsentRecorded      = "absent-already-recorded"
	ReasonRecordExists        = "record-exists"
	ReasonDebounced           = "debounced"
	ReasonDuplicateSuppressed = "duplicate-suppressed"
	ReasonUnknownStudent      = "unknown-student"
	ReasonInactiveStudent     = "inactive-student"
)

// Classify maps (student, window, now, existing record) to a decision.
// Pure and side-effect free: window boundaries are inclusive, comparisons run
// at second resolution in the window's timezone.
//
// A late first-ever scan (after checkin_end, before class_end, no record) is
// surfaced as OutOfWindow for human review instead of being converted into a
// check-in. An Absent record written by the reconciler stands; reversing it
// is an administrative override outside this engine.
func Classify(window *models.ResolvedWindow, now time.Time, existing *models.AttendanceRecord) Decision {
	now = now.In(window.Location).Truncate(time.Second)

	if now.Before(window.CheckinStart) {
		return Decision{Outcome: models.ScanOutcomeOutOfWindow, Reason: ReasonBeforeCheckinWindow}
	}
	if now.After(window.ClassEnd) {
		return Decision{Outcome: models.ScanOutcomeOutOfWindow, Reason: ReasonAfterClassEnd}
	}

	if existing == nil {
		if !now.After(window.CheckinEnd) {
			return Decision{Outcome: models.ScanOutcomeCheckedIn}
		}
		return Decision{Outcome: models.ScanOutcomeOutOfWindow, Reason: ReasonLateNoWindow}
	}

	if existing.Status == models.AttendanceStatusAbsent && existing.CheckInTime == nil {
		return Decision{Outcome: models.ScanOutcomeDuplicate, Reason: ReasonAbsentRecorded}
	}

	if existing.CheckInTime != nil && existing.CheckOutTime == nil {
		if !now.Before(window.CheckoutStart) && !now.After(window.CheckoutEnd) {
			return Decision{Outcome: models.ScanOutcomeCheckedOut}
		}
		return Decision{Outcome: models.ScanOutcomeDuplicate, Reason: ReasonNotInCheckoutWindow}
	}

	if existing.CheckInTime != nil && existing.CheckOutTime != nil {
		return Decision{Outcome: models.ScanOutcomeDuplicate, Reason: ReasonAlreadyCheckedOut}
	}

	// A row with neither check-in nor Absent status should not exist, but a
	// record is a record: nothing new gets written.
	return Decision{Outcome: models.ScanOutcomeDuplicate, Reason: ReasonRecordExists}
}
