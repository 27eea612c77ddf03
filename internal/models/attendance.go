package models

import "time"

// AttendanceStatus is the persisted status of a daily attendance record.
// Values are rendered directly into exports and must stay stable.
type AttendanceStatus string

const (
	AttendanceStatusPresent    AttendanceStatus = "Present"
	AttendanceStatusAbsent     AttendanceStatus = "Absent"
	AttendanceStatusPartialDay AttendanceStatus = "PartialDay"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusPartialDay:
		return true
	default:
		return false
	}
}

// ScanSource identifies where a scan attempt originated.
type ScanSource string

const (
	ScanSourceScanner ScanSource = "scanner"
	ScanSourceBulk    ScanSource = "bulk"
	ScanSourceManual  ScanSource = "manual"
)

// Valid returns true when the source is a supported value.
func (s ScanSource) Valid() bool {
	switch s {
	case ScanSourceScanner, ScanSourceBulk, ScanSourceManual:
		return true
	default:
		return false
	}
}

// ScanOutcome is the caller-visible result of processing one scan. Every
// outcome is a distinct value so front ends never infer intent from the
// absence of an error.
type ScanOutcome string

const (
	ScanOutcomeCheckedIn   ScanOutcome = "CheckedIn"
	ScanOutcomeCheckedOut  ScanOutcome = "CheckedOut"
	ScanOutcomeDuplicate   ScanOutcome = "Duplicate"
	ScanOutcomeOutOfWindow ScanOutcome = "OutOfWindow"
	ScanOutcomeInvalid     ScanOutcome = "Invalid"
)

// ScanAttempt is an ephemeral raw scan. It exists only between the debounce
// gate and the classifier and is never persisted.
type ScanAttempt struct {
	StudentID string
	Source    ScanSource
	At        time.Time
}

// AttendanceRecord is the durable ledger row, one per (student_id, date).
// That pairing is the uniqueness invariant every writer must respect: a row
// with a check-in time is never overwritten by the reconciler.
type AttendanceRecord struct {
	ID           string           `db:"id" json:"id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	StudentName  string           `db:"student_name" json:"student_name"`
	Program      string           `db:"program" json:"program"`
	Shift        Shift            `db:"shift" json:"shift"`
	Date         time.Time        `db:"date" json:"date"`
	Status       AttendanceStatus `db:"status" json:"status"`
	CheckInTime  *time.Time       `db:"check_in_time" json:"check_in_time,omitempty"`
	CheckOutTime *time.Time       `db:"check_out_time" json:"check_out_time,omitempty"`
	Notes        *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// CheckoutResult disambiguates the compare-and-set on check_out_time.
type CheckoutResult string

const (
	CheckoutUpdated           CheckoutResult = "Updated"
	CheckoutNoExistingCheckin CheckoutResult = "NoExistingCheckin"
	CheckoutAlreadyCheckedOut CheckoutResult = "AlreadyCheckedOut"
)

// AttendanceFilter defines query filters for the reporting reads.
type AttendanceFilter struct {
	Shift     Shift
	Status    *AttendanceStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	StudentID string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// DailySummary aggregates a single day's records for the dashboard.
type DailySummary struct {
	Date        time.Time `json:"date"`
	Present     int       `json:"present"`
	Absent      int       `json:"absent"`
	PartialDay  int       `json:"partial_day"`
	Total       int       `json:"total"`
	PresentRate float64   `json:"present_rate"`
}
